package group

import "github.com/zastari/etterna-graph/internal/model"

// ByWeek partitions time-ordered records into runs sharing an ISO calendar
// week. The first run is always dropped since it is usually a partial week;
// the rest are numbered 0, 1, 2, ... in chronological order.
//
// TODO: confirm whether dropping the first week should only happen when it
// is actually partial.
func ByWeek(sorted []*model.ScoreRecord) []model.WeekBucket {
	var runs []model.WeekBucket
	for _, rec := range sorted {
		year, week := rec.PlayedAt.ISOWeek()
		n := len(runs)
		if n > 0 && runs[n-1].Year == year && runs[n-1].Week == week {
			runs[n-1].Scores = append(runs[n-1].Scores, rec)
			continue
		}
		runs = append(runs, model.WeekBucket{Year: year, Week: week, Scores: []*model.ScoreRecord{rec}})
	}
	if len(runs) <= 1 {
		return nil
	}
	runs = runs[1:]
	for i := range runs {
		runs[i].Index = i
	}
	return runs
}
