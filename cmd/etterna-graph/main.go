// Package main provides the CLI entrypoint for etterna-graph.
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/zastari/etterna-graph/internal/config"
	"github.com/zastari/etterna-graph/internal/etterna"
	"github.com/zastari/etterna-graph/internal/group"
	"github.com/zastari/etterna-graph/internal/history"
	"github.com/zastari/etterna-graph/internal/model"
	"github.com/zastari/etterna-graph/internal/replay"
	"github.com/zastari/etterna-graph/internal/stats"
	"github.com/zastari/etterna-graph/internal/statsui"
	"github.com/zastari/etterna-graph/internal/store"
)

const (
	defaultCurveWindow    = 20
	defaultMinSessionSize = 1
	defaultTopCharts      = 10
)

var (
	importXML string

	statsSince       string
	statsMinSession  int
	statsTopCharts   int
	statsCurveWindow int
	statsGapMinutes  float64
	statsGreatWindow float64
	statsReplays     string
	statsNoReplays   bool

	reportFromXML bool
	reportVerbose bool

	configPrint bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "etterna-graph",
		Short:         "Etterna score history statistics",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runStatsCmd,
	}
	addStatsFlags(rootCmd)

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newImportCmd())
	rootCmd.AddCommand(newReportCmd())
	rootCmd.AddCommand(newStatsCmd())

	return rootCmd
}

func addStatsFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsMinSession, "min-session", defaultMinSessionSize, "minimum plays per session")
	cmd.Flags().IntVar(&statsTopCharts, "top", defaultTopCharts, "number of most played charts")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
	cmd.Flags().Float64Var(&statsGapMinutes, "session-gap", group.DefaultSessionGap.Minutes(), "minutes between plays that start a new session")
	cmd.Flags().Float64Var(&statsGreatWindow, "great-window", replay.DefaultGreatWindow, "largest deviation in seconds that keeps a combo")
	cmd.Flags().StringVar(&statsReplays, "replays", "", "replay directory (default: Etterna ReplaysV2)")
	cmd.Flags().BoolVar(&statsNoReplays, "no-replays", false, "skip replay analysis")
}

func newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import scores from Etterna.xml",
		Args:  cobra.NoArgs,
		RunE:  runImportCmd,
	}
	cmd.Flags().StringVar(&importXML, "xml", "", "path to Etterna.xml (default: first local profile)")
	return cmd
}

func runImportCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	importXML = resolvePath(cmd, "xml", importXML, fileCfg.Paths.XML, config.DefaultEtternaXMLPath())

	res, err := etterna.ParseFile(importXML)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", importXML, err)
	}
	if res.Skipped > 0 {
		logErrf("skipped %d scores without a play date\n", res.Skipped)
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	if err := st.ReplaceScores(context.Background(), res.Records); err != nil {
		return fmt.Errorf("failed to store scores: %w", err)
	}
	if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Imported %s scores from %s\n", humanize.Comma(int64(len(res.Records))), importXML); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print stats as text",
		Args:  cobra.NoArgs,
		RunE:  runReportCmd,
	}
	addStatsFlags(cmd)
	cmd.Flags().BoolVar(&reportFromXML, "from-xml", false, "read Etterna.xml directly instead of the imported scores")
	cmd.Flags().StringVar(&importXML, "xml", "", "path to Etterna.xml for --from-xml")
	cmd.Flags().BoolVarP(&reportVerbose, "verbose", "v", false, "list every skipped replay")
	return cmd
}

func runReportCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg, err := resolveStatsConfig(cmd, fileCfg)
	if err != nil {
		return err
	}

	var records []model.ScoreRecord
	if reportFromXML {
		path := resolvePath(cmd, "xml", importXML, fileCfg.Paths.XML, config.DefaultEtternaXMLPath())
		res, err := etterna.ParseFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		records = filterSince(res.Records, cfg.Since)
	} else {
		records, err = loadStoredScores(cfg)
		if err != nil {
			return err
		}
	}
	if len(records) == 0 {
		logErrln("no scores found; run: etterna-graph import")
	}

	h := history.New(records, cfg.SessionGap)
	report := stats.BuildReport(h, newAnalyzer(cfg), cfg)
	logSkips(report.Replays, reportVerbose)
	if err := stats.RenderReport(cmd.OutOrStdout(), report, statsCurveWindow); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show stats",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	addStatsFlags(cmd)
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg, err := resolveStatsConfig(cmd, fileCfg)
	if err != nil {
		return err
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	n, err := st.CountScores(context.Background())
	if err != nil {
		return fmt.Errorf("failed to count scores: %w", err)
	}
	if n == 0 {
		logErrln("no scores imported yet; run: etterna-graph import")
		return fmt.Errorf("score history is empty")
	}

	model := statsui.NewModel(st, newAnalyzer(cfg), cfg, statsCurveWindow)
	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
	cmd.Flags().BoolVar(&configPrint, "print", false, "print the values set in the config file")
	return cmd
}

func runConfigCmd(cmd *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if configPrint {
		fileCfg, err := config.LoadConfig(path)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := config.Encode(cmd.OutOrStdout(), fileCfg); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	editCmd := exec.Command(parts[0], append(parts[1:], path)...)
	editCmd.Stdin = os.Stdin
	editCmd.Stdout = os.Stdout
	editCmd.Stderr = os.Stderr
	if err := editCmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func resolveStatsConfig(cmd *cobra.Command, fileCfg config.FileConfig) (model.StatsConfig, error) {
	a := fileCfg.Analysis
	applyFloatConfig(cmd, "session-gap", &statsGapMinutes, a.SessionGapMinutes)
	applyFloatConfig(cmd, "great-window", &statsGreatWindow, a.GreatWindow)
	applyIntConfig(cmd, "min-session", &statsMinSession, a.MinSessionSize)
	applyIntConfig(cmd, "top", &statsTopCharts, a.TopCharts)
	applyIntConfig(cmd, "curve-window", &statsCurveWindow, a.CurveWindow)
	statsReplays = resolvePath(cmd, "replays", statsReplays, fileCfg.Paths.Replays, config.DefaultReplaysDir())

	var since *time.Time
	if statsSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", statsSince, time.Local)
		if err != nil {
			return model.StatsConfig{}, fmt.Errorf("invalid --since value: %w", err)
		}
		since = &parsed
	}

	cfg := model.StatsConfig{
		Since:          since,
		MinSessionSize: statsMinSession,
		TopCharts:      statsTopCharts,
		GreatWindow:    statsGreatWindow,
		SessionGap:     time.Duration(statsGapMinutes * float64(time.Minute)),
	}
	if !statsNoReplays {
		cfg.ReplaysDir = statsReplays
	}
	if err := validateConfig(cfg, statsCurveWindow); err != nil {
		return model.StatsConfig{}, err
	}
	return cfg, nil
}

func validateConfig(cfg model.StatsConfig, curveWindow int) error {
	if cfg.MinSessionSize < 1 {
		return fmt.Errorf("--min-session must be >= 1")
	}
	if cfg.TopCharts < 1 {
		return fmt.Errorf("--top must be >= 1")
	}
	if curveWindow < 1 {
		return fmt.Errorf("--curve-window must be >= 1")
	}
	if cfg.SessionGap <= 0 {
		return fmt.Errorf("--session-gap must be > 0")
	}
	if cfg.GreatWindow <= 0 {
		return fmt.Errorf("--great-window must be > 0")
	}
	return nil
}

func loadStoredScores(cfg model.StatsConfig) ([]model.ScoreRecord, error) {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()
	records, err := st.ListScores(context.Background(), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load scores: %w", err)
	}
	return records, nil
}

func filterSince(records []model.ScoreRecord, since *time.Time) []model.ScoreRecord {
	if since == nil {
		return records
	}
	out := records[:0:0]
	for _, rec := range records {
		if !rec.PlayedAt.Before(*since) {
			out = append(out, rec)
		}
	}
	return out
}

func newAnalyzer(cfg model.StatsConfig) *replay.Analyzer {
	if cfg.ReplaysDir == "" {
		return nil
	}
	if info, err := os.Stat(cfg.ReplaysDir); err != nil || !info.IsDir() {
		logErrf("replay directory %s not found; skipping replay analysis\n", cfg.ReplaysDir)
		return nil
	}
	a := replay.NewAnalyzer(replay.DirSource{Dir: cfg.ReplaysDir})
	a.GreatWindow = cfg.GreatWindow
	return a
}

func logSkips(report *stats.ReplayReport, verbose bool) {
	if report == nil || len(report.Skipped) == 0 {
		return
	}
	if !verbose {
		logErrf("skipped %d replays (use --verbose to list them)\n", len(report.Skipped))
		return
	}
	for _, skip := range report.Skipped {
		logErrf("skipped replay: %v\n", skip)
	}
}

func resolvePath(cmd *cobra.Command, name, flagValue string, value *string, fallback string) string {
	applyStringConfig(cmd, name, &flagValue, value)
	if strings.TrimSpace(flagValue) == "" {
		return fallback
	}
	return expandHome(flagValue)
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# etterna-graph configuration
# Uncomment a value to enable it. CLI flags override config values.

[paths]
# xml = %q
# replays = %q

[analysis]
# session-gap-minutes = %.0f   # Pause that starts a new session
# great-window = %.2f          # Largest deviation in seconds that keeps a combo
# min-session-size = %d         # Minimum plays per session
# top-charts = %d              # Number of most played charts
# curve-window = %d            # Moving average window
`,
		config.DefaultEtternaXMLPath(),
		config.DefaultReplaysDir(),
		group.DefaultSessionGap.Minutes(),
		replay.DefaultGreatWindow,
		defaultMinSessionSize,
		defaultTopCharts,
		defaultCurveWindow,
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
