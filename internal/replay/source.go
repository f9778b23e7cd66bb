package replay

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// ErrNotFound reports that no replay exists for a key.
var ErrNotFound = errors.New("replay not found")

// Source resolves a replay key to its timing stream.
type Source interface {
	Open(key string) (io.ReadCloser, error)
}

// DirSource reads replays from a ReplaysV2 directory. A replay is stored
// either as a plain file named after its key or as a zstd archive with a
// ".zst" suffix.
type DirSource struct {
	Dir string
}

// Open implements Source.
func (s DirSource) Open(key string) (io.ReadCloser, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return nil, fmt.Errorf("invalid replay key %q: %w", key, ErrNotFound)
	}
	path := filepath.Join(s.Dir, key)
	file, err := os.Open(path)
	if err == nil {
		return file, nil
	}
	if !os.IsNotExist(err) {
		return nil, err
	}
	file, err = os.Open(path + ".zst")
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("replay %s: %w", key, ErrNotFound)
		}
		return nil, err
	}
	zr, err := zstd.NewReader(file)
	if err != nil {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close on decoder failure.
			_ = cerr
		}
		return nil, fmt.Errorf("failed to open zstd replay %s: %w", key, err)
	}
	return &zstdFile{file: file, zr: zr}, nil
}

type zstdFile struct {
	file *os.File
	zr   *zstd.Decoder
}

func (z *zstdFile) Read(p []byte) (int, error) {
	return z.zr.Read(p)
}

func (z *zstdFile) Close() error {
	z.zr.Close()
	return z.file.Close()
}
