package adapters

import (
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/ZanzyTHEbar/errbuilder-go"
)

// ScratchFiles copies input files into a private scratch directory so the
// job never reads a file that its submitter may still change or remove.
type ScratchFiles struct {
	Dir string
}

func NewScratchFiles(dir string) ScratchFiles {
	return ScratchFiles{Dir: dir}
}

// Acquire copies sourcePath and returns the copy's path with a release func
// that deletes it. Releasing twice is harmless.
func (s ScratchFiles) Acquire(sourcePath string) (string, func() error, error) {
	src, err := os.Open(sourcePath)
	if err != nil {
		return "", nil, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("failed to open input file").
			WithCause(err)
	}
	defer src.Close()

	if s.Dir != "" {
		if err := os.MkdirAll(s.Dir, 0o700); err != nil {
			return "", nil, scratchError(err)
		}
	}
	dst, err := os.CreateTemp(s.Dir, "bulkops-*"+filepath.Ext(sourcePath))
	if err != nil {
		return "", nil, scratchError(err)
	}
	path := dst.Name()
	release := func() error {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
		return nil
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		_ = release()
		return "", nil, scratchError(err)
	}
	if err := dst.Close(); err != nil {
		_ = release()
		return "", nil, scratchError(err)
	}
	return path, release, nil
}

func scratchError(err error) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeInternal).
		WithMsg("failed to copy input into scratch space").
		WithCause(err)
}
