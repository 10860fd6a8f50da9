// Package lock keeps a single medclock instance owning the hardware.
package lock

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mitchellh/go-ps"
	"github.com/spf13/afero"
)

// ErrAlreadyRunning is returned when the pid file names a live medclock process.
var ErrAlreadyRunning = errors.New("lock: medclock is already running")

// FindFunc looks up a process by pid. It returns nil when none exists.
type FindFunc func(pid int) (ps.Process, error)

// PIDFile is an acquired pid file.
type PIDFile struct {
	fs   afero.Fs
	path string
}

// Acquire writes the current pid to path. A pid file left by a dead process,
// or by a process with a different executable, is taken over.
func Acquire(fsys afero.Fs, path string) (*PIDFile, error) {
	exe := filepath.Base(os.Args[0])
	return AcquireWith(fsys, path, os.Getpid(), exe, ps.FindProcess)
}

// AcquireWith is Acquire with injected identity and process lookup.
func AcquireWith(fsys afero.Fs, path string, self int, exe string, find FindFunc) (*PIDFile, error) {
	data, err := afero.ReadFile(fsys, path)
	switch {
	case err == nil:
		if pid, perr := strconv.Atoi(strings.TrimSpace(string(data))); perr == nil && pid != self {
			p, ferr := find(pid)
			if ferr != nil {
				return nil, fmt.Errorf("look up pid %d: %w", pid, ferr)
			}
			if p != nil && p.Executable() == exe {
				return nil, fmt.Errorf("%w (pid %d)", ErrAlreadyRunning, pid)
			}
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, fmt.Errorf("read pid file: %w", err)
	}

	if err := fsys.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create pid dir: %w", err)
	}
	if err := afero.WriteFile(fsys, path, []byte(strconv.Itoa(self)+"\n"), 0o644); err != nil {
		return nil, fmt.Errorf("write pid file: %w", err)
	}
	return &PIDFile{fs: fsys, path: path}, nil
}

// Release removes the pid file.
func (p *PIDFile) Release() error {
	if err := p.fs.Remove(p.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove pid file: %w", err)
	}
	return nil
}
