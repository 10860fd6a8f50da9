package lock

import (
	"testing"

	"github.com/mitchellh/go-ps"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

type fakeProcess struct {
	pid int
	exe string
}

func (p fakeProcess) Pid() int           { return p.pid }
func (p fakeProcess) PPid() int          { return 1 }
func (p fakeProcess) Executable() string { return p.exe }

func finder(procs ...fakeProcess) FindFunc {
	return func(pid int) (ps.Process, error) {
		for _, p := range procs {
			if p.pid == pid {
				return p, nil
			}
		}
		return nil, nil
	}
}

func TestAcquireFresh(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	p, err := AcquireWith(fs, "/run/medclock.pid", 100, "medclock", finder())
	require.NoError(t, err)

	data, err := afero.ReadFile(fs, "/run/medclock.pid")
	require.NoError(t, err)
	require.Equal(t, "100\n", string(data))

	require.NoError(t, p.Release())
	exists, err := afero.Exists(fs, "/run/medclock.pid")
	require.NoError(t, err)
	require.False(t, exists)
}

func TestAcquireLiveInstance(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/run/medclock.pid", []byte("42\n"), 0o644))

	_, err := AcquireWith(fs, "/run/medclock.pid", 100, "medclock", finder(fakeProcess{pid: 42, exe: "medclock"}))
	require.ErrorIs(t, err, ErrAlreadyRunning)
}

func TestAcquireStalePidFile(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/run/medclock.pid", []byte("42\n"), 0o644))

	// pid 42 was reused by an unrelated process.
	_, err := AcquireWith(fs, "/run/medclock.pid", 100, "medclock", finder(fakeProcess{pid: 42, exe: "sshd"}))
	require.NoError(t, err)

	data, _ := afero.ReadFile(fs, "/run/medclock.pid")
	require.Equal(t, "100\n", string(data))
}

func TestAcquireGarbagePidFile(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/run/medclock.pid", []byte("junk"), 0o644))

	_, err := AcquireWith(fs, "/run/medclock.pid", 100, "medclock", finder())
	require.NoError(t, err)
}
