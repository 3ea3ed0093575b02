// Package instance keeps a single riseroll process writing to a database.
//
// The selection state assumes one writer per device. Acquire records the
// current process in a lockfile next to the database; a second process finds
// the lockfile, confirms the recorded process is still alive and refuses to
// start.
package instance

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mitchellh/go-ps"

	"github.com/julianstephens/riseroll/internal/constants"
	"github.com/julianstephens/riseroll/internal/logger"
)

var (
	findProcessFunc = ps.FindProcess
	getpidFunc      = os.Getpid
	executableFunc  = currentExecutable
)

var ErrAlreadyRunning = errors.New("another riseroll process is using this database")

// Owner identifies the process recorded in a lockfile.
type Owner struct {
	PID        int
	Executable string
}

type Lock struct {
	path string
	pid  int
}

func currentExecutable() string {
	exe, err := os.Executable()
	if err != nil {
		return constants.AppName
	}
	return filepath.Base(exe)
}

// Path returns the lockfile location for a database in dir.
func Path(dir string) string {
	return filepath.Join(dir, constants.LockfileName)
}

// Acquire takes the lock in dir. A lockfile left by a process that is no
// longer running is replaced.
func Acquire(dir string) (*Lock, error) {
	path := Path(dir)

	owner, alive, err := Inspect(dir)
	if err != nil {
		logger.Warn("Replacing unreadable lockfile", "path", path, "error", err)
	}
	pid := getpidFunc()
	if alive && owner.PID != pid {
		return nil, fmt.Errorf("%w (pid %d)", ErrAlreadyRunning, owner.PID)
	}
	if owner != nil && !alive {
		logger.Debug("Removing stale lockfile", "path", path, "pid", owner.PID)
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to remove stale lockfile: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		if os.IsExist(err) {
			return nil, ErrAlreadyRunning
		}
		return nil, fmt.Errorf("failed to create lockfile: %w", err)
	}
	defer f.Close()

	if _, err := fmt.Fprintf(f, "%d|%s", pid, executableFunc()); err != nil {
		return nil, fmt.Errorf("failed to write lockfile: %w", err)
	}
	return &Lock{path: path, pid: pid}, nil
}

// Release removes the lockfile if it still belongs to this process.
func (l *Lock) Release() error {
	if l == nil {
		return nil
	}
	owner, err := readLockfile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if owner.PID != l.pid {
		return nil
	}
	return os.Remove(l.path)
}

// Inspect reads the lockfile in dir. It returns a nil Owner when there is no
// lockfile, and reports whether the recorded process is still running.
func Inspect(dir string) (*Owner, bool, error) {
	owner, err := readLockfile(Path(dir))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	process, err := findProcessFunc(owner.PID)
	if err != nil || process == nil {
		return owner, false, nil
	}
	// A recycled PID belongs to some other program.
	if !strings.HasPrefix(process.Executable(), trimExe(owner.Executable)) {
		return owner, false, nil
	}
	return owner, true, nil
}

func trimExe(name string) string {
	return strings.TrimSuffix(name, ".exe")
}

func readLockfile(path string) (*Owner, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	parts := strings.SplitN(strings.TrimSpace(string(content)), "|", 2)
	if len(parts) != 2 {
		return nil, errors.New("lockfile is malformed")
	}
	pid, err := strconv.Atoi(parts[0])
	if err != nil || pid <= 0 {
		return nil, errors.New("invalid process ID in lockfile")
	}
	if strings.TrimSpace(parts[1]) == "" {
		return nil, errors.New("executable in lockfile is empty")
	}
	return &Owner{PID: pid, Executable: parts[1]}, nil
}
