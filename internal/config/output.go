package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"github.com/reelcap/reelcap/internal/logger"
)

// lowDiskBytes is the free-space threshold below which a warning is emitted.
const lowDiskBytes = 1 << 30 // 1 GiB

// maxAutoNumber bounds the collision-avoidance suffix search.
const maxAutoNumber = 999

// resolveOutputPath turns the requested output path into a writable target:
// a timestamped default name when unspecified, parent directories created,
// collisions resolved by prompt (interactive) or auto-numbering, and a
// free-space check on the target filesystem.
func (r *Resolver) resolveOutputPath(requested, format string, overwrite bool) (string, error) {
	path := requested
	if path == "" {
		path = fmt.Sprintf("recording-%s.%s", time.Now().Format("20060102-150405"), format)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", &ConfigurationError{
			Kind: ErrOutputUnwritable,
			Msg:  fmt.Sprintf("cannot create output directory %q: %v", dir, err),
			Err:  err,
		}
	}

	if err := probeWritable(dir); err != nil {
		return "", &ConfigurationError{
			Kind: ErrOutputUnwritable,
			Msg:  fmt.Sprintf("output directory %q is not writable: %v", dir, err),
			Err:  err,
		}
	}

	checkFreeSpace(dir)

	if _, err := os.Stat(path); err == nil && !overwrite {
		resolved, err := r.resolveCollision(path)
		if err != nil {
			return "", err
		}
		path = resolved
	}

	return path, nil
}

// resolveCollision picks a new path for an existing target: prompt the user
// in interactive mode, auto-number otherwise.
func (r *Resolver) resolveCollision(path string) (string, error) {
	if r.Interactive {
		fmt.Printf("%s already exists. Overwrite? [y/N] ", path)
		reader := bufio.NewReader(os.Stdin)
		answer, _ := reader.ReadString('\n')
		if strings.EqualFold(strings.TrimSpace(answer), "y") {
			return path, nil
		}
	}

	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	for i := 1; i <= maxAutoNumber; i++ {
		candidate := fmt.Sprintf("%s-%d%s", base, i, ext)
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			logger.WithComponent("config").Info().
				Str("requested", path).
				Str("resolved", candidate).
				Msg("Output exists, using numbered name")
			return candidate, nil
		}
	}

	return "", &ConfigurationError{
		Kind: ErrOutputUnwritable,
		Msg:  fmt.Sprintf("%q and %d numbered variants already exist; pass --overwrite or a different path", path, maxAutoNumber),
	}
}

// probeWritable verifies the directory accepts new files by creating and
// removing a scratch file.
func probeWritable(dir string) error {
	f, err := os.CreateTemp(dir, ".reelcap-probe-*")
	if err != nil {
		return err
	}
	name := f.Name()
	f.Close()
	return os.Remove(name)
}

// checkFreeSpace warns when the target filesystem is under the low-disk
// threshold. Recording continues; running out of space mid-session surfaces
// through the sink instead.
func checkFreeSpace(dir string) {
	var stat unix.Statfs_t
	if err := unix.Statfs(dir, &stat); err != nil {
		logger.WithComponent("config").Debug().
			Err(err).
			Str("dir", dir).
			Msg("Free-space check unavailable")
		return
	}

	free := stat.Bavail * uint64(stat.Bsize)
	if free < lowDiskBytes {
		logger.WithComponent("config").Warn().
			Uint64("free_bytes", free).
			Str("dir", dir).
			Msg("Less than 1 GiB free on the output filesystem; long recordings may fail")
	}
}
