package logging

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const (
	logFilePrefix = "rx-intray_"
	logFileExt    = ".log"
)

// rotate deletes the oldest rx-intray log files in dir so that at most
// maxFiles-1 remain, leaving room for the file about to be created.
// Other files are never touched. maxFiles <= 0 disables rotation.
func rotate(dir string, maxFiles int) error {
	if maxFiles <= 0 {
		return nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	type logEntry struct {
		path    string
		modTime time.Time
	}
	var logs []logEntry
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, logFilePrefix) || !strings.HasSuffix(name, logFileExt) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		logs = append(logs, logEntry{path: filepath.Join(dir, name), modTime: info.ModTime()})
	}

	excess := len(logs) - (maxFiles - 1)
	if excess <= 0 {
		return nil
	}
	sort.Slice(logs, func(i, j int) bool {
		if logs[i].modTime.Equal(logs[j].modTime) {
			return logs[i].path < logs[j].path
		}
		return logs[i].modTime.Before(logs[j].modTime)
	})

	var errs []error
	for _, l := range logs[:excess] {
		if err := os.Remove(l.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
