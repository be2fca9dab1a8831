package locator

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"
)

// ErrNoLogFound reports that the target directory has no file matching
// the access log naming convention.
var ErrNoLogFound = errors.New("no log file found")

var logNamePattern = regexp.MustCompile(`^nginx-access-ui\.log-(\d{8})(\.gz)?$`)

// LogFileRef identifies one selected input log by filename metadata only.
type LogFileRef struct {
	Path       string
	Date       time.Time
	Compressed bool
}

/*
A component used to select the freshest access log from a directory.

Responsibilities:
	- list directory entries and match them against the dated naming
	convention `nginx-access-ui.log-YYYYMMDD` with optional `.gz` suffix
	- pick the entry with the maximum embedded date

Attention:
	- selection never opens or reads file contents
	- when several entries share the maximum date, the lexicographically
	greatest filename wins, so selection stays deterministic
*/
type Locator struct {
	logDir string
}

func NewLocator(logDir string) (*Locator, error) {
	if logDir == "" {
		return nil, fmt.Errorf("logDir can't be empty")
	}
	return &Locator{logDir: logDir}, nil
}

func (l *Locator) FindLatest() (LogFileRef, error) {
	entries, readErr := os.ReadDir(l.logDir)
	if readErr != nil {
		return LogFileRef{}, fmt.Errorf("can't list log directory %v: %w", l.logDir, ErrNoLogFound)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, entry.Name())
	}
	ref, found := SelectLatest(names)
	if !found {
		return LogFileRef{}, fmt.Errorf("no match in %v: %w", l.logDir, ErrNoLogFound)
	}
	ref.Path = filepath.Join(l.logDir, ref.Path)
	return ref, nil
}

// SelectLatest picks the matching name with the maximum embedded date
// from a plain listing. The returned Path is the bare filename.
func SelectLatest(names []string) (LogFileRef, bool) {
	var last LogFileRef
	var lastName string
	found := false
	for _, name := range names {
		match := logNamePattern.FindStringSubmatch(name)
		if match == nil {
			continue
		}
		date, dateErr := time.Parse("20060102", match[1])
		if dateErr != nil {
			// eight digits that do not form a calendar date, e.g. 20180631
			continue
		}
		if found && date.Before(last.Date) {
			continue
		}
		if found && date.Equal(last.Date) && name < lastName {
			continue
		}
		last = LogFileRef{Path: name, Date: date, Compressed: match[2] == ".gz"}
		lastName = name
		found = true
	}
	return last, found
}
