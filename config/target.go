// The target table keeps the column layout of the original deployment's
// CSV files (host,user,passwd,cwd,local_root,file_reg), one sync target
// per row. Empty cells are treated as empty strings.
package config

import (
	"fmt"
	"path/filepath"
	"regexp"

	"github.com/gocarina/gocsv"
	"github.com/spf13/afero"
)

// Target is one remote-directory-to-local-directory sync. It is built
// from one row of the CSV table and never mutated afterwards.
type Target struct {
	Host        string `csv:"host"`       // FTP server address, without an "ftp://" prefix
	User        string `csv:"user"`       // empty means anonymous login
	Password    string `csv:"passwd"`     //
	RemoteDir   string `csv:"cwd"`        // remote directory, "/"-separated
	LocalRoot   string `csv:"local_root"` // local directory the files download into
	FilePattern string `csv:"file_reg"`   // regular expression, matched against the full file name
}

// Validate ensures the target row can drive a sync.
func (t *Target) Validate() error {
	if t.Host == "" {
		return fmt.Errorf("target host is required")
	}
	if t.LocalRoot == "" {
		return fmt.Errorf("target local_root is required")
	}
	if _, err := t.CompilePattern(); err != nil {
		return fmt.Errorf("invalid file_reg %q: %w", t.FilePattern, err)
	}
	return nil
}

// CompilePattern compiles the filename pattern anchored at both ends, so
// a name is a candidate only when the whole name matches, never on a
// substring hit. An empty pattern matches every file.
func (t *Target) CompilePattern() (*regexp.Regexp, error) {
	pattern := t.FilePattern
	if pattern == "" {
		pattern = ".+"
	}
	return regexp.Compile("^(?:" + pattern + ")$")
}

// LocalPath returns the local target path for one remote file name.
func (t *Target) LocalPath(name string) string {
	return filepath.Join(t.LocalRoot, name)
}

// LoadTargets reads the CSV table of sync targets. Every row is
// validated; a single bad row fails the load so a misconfigured sweep
// never partially runs.
func LoadTargets(fs afero.Fs, path string) ([]Target, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("read targets csv %s: %w", path, err)
	}

	var targets []Target
	if err := gocsv.UnmarshalBytes(data, &targets); err != nil {
		return nil, fmt.Errorf("parse targets csv %s: %w", path, err)
	}

	for i := range targets {
		if err := targets[i].Validate(); err != nil {
			return nil, fmt.Errorf("targets csv %s row %d: %w", path, i+1, err)
		}
	}
	return targets, nil
}
