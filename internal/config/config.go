// Package config handles TOML run configuration files, which supply
// defaults for any command line flag.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// File represents a run configuration file, e.g.:
//
//	standard = "93"
//	metrics = true
//	seed = 42
//	step-limit = 1000000
//	timeout = "5s"
//	stdin = "input.txt"
//	record = "runs.db"
type File struct {
	Standard  string  `toml:"standard"`
	Metrics   bool    `toml:"metrics"`
	Seed      *uint64 `toml:"seed"`
	StepLimit uint64  `toml:"step-limit"`
	Timeout   string  `toml:"timeout"`
	Stdin     string  `toml:"stdin"`
	Record    string  `toml:"record"`
	Trace     bool    `toml:"trace"`

	// Path is the file that was loaded (set at load time).
	Path string `toml:"-"`
}

// Load parses the named configuration file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	var f File
	md, err := toml.Decode(string(data), &f)
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	if undec := md.Undecoded(); len(undec) > 0 {
		return nil, fmt.Errorf("unknown key %q in %s", undec[0].String(), path)
	}
	if _, err := f.TimeoutDuration(); err != nil {
		return nil, fmt.Errorf("invalid timeout in %s: %w", path, err)
	}
	f.Path = path
	return &f, nil
}

// TimeoutDuration parses the Timeout field; an empty string means no
// timeout.
func (f *File) TimeoutDuration() (time.Duration, error) {
	if f.Timeout == "" {
		return 0, nil
	}
	return time.ParseDuration(f.Timeout)
}
