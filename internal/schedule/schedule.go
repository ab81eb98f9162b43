// Package schedule loads the relay's daily ON/OFF window from configuration.
package schedule

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v2"

	"github.com/sweeney/greenhouse-relay/internal/logic"
)

// ErrConfig matches every *ConfigError.
var ErrConfig = errors.New("schedule config")

// ConfigError reports a missing or malformed schedule.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("schedule: %v", e.Err)
	}
	return fmt.Sprintf("schedule %s: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrConfig) true for any ConfigError.
func (e *ConfigError) Is(target error) bool { return target == ErrConfig }

// Source provides the current schedule window. Each call may fail
// independently; callers must not assume a previous result is still valid.
type Source interface {
	Window() (logic.Window, error)
}

// File is the on-disk schedule document. JSON is valid YAML, so the same
// loader reads both config.json and config.yaml:
//
//	{"power-on": "08:00", "power-off": "20:00"}
type File struct {
	PowerOn  string `yaml:"power-on"`
	PowerOff string `yaml:"power-off"`
}

// Parse decodes a schedule document.
func Parse(data []byte) (logic.Window, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return logic.Window{}, fmt.Errorf("decode: %w", err)
	}
	if f.PowerOn == "" {
		return logic.Window{}, errors.New(`missing "power-on"`)
	}
	if f.PowerOff == "" {
		return logic.Window{}, errors.New(`missing "power-off"`)
	}

	on, err := logic.ParseTimeOfDay(f.PowerOn)
	if err != nil {
		return logic.Window{}, fmt.Errorf("power-on: %w", err)
	}
	off, err := logic.ParseTimeOfDay(f.PowerOff)
	if err != nil {
		return logic.Window{}, fmt.Errorf("power-off: %w", err)
	}
	return logic.Window{On: on, Off: off}, nil
}

// FileSource re-reads a schedule file on every call, so edits take effect
// on the next scheduler tick without a restart.
type FileSource struct {
	Path string
}

// NewFileSource returns a source reading path.
func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

// Window reads and parses the file.
func (s *FileSource) Window() (logic.Window, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return logic.Window{}, &ConfigError{Path: s.Path, Err: err}
	}
	w, err := Parse(data)
	if err != nil {
		return logic.Window{}, &ConfigError{Path: s.Path, Err: err}
	}
	return w, nil
}

// Static is a Source with a fixed window, replaceable at runtime.
type Static struct {
	mu  sync.RWMutex
	w   logic.Window
	err error
}

// NewStatic returns a source that always yields w.
func NewStatic(w logic.Window) *Static {
	return &Static{w: w}
}

// Window returns the configured window, or the configured error.
func (s *Static) Window() (logic.Window, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.err != nil {
		return logic.Window{}, &ConfigError{Err: s.err}
	}
	return s.w, nil
}

// Set replaces the window and clears any error.
func (s *Static) Set(w logic.Window) {
	s.mu.Lock()
	s.w = w
	s.err = nil
	s.mu.Unlock()
}

// Fail makes subsequent Window calls return err until Set is called.
func (s *Static) Fail(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}
