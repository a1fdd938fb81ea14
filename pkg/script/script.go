// Package script runs YAML scripts of list operations against named
// slist lists of int64.
package script

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Script is a named sequence of list operations.
type Script struct {
	Name string `yaml:"name"`

	// Lists are the initial lists, by name.
	Lists map[string][]int64 `yaml:"lists"`

	Steps []Step `yaml:"steps"`
}

// Step is one operation. Args holds every key of the step except "op"
// and is decoded into the argument struct of the op.
type Step struct {
	Op   string         `yaml:"op"`
	Args map[string]any `yaml:",inline"`

	exec execFunc
}

// StepError is returned when a step cannot be compiled or fails to run.
type StepError struct {
	Script string
	Step   int
	Op     string
	Err    error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("script %s: step #%d (%s): %v", e.Script, e.Step, e.Op, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// Load reads and compiles the script at path. If the script has no name,
// the file name without extension is used.
func Load(path string) (*Script, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return Parse(name, b)
}

// Parse decodes and compiles a script. name is used if the script does
// not set its own.
func Parse(name string, b []byte) (*Script, error) {
	s := new(Script)
	if err := yaml.Unmarshal(b, s); err != nil {
		return nil, fmt.Errorf("failed to decode script %s: %w", name, err)
	}
	if len(s.Name) == 0 {
		s.Name = name
	}
	if err := s.Compile(); err != nil {
		return nil, err
	}
	return s, nil
}

// Compile checks every step and binds it to its op. It is called by Parse
// and, if needed, by Runner.Run. It is not safe to compile the same
// Script from multiple goroutines.
func (s *Script) Compile() error {
	if len(s.Steps) == 0 {
		return fmt.Errorf("script %s has no steps", s.Name)
	}
	for i := range s.Steps {
		st := &s.Steps[i]
		if st.exec != nil {
			continue
		}
		f, ok := ops[st.Op]
		if !ok {
			return &StepError{Script: s.Name, Step: i, Op: st.Op, Err: errors.New("unknown op")}
		}
		exec, err := f(st.Args)
		if err != nil {
			return &StepError{Script: s.Name, Step: i, Op: st.Op, Err: err}
		}
		st.exec = exec
	}
	return nil
}
