package types

import (
	"fmt"
	"strings"
)

// UnitError is one failure recorded while processing a unit of work. Line is
// set for import rows; Unit names the child project for propagation.
type UnitError struct {
	Line    int    `yaml:"line,omitempty"`
	Unit    string `yaml:"unit,omitempty"`
	Action  string `yaml:"action"`
	Message string `yaml:"message"`
}

func (e UnitError) String() string {
	if e.Line > 0 {
		return fmt.Sprintf("At line %d (while %s): %s", e.Line, e.Action, e.Message)
	}
	return fmt.Sprintf("While %s: %s", e.Action, e.Message)
}

// FormatUnitErrors renders errors in the order they were recorded.
func FormatUnitErrors(errs []UnitError) []string {
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.String())
	}
	return out
}

type CreatedCounts struct {
	Users    int `yaml:"users"`
	Groups   int `yaml:"groups"`
	Roles    int `yaml:"roles"`
	Projects int `yaml:"projects"`
}

func (c CreatedCounts) Total() int {
	return c.Users + c.Groups + c.Roles + c.Projects
}

type ImportReport struct {
	RunID     string        `yaml:"run_id"`
	Processed int           `yaml:"processed"`
	Created   CreatedCounts `yaml:"created"`
	Errors    []UnitError   `yaml:"errors"`
}

type CopySettingsReport struct {
	RunID    string      `yaml:"run_id"`
	Project  string      `yaml:"project"`
	Children int         `yaml:"children"`
	Errors   []UnitError `yaml:"errors"`
}

// ValidationError is returned by stores when an entity fails validation.
// Messages are complete human-readable sentences.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Messages, " ")
}
