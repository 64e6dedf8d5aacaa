package layout

import (
	"fmt"
	"strings"
)

// Diagnostic codes.
const (
	CodeMissingRequiredAttribute = "missing-required-attribute"
	CodeDanglingTypeReference    = "dangling-type-reference"
	CodeInvalidTypeUsage         = "invalid-type-usage"
	CodeUnknownSpecification     = "unknown-specification"
	CodeUnmatchedDeclaration     = "unmatched-declaration"
	CodeDepthExceeded            = "depth-exceeded"
	CodeLocationEvaluation       = "location-evaluation"
)

// Diagnostics collects everything that was skipped while building the
// layout. Nothing recorded here stops a run.
type Diagnostics struct {
	Warnings []Diagnostic
}

// Diagnostic is a single skipped entry, member or variable.
type Diagnostic struct {
	// Code is one of the Code* constants.
	Code string
	// Message is the human-readable description.
	Message string
	// Subject names the variable, member or entry concerned (if any).
	Subject string
}

func (d *Diagnostics) Warn(code, subject, format string, args ...interface{}) {
	d.Warnings = append(d.Warnings, Diagnostic{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Subject: subject,
	})
}

func (d *Diagnostics) Merge(other Diagnostics) {
	d.Warnings = append(d.Warnings, other.Warnings...)
}

func (d Diagnostics) Len() int {
	return len(d.Warnings)
}

// Codes lists the code of every warning in the order they were recorded.
func (d Diagnostics) Codes() []string {
	codes := make([]string, len(d.Warnings))
	for i, w := range d.Warnings {
		codes[i] = w.Code
	}
	return codes
}

func (d Diagnostic) String() string {
	var s strings.Builder
	s.WriteString("[")
	s.WriteString(d.Code)
	s.WriteString("] ")
	if d.Subject != "" {
		s.WriteString(d.Subject)
		s.WriteString(": ")
	}
	s.WriteString(d.Message)
	return s.String()
}
