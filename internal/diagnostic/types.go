package diagnostic

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"prov-converter/internal/common"
)

// Diagnostics holds all diagnostic information from one run.
type Diagnostics struct {
	Errors   []Diagnostic
	Warnings []Diagnostic
	Infos    []Diagnostic
}

// Diagnostic represents a single diagnostic message.
type Diagnostic struct {
	// Severity of the diagnostic.
	Severity DiagnosticSeverity
	// Code is a unique identifier for this type of diagnostic.
	Code string
	// Message is the human-readable description.
	Message string
	// Class is the provenance class this relates to (if any).
	Class string
	// Subject is the instance id or attribute this relates to (if any).
	Subject string
	// Suggestions are potential fixes or alternatives.
	Suggestions []string
}

// DiagnosticSeverity represents the severity level of a diagnostic.
type DiagnosticSeverity int

const (
	DiagnosticInfo DiagnosticSeverity = iota
	DiagnosticWarning
	DiagnosticError
)

// String returns a human-readable severity name.
func (s DiagnosticSeverity) String() string {
	switch s {
	case DiagnosticInfo:
		return "info"
	case DiagnosticWarning:
		return "warning"
	case DiagnosticError:
		return "error"
	default:
		return common.UnknownStr
	}
}

// Add records d under its severity.
func (d *Diagnostics) Add(diag Diagnostic) {
	switch diag.Severity {
	case DiagnosticError:
		d.Errors = append(d.Errors, diag)
	case DiagnosticWarning:
		d.Warnings = append(d.Warnings, diag)
	default:
		d.Infos = append(d.Infos, diag)
	}
}

// AddError adds an error diagnostic.
func (d *Diagnostics) AddError(code, message, class, subject string) {
	d.Add(Diagnostic{Severity: DiagnosticError, Code: code, Message: message, Class: class, Subject: subject})
}

// AddWarning adds a warning diagnostic.
func (d *Diagnostics) AddWarning(code, message, class, subject string) {
	d.Add(Diagnostic{Severity: DiagnosticWarning, Code: code, Message: message, Class: class, Subject: subject})
}

// AddInfo adds an info diagnostic.
func (d *Diagnostics) AddInfo(code, message, class, subject string) {
	d.Add(Diagnostic{Severity: DiagnosticInfo, Code: code, Message: message, Class: class, Subject: subject})
}

// HasErrors returns true if there are any error diagnostics.
func (d *Diagnostics) HasErrors() bool {
	return len(d.Errors) > 0
}

// IsValid returns true if there are no errors.
func (d *Diagnostics) IsValid() bool {
	return len(d.Errors) == 0
}

// Error returns a combined error from all error diagnostics, or nil if valid.
func (d *Diagnostics) Error() error {
	if d.IsValid() {
		return nil
	}

	parts := make([]string, 0, len(d.Errors))
	for _, e := range d.Errors {
		parts = append(parts, e.String())
	}

	return errors.New(strings.Join(parts, "; "))
}

// ByCode returns every diagnostic with the given code, errors first.
func (d *Diagnostics) ByCode(code string) []Diagnostic {
	var out []Diagnostic

	for _, list := range [][]Diagnostic{d.Errors, d.Warnings, d.Infos} {
		for _, diag := range list {
			if diag.Code == code {
				out = append(out, diag)
			}
		}
	}

	return out
}

// Log writes one line per diagnostic: infos, then warnings, then errors.
func (d *Diagnostics) Log(logger *zap.Logger) {
	for _, diag := range d.Infos {
		logger.Info(diag.Message, diag.fields()...)
	}

	for _, diag := range d.Warnings {
		logger.Warn(diag.Message, diag.fields()...)
	}

	for _, diag := range d.Errors {
		logger.Error(diag.Message, diag.fields()...)
	}
}

func (d Diagnostic) fields() []zap.Field {
	fields := []zap.Field{zap.String("code", d.Code)}
	if d.Class != "" {
		fields = append(fields, zap.String("class", d.Class))
	}

	if d.Subject != "" {
		fields = append(fields, zap.String("subject", d.Subject))
	}

	if len(d.Suggestions) > 0 {
		fields = append(fields, zap.Strings("did_you_mean", d.Suggestions))
	}

	return fields
}

// String returns a formatted diagnostic string.
func (d Diagnostic) String() string {
	var prefix []string
	if d.Class != "" {
		prefix = append(prefix, "["+d.Class+"]")
	}

	if d.Subject != "" {
		prefix = append(prefix, d.Subject)
	}

	msg := d.Message
	if d.Code != "" {
		msg = fmt.Sprintf("[%s] %s", d.Code, msg)
	}

	if len(d.Suggestions) > 0 {
		msg += " (did you mean " + strings.Join(d.Suggestions, ", ") + "?)"
	}

	if len(prefix) > 0 {
		return strings.Join(prefix, " ") + ": " + msg
	}

	return msg
}
