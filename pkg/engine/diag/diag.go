// Package diag collects per-file conversion warnings and logs each one once.
package diag

import (
	"context"
	"fmt"
	"log/slog"
)

// Code classifies a warning.
type Code string

// Warning codes.
const (
	CodeUnknownOption      Code = "unknown-option"
	CodeUnsupportedForm    Code = "unsupported-form"
	CodeUnknownDirective   Code = "unknown-directive"
	CodeUnclassifiedRoot   Code = "unclassified-instance-root"
	CodeDuplicateSymbol    Code = "duplicate-symbol"
	CodeExpression         Code = "unparsable-expression"
	CodeConditionalOrphan  Code = "conditional-orphan"
	CodeLocalizationFormat Code = "localization-format"
)

// Diagnostic is one recoverable issue found while converting a file.
type Diagnostic struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	File    string `json:"file"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s [%s]", d.File, d.Message, d.Code)
}

// Reporter records diagnostics for a single file.
type Reporter struct {
	file   string
	logger *slog.Logger
	items  []Diagnostic
}

// NewReporter returns a reporter for file. A nil logger discards log output.
func NewReporter(logger *slog.Logger, file string) *Reporter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Reporter{file: file, logger: logger}
}

// Warn records and logs a warning.
func (r *Reporter) Warn(code Code, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)

	r.items = append(r.items, Diagnostic{Code: code, Message: msg, File: r.file})
	r.logger.LogAttrs(context.Background(), slog.LevelWarn, msg,
		slog.String("file", r.file),
		slog.String("code", string(code)),
	)
}

// Diagnostics returns the recorded warnings in order.
func (r *Reporter) Diagnostics() []Diagnostic {
	out := make([]Diagnostic, len(r.items))
	copy(out, r.items)

	return out
}

// Count returns the number of recorded warnings.
func (r *Reporter) Count() int {
	return len(r.items)
}

// Has reports whether a warning with the given code was recorded.
func (r *Reporter) Has(code Code) bool {
	for _, item := range r.items {
		if item.Code == code {
			return true
		}
	}

	return false
}
