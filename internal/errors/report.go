package errors

import (
	"encoding/json"
	"errors"
)

// Report is mumei's canonical structured error type. Every phase
// (parser, resolver, type registry, verifier, codegen) that fails
// returns one of these wrapped in a ReportError.
type Report struct {
	Schema  string         `json:"schema"` // always "mumei.error/v1"
	Code    string         `json:"code"`
	Phase   string         `json:"phase"` // "parser", "resolver", "types", "verify", "codegen"
	Message string         `json:"message"`
	Pos     string         `json:"pos,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
}

// ReportError wraps a Report as an error so it survives errors.As
// unwrapping through the pipeline.
type ReportError struct {
	Rep *Report
}

func (e *ReportError) Error() string {
	if e.Rep == nil {
		return "unknown error"
	}
	return e.Rep.Code + ": " + e.Rep.Message
}

// AsReport extracts a Report from an error chain.
func AsReport(err error) (*Report, bool) {
	var re *ReportError
	if errors.As(err, &re) {
		return re.Rep, true
	}
	return nil, false
}

// Wrap wraps r as a ReportError, or returns nil if r is nil.
func Wrap(r *Report) error {
	if r == nil {
		return nil
	}
	return &ReportError{Rep: r}
}

// ToJSON renders the report as JSON, indented unless compact is true.
func (r *Report) ToJSON(compact bool) (string, error) {
	var data []byte
	var err error
	if compact {
		data, err = json.Marshal(r)
	} else {
		data, err = json.MarshalIndent(r, "", "  ")
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}
