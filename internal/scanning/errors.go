package scanning

import "fmt"

// ConversionError indicates an uploaded document could not be normalized to
// an image. Caused by client input; the HTTP layer maps it to a 4xx status.
type ConversionError struct {
	Op    string
	Cause error
}

func (e *ConversionError) Error() string {
	if e.Cause == nil {
		return e.Op
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Cause)
}

func (e *ConversionError) Unwrap() error { return e.Cause }

// ConfigError indicates the selected scanner is missing required
// configuration. Operator-caused; fatal at startup.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string { return e.Msg }

// UpstreamError is a non-success response from the inference service. The
// original status code and body are preserved for diagnosis and proxying.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("claude API error (status %d): %s", e.StatusCode, e.Body)
}
