package domain

import (
	"fmt"
	"strings"
)

// VCSCommandError reports a git invocation that could not be spawned or exited non-zero.
type VCSCommandError struct {
	Args   []string
	Stdout string
	Stderr string
	Err    error
}

func (e *VCSCommandError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "git command failed: %v", e.Args)
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	if out := strings.TrimSpace(e.Stdout); out != "" {
		fmt.Fprintf(&b, "\nstdout: %s", out)
	}
	if errOut := strings.TrimSpace(e.Stderr); errOut != "" {
		fmt.Fprintf(&b, "\nstderr: %s", errOut)
	}
	return b.String()
}

func (e *VCSCommandError) Unwrap() error { return e.Err }

// InferenceTransportError covers connection failures, timeouts and broken streams.
type InferenceTransportError struct {
	Endpoint string
	Err      error
}

func (e *InferenceTransportError) Error() string {
	return fmt.Sprintf("inference request to %s failed: %v", e.Endpoint, e.Err)
}

func (e *InferenceTransportError) Unwrap() error { return e.Err }

// InferenceProtocolError covers non-2xx responses and bodies without a response field.
type InferenceProtocolError struct {
	StatusCode int
	Body       string
	Reason     string
}

func (e *InferenceProtocolError) Error() string {
	if e.StatusCode != 0 && e.Reason == "" {
		return fmt.Sprintf("inference server returned status %d: %s", e.StatusCode, strings.TrimSpace(e.Body))
	}
	return fmt.Sprintf("inference protocol error: %s", e.Reason)
}
