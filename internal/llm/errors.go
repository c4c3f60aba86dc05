package llm

import "errors"

var (
	// ErrUnavailable indicates the chat endpoint could not be reached.
	ErrUnavailable = errors.New("chat service unavailable")

	// ErrTimeout indicates the LLM request exceeded the configured timeout.
	ErrTimeout = errors.New("llm request timed out")

	// ErrInvalidOutput indicates the LLM response could not be parsed
	// into the expected structured format.
	ErrInvalidOutput = errors.New("invalid llm output format")

	// ErrRequestFailed indicates the chat service answered with a non-success status.
	ErrRequestFailed = errors.New("llm request failed")

	// ErrDisabled is returned by DisabledClient.
	ErrDisabled = errors.New("llm is disabled")
)
