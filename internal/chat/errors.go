package chat

import "errors"

var (
	// ErrUnknownTool is returned when the model names a tool outside the registry.
	ErrUnknownTool = errors.New("unknown tool")

	// ErrInvalidArguments is returned when tool arguments do not decode.
	ErrInvalidArguments = errors.New("invalid tool arguments")

	ErrSessionNotFound = errors.New("chat session not found")
)
