package service

import (
	"errors"

	"github.com/alexanderramin/taskpilot/internal/llm"
)

// ErrInvalidInput marks caller mistakes; the HTTP layer maps it to 400.
var ErrInvalidInput = errors.New("invalid input")

// degradable reports whether a model failure may be answered with the
// deterministic result: the model is switched off or its output was unusable.
// Transport failures are returned to the caller.
func degradable(err error) bool {
	return errors.Is(err, llm.ErrDisabled) || errors.Is(err, llm.ErrInvalidOutput)
}
