package adapter

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingCredential is returned at construction when no API key is configured.
	ErrMissingCredential = errors.New("missing " + EnvAPIKey)

	// ErrMissingModel is returned when a call does not name a model.
	ErrMissingModel = errors.New("model is required")

	errMissingFunction     = errors.New("tool call has no function")
	errMissingFunctionName = errors.New("function name is missing")
	errMissingArguments    = errors.New("function arguments are missing")
)

// ToolArgumentsError reports an assistant tool call that cannot be sent: no
// function, no function name, or arguments that are missing or not a JSON object.
type ToolArgumentsError struct {
	MessageIndex int    // position of the assistant message
	CallIndex    int    // position of the tool call inside it
	Function     string // function name of the failing call
	Err          error
}

func (e *ToolArgumentsError) Error() string {
	where := fmt.Sprintf("messages[%d].tool_calls[%d]", e.MessageIndex, e.CallIndex)
	if e.Function != "" {
		where += " (" + e.Function + ")"
	}
	return fmt.Sprintf("%s: invalid arguments: %v", where, e.Err)
}

func (e *ToolArgumentsError) Unwrap() error {
	return e.Err
}

// ToolDefinitionError reports a function tool whose definition cannot be used.
type ToolDefinitionError struct {
	Index int
	Err   error
}

func (e *ToolDefinitionError) Error() string {
	return fmt.Sprintf("tools[%d]: invalid function definition: %v", e.Index, e.Err)
}

func (e *ToolDefinitionError) Unwrap() error {
	return e.Err
}

// IsRequestError reports whether err was caused by a malformed caller request
// rather than by the backend.
func IsRequestError(err error) bool {
	var argsErr *ToolArgumentsError
	var toolErr *ToolDefinitionError
	return errors.As(err, &argsErr) || errors.As(err, &toolErr) || errors.Is(err, ErrMissingModel)
}
