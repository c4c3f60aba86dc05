package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/alexanderramin/taskpilot/internal/llm"
)

// Tool is one model-callable operation. Run receives the raw JSON arguments
// and returns a value that is encoded as the tool result.
type Tool struct {
	Name        string
	Description string
	Parameters  map[string]any
	Run         func(ctx context.Context, args string) (any, error)
}

// Toolset is a fixed registry of tools, kept in registration order.
type Toolset struct {
	tools map[string]Tool
	order []string
}

// NewToolset registers tools. Names must be unique and non-empty.
func NewToolset(tools ...Tool) (*Toolset, error) {
	ts := &Toolset{tools: make(map[string]Tool, len(tools))}
	for _, t := range tools {
		if t.Name == "" || t.Run == nil {
			return nil, fmt.Errorf("tool %q: name and run function are required", t.Name)
		}
		if _, dup := ts.tools[t.Name]; dup {
			return nil, fmt.Errorf("tool %q registered twice", t.Name)
		}
		ts.tools[t.Name] = t
		ts.order = append(ts.order, t.Name)
	}
	return ts, nil
}

// Names lists the registered tool names.
func (ts *Toolset) Names() []string {
	return append([]string(nil), ts.order...)
}

// Definitions describes every tool for the chat request.
func (ts *Toolset) Definitions() []llm.ToolDefinition {
	defs := make([]llm.ToolDefinition, 0, len(ts.order))
	for _, name := range ts.order {
		t := ts.tools[name]
		params := t.Parameters
		if params == nil {
			params = objectSchema(nil)
		}
		defs = append(defs, llm.ToolDefinition{Name: t.Name, Description: t.Description, Parameters: params})
	}
	return defs
}

// Execute runs the named tool and returns its JSON-encoded result.
func (ts *Toolset) Execute(ctx context.Context, call llm.ToolCall) (string, error) {
	t, ok := ts.tools[call.Name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownTool, call.Name)
	}
	result, err := t.Run(ctx, call.Arguments)
	if err != nil {
		return "", err
	}
	data, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("encoding %s result: %w", call.Name, err)
	}
	return string(data), nil
}

// decodeArgs parses tool arguments strictly. Blank arguments decode to the
// zero value.
func decodeArgs[T any](raw string) (T, error) {
	var v T
	if strings.TrimSpace(raw) == "" {
		return v, nil
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&v); err != nil {
		return v, fmt.Errorf("%w: %v", ErrInvalidArguments, err)
	}
	return v, nil
}

// objectSchema builds a closed JSON Schema object.
func objectSchema(props map[string]any, required ...string) map[string]any {
	if props == nil {
		props = map[string]any{}
	}
	if required == nil {
		required = []string{}
	}
	return map[string]any{
		"type":                 "object",
		"properties":           props,
		"required":             required,
		"additionalProperties": false,
	}
}

func stringProp(desc string) map[string]any {
	return map[string]any{"type": "string", "description": desc}
}

func stringListProp(desc string) map[string]any {
	return map[string]any{"type": "array", "items": map[string]any{"type": "string"}, "description": desc}
}
