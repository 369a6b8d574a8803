package provider

import "encoding/json"

// Role identifies who produced a Turn.
type Role string

// Role constants.
const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Turn is one entry in the conversation log.
type Turn struct {
	Role  Role   `json:"role"`
	Parts []Part `json:"parts"`
}

// Part is the smallest content unit within a Turn. Exactly one of the
// variant fields is populated.
type Part struct {
	Text             string            `json:"text,omitempty"`
	FunctionCall     *FunctionCall     `json:"function_call,omitempty"`
	FunctionResponse *FunctionResponse `json:"function_response,omitempty"`
}

// IsText reports whether the part carries text.
func (p Part) IsText() bool {
	return p.FunctionCall == nil && p.FunctionResponse == nil
}

// FunctionCall is a model request to invoke a tool.
type FunctionCall struct {
	Name string         `json:"name"`
	Args map[string]any `json:"args,omitempty"`
}

// FunctionResponse carries a tool result back to the model.
type FunctionResponse struct {
	Name     string         `json:"name"`
	Response map[string]any `json:"response,omitempty"`
}

// ToolDeclaration describes one externally callable capability exposed to
// the model. Immutable once built.
type ToolDeclaration struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	InputSchema json.RawMessage `json:"input_schema,omitempty"`
}

// GenerateRequest is a single generation call against the model backend.
type GenerateRequest struct {
	Model       string            `json:"model"`
	Turns       []Turn            `json:"turns"`
	Tools       []ToolDeclaration `json:"tools,omitempty"`
	Temperature float64           `json:"temperature,omitempty"`
}

// GenerateResponse holds the first candidate's content as a model Turn.
type GenerateResponse struct {
	Turn Turn `json:"turn"`
}

// NewTextTurn creates a Turn with a single text Part.
func NewTextTurn(role Role, text string) Turn {
	return Turn{Role: role, Parts: []Part{{Text: text}}}
}

// NewFunctionCallTurn creates a model Turn wrapping a function call.
func NewFunctionCallTurn(name string, args map[string]any) Turn {
	return Turn{Role: RoleModel, Parts: []Part{{
		FunctionCall: &FunctionCall{Name: name, Args: args},
	}}}
}

// NewFunctionResponseTurn creates a user Turn wrapping a function response.
func NewFunctionResponseTurn(name string, response map[string]any) Turn {
	return Turn{Role: RoleUser, Parts: []Part{{
		FunctionResponse: &FunctionResponse{Name: name, Response: response},
	}}}
}
