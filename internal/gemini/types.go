package gemini

import (
	"encoding/json"
	"fmt"
)

// Conversation roles understood by generateContent.
const (
	RoleUser     = "user"
	RoleModel    = "model"
	RoleFunction = "function"
)

// Content is one turn of a conversation.
type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

// Part is a single piece of a turn. Exactly one of the fields is set.
type Part struct {
	Text             string            `json:"text,omitempty"`
	FunctionCall     *FunctionCall     `json:"functionCall,omitempty"`
	FunctionResponse *FunctionResponse `json:"functionResponse,omitempty"`
}

// MarshalJSON always writes text for a text part, even when it is empty,
// because generateContent rejects a part that carries no data.
func (p Part) MarshalJSON() ([]byte, error) {
	if p.FunctionCall == nil && p.FunctionResponse == nil {
		return json.Marshal(struct {
			Text string `json:"text"`
		}{p.Text})
	}
	type part Part
	return json.Marshal(part(p))
}

// Text returns a plain text part.
func Text(s string) Part {
	return Part{Text: s}
}

// FunctionCall is a model-requested invocation of a declared function.
type FunctionCall struct {
	Name string         `json:"name"`
	Args map[string]any `json:"args,omitempty"`
}

// FunctionResponse carries the result of a function call back to the model.
type FunctionResponse struct {
	Name     string         `json:"name"`
	Response map[string]any `json:"response"`
}

// Tool groups the function declarations offered to the model.
type Tool struct {
	FunctionDeclarations []FunctionDeclaration `json:"functionDeclarations,omitempty"`
}

// FunctionDeclaration describes a callable function.
type FunctionDeclaration struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Parameters  any    `json:"parameters,omitempty"`
}

// GenerateContentRequest is the body of a generateContent call.
type GenerateContentRequest struct {
	Contents          []Content `json:"contents"`
	Tools             []Tool    `json:"tools,omitempty"`
	SystemInstruction *Content  `json:"systemInstruction,omitempty"`
}

// GenerateContentResponse is the body returned by generateContent.
type GenerateContentResponse struct {
	Candidates     []Candidate     `json:"candidates"`
	PromptFeedback *PromptFeedback `json:"promptFeedback,omitempty"`
	UsageMetadata  *UsageMetadata  `json:"usageMetadata,omitempty"`
}

// Candidate is one generated answer.
type Candidate struct {
	Content      *Content `json:"content,omitempty"`
	FinishReason string   `json:"finishReason,omitempty"`
	Index        int      `json:"index"`
}

// PromptFeedback reports why a prompt was blocked, if it was.
type PromptFeedback struct {
	BlockReason string `json:"blockReason,omitempty"`
}

// UsageMetadata contains token usage information.
type UsageMetadata struct {
	PromptTokenCount     int `json:"promptTokenCount"`
	CandidatesTokenCount int `json:"candidatesTokenCount"`
	TotalTokenCount      int `json:"totalTokenCount"`
}

// errorResponse is the error envelope of the Gemini API.
type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// APIError is returned for any non-200 answer from the API.
type APIError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *APIError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("gemini API error [%d %s]: %s", e.StatusCode, e.Status, e.Message)
	}
	return fmt.Sprintf("gemini API error [%d]: %s", e.StatusCode, e.Message)
}
