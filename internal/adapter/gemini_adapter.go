package adapter

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hpn/hpn-gemini-adapter/internal/gemini"
)

const (
	// EnvAPIKey is the environment variable consulted when no API key is given.
	EnvAPIKey = "GOOGLE_API_KEY"

	// SafetyBlockedMessage is returned as content when Gemini yields no candidates.
	SafetyBlockedMessage = "I cannot provide a response due to safety settings."
)

// GeminiAdapter implements AIProvider for Google Gemini API.
// It translates OpenAI-compatible requests to Gemini format and vice versa.
// All fields are set at construction; the adapter is safe for concurrent use.
type GeminiAdapter struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger

	client *gemini.Client
}

// GeminiAdapterOption is a functional option for configuring GeminiAdapter.
type GeminiAdapterOption func(*GeminiAdapter)

// WithAPIKey sets the Gemini API key. Without it GOOGLE_API_KEY is used.
func WithAPIKey(key string) GeminiAdapterOption {
	return func(g *GeminiAdapter) {
		g.apiKey = key
	}
}

// WithBaseURL sets a custom base URL for the Gemini API.
func WithBaseURL(url string) GeminiAdapterOption {
	return func(g *GeminiAdapter) {
		g.baseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) GeminiAdapterOption {
	return func(g *GeminiAdapter) {
		g.httpClient = client
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) GeminiAdapterOption {
	return func(g *GeminiAdapter) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// NewGeminiAdapter creates a new GeminiAdapter.
// It fails with ErrMissingCredential if neither WithAPIKey nor GOOGLE_API_KEY supplies a key.
func NewGeminiAdapter(opts ...GeminiAdapterOption) (*GeminiAdapter, error) {
	g := &GeminiAdapter{
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(g)
	}

	if g.apiKey == "" {
		g.apiKey = os.Getenv(EnvAPIKey)
	}
	if g.apiKey == "" {
		return nil, ErrMissingCredential
	}

	g.client = gemini.NewClient(g.apiKey,
		gemini.WithBaseURL(g.baseURL),
		gemini.WithHTTPClient(g.httpClient),
	)

	return g, nil
}

// Name returns the provider identifier.
func (g *GeminiAdapter) Name() string {
	return "gemini"
}

// Request is a chat completion request in Gemini terms.
type Request struct {
	Contents             []gemini.Content
	FunctionDeclarations []gemini.FunctionDeclaration // nil when no function tools were offered
	SystemInstruction    *string                      // nil when unset or empty
}

// ChatCompletionsCreate performs a chat completion request using Gemini API.
// It translates the messages to Gemini format, makes one blocking API call,
// and translates the response back. Backend errors are returned unchanged.
func (g *GeminiAdapter) ChatCompletionsCreate(ctx context.Context, model string, messages []any, opts ...CallOption) (*ChatCompletionResponse, error) {
	if model == "" {
		return nil, ErrMissingModel
	}

	req, err := g.BuildRequest(messages, opts...)
	if err != nil {
		return nil, err
	}

	g.logger.Debug("gemini request built",
		slog.String("model", model),
		slog.Int("messages", len(messages)),
		slog.Int("turns", len(req.Contents)),
		slog.Int("tools", len(req.FunctionDeclarations)),
		slog.Bool("has_system_instruction", req.SystemInstruction != nil),
	)

	resp, err := g.invoke(ctx, model, req)
	if err != nil {
		return nil, err
	}

	return g.BuildResponse(model, resp), nil
}

// BuildRequest converts neutral messages and call options to Gemini format.
func (g *GeminiAdapter) BuildRequest(messages []any, opts ...CallOption) (*Request, error) {
	o := applyCallOptions(opts)

	decls, err := functionDeclarations(o.Tools)
	if err != nil {
		return nil, err
	}

	req := &Request{
		Contents:             make([]gemini.Content, 0, len(messages)),
		FunctionDeclarations: decls,
	}
	systemInstruction := o.SystemInstruction

	for i, msg := range messages {
		role, _ := asString(field(msg, "role"))
		content := field(msg, "content")

		switch role {
		case RoleSystem:
			// Later system messages win over earlier ones and over the option.
			if content == nil {
				systemInstruction = nil
			} else {
				s := contentText(content)
				systemInstruction = &s
			}

		case RoleUser:
			req.Contents = append(req.Contents, gemini.Content{
				Role:  gemini.RoleUser,
				Parts: []gemini.Part{gemini.Text(contentText(content))},
			})

		case RoleAssistant:
			calls := asSlice(field(msg, "tool_calls"))
			if len(calls) > 0 {
				parts, err := functionCallParts(i, calls)
				if err != nil {
					return nil, err
				}
				req.Contents = append(req.Contents, gemini.Content{
					Role:  gemini.RoleModel,
					Parts: parts,
				})
				continue
			}
			// An assistant turn with nothing to say is dropped.
			if text := contentText(content); text != "" {
				req.Contents = append(req.Contents, gemini.Content{
					Role:  gemini.RoleModel,
					Parts: []gemini.Part{gemini.Text(text)},
				})
			}

		case RoleTool:
			name, _ := asString(field(msg, "name"))
			req.Contents = append(req.Contents, gemini.Content{
				Role: gemini.RoleFunction,
				Parts: []gemini.Part{{
					FunctionResponse: &gemini.FunctionResponse{
						Name:     name,
						Response: toolResponse(content),
					},
				}},
			})

		default:
			g.logger.Debug("ignoring message with unsupported role",
				slog.Int("index", i),
				slog.String("role", role),
			)
		}
	}

	if systemInstruction != nil && *systemInstruction != "" {
		req.SystemInstruction = systemInstruction
	}

	return req, nil
}

// invoke executes the request against the named model.
func (g *GeminiAdapter) invoke(ctx context.Context, model string, req *Request) (*gemini.GenerateContentResponse, error) {
	m := g.client.GenerativeModel(model)
	if len(req.FunctionDeclarations) > 0 {
		m.Tools = []gemini.Tool{{FunctionDeclarations: req.FunctionDeclarations}}
	}
	if req.SystemInstruction != nil {
		m.SystemInstruction = &gemini.Content{
			Parts: []gemini.Part{gemini.Text(*req.SystemInstruction)},
		}
	}

	start := time.Now()
	resp, err := m.GenerateContent(ctx, req.Contents...)
	g.logger.Debug("gemini generateContent returned",
		slog.String("model", m.Name()),
		slog.Duration("latency", time.Since(start)),
		slog.Bool("ok", err == nil),
	)
	return resp, err
}

// BuildResponse converts a Gemini response to OpenAI format.
// Exactly one choice is produced. Function calls take priority over text:
// when any are present the text parts are discarded.
func (g *GeminiAdapter) BuildResponse(model string, resp *gemini.GenerateContentResponse) *ChatCompletionResponse {
	out := &ChatCompletionResponse{
		ID:      "chatcmpl-" + uuid.NewString(),
		Object:  "chat.completion",
		Created: time.Now().Unix(),
		Model:   model,
	}

	if resp != nil && resp.UsageMetadata != nil {
		out.Usage = Usage{
			PromptTokens:     resp.UsageMetadata.PromptTokenCount,
			CompletionTokens: resp.UsageMetadata.CandidatesTokenCount,
			TotalTokens:      resp.UsageMetadata.TotalTokenCount,
		}
	}

	if resp == nil || len(resp.Candidates) == 0 {
		attrs := []any{slog.String("model", model)}
		if resp != nil && resp.PromptFeedback != nil {
			attrs = append(attrs, slog.String("block_reason", resp.PromptFeedback.BlockReason))
		}
		g.logger.Warn("gemini returned no candidates, answering with safety placeholder", attrs...)

		out.Choices = []Choice{newChoice(stringPtr(SafetyBlockedMessage), nil)}
		return out
	}

	var (
		toolCalls []ToolCall
		text      strings.Builder
	)
	if c := resp.Candidates[0].Content; c != nil {
		for _, part := range c.Parts {
			if fc := part.FunctionCall; fc != nil {
				toolCalls = append(toolCalls, ToolCall{
					ID:   newCallID(fc.Name),
					Type: ToolTypeFunction,
					Function: ToolCallFunction{
						Name:      fc.Name,
						Arguments: encodeArguments(fc.Args),
					},
				})
			}
			if part.Text != "" {
				text.WriteString(part.Text)
			}
		}
	}

	if len(toolCalls) > 0 {
		out.Choices = []Choice{newChoice(nil, toolCalls)}
	} else {
		out.Choices = []Choice{newChoice(stringPtr(text.String()), nil)}
	}
	return out
}

func newChoice(content *string, toolCalls []ToolCall) Choice {
	reason := FinishReasonStop
	if len(toolCalls) > 0 {
		reason = FinishReasonToolCalls
	}
	return Choice{
		Index: 0,
		Message: ResponseMessage{
			Role:      RoleAssistant,
			Content:   content,
			ToolCalls: toolCalls,
		},
		FinishReason: reason,
	}
}

// functionDeclarations keeps the function tools and extracts their definitions.
func functionDeclarations(tools []any) ([]gemini.FunctionDeclaration, error) {
	var decls []gemini.FunctionDeclaration
	for i, t := range tools {
		if typ, _ := asString(field(t, "type")); typ != ToolTypeFunction {
			continue
		}
		fn := field(t, "function")
		if fn == nil {
			return nil, &ToolDefinitionError{Index: i, Err: fmt.Errorf("missing function")}
		}

		b, err := json.Marshal(fn)
		if err != nil {
			return nil, &ToolDefinitionError{Index: i, Err: err}
		}
		var decl gemini.FunctionDeclaration
		if err := json.Unmarshal(b, &decl); err != nil {
			return nil, &ToolDefinitionError{Index: i, Err: err}
		}
		decls = append(decls, decl)
	}
	return decls, nil
}

// functionCallParts maps the tool calls of the assistant message at msgIndex.
func functionCallParts(msgIndex int, calls []any) ([]gemini.Part, error) {
	parts := make([]gemini.Part, 0, len(calls))
	for j, tc := range calls {
		fn := field(tc, "function")
		if fn == nil {
			return nil, &ToolArgumentsError{MessageIndex: msgIndex, CallIndex: j, Err: errMissingFunction}
		}
		name, _ := asString(field(fn, "name"))
		if name == "" {
			return nil, &ToolArgumentsError{MessageIndex: msgIndex, CallIndex: j, Err: errMissingFunctionName}
		}

		raw := field(fn, "arguments")
		if raw == nil {
			return nil, &ToolArgumentsError{MessageIndex: msgIndex, CallIndex: j, Function: name, Err: errMissingArguments}
		}
		args, err := decodeArguments(raw)
		if err != nil {
			return nil, &ToolArgumentsError{MessageIndex: msgIndex, CallIndex: j, Function: name, Err: err}
		}

		parts = append(parts, gemini.Part{
			FunctionCall: &gemini.FunctionCall{Name: name, Args: args},
		})
	}
	return parts, nil
}

// decodeArguments turns tool-call arguments into a mapping. JSON text is
// decoded; mappings are used directly; other values go through a JSON round trip.
func decodeArguments(raw any) (map[string]any, error) {
	if raw == nil {
		return nil, nil
	}
	if b, ok := rawJSON(raw); ok {
		var args map[string]any
		if err := json.Unmarshal(b, &args); err != nil {
			return nil, err
		}
		return args, nil
	}
	if m, ok := asMap(raw); ok {
		return m, nil
	}

	b, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	var args map[string]any
	if err := json.Unmarshal(b, &args); err != nil {
		return nil, err
	}
	return args, nil
}

// toolResponse decodes tool message content into the mapping Gemini expects.
// Anything that is not a JSON object is wrapped as {"result": ...}.
func toolResponse(content any) map[string]any {
	s, ok := asString(content)
	if !ok {
		return map[string]any{"result": textOf(content)}
	}

	var decoded any
	if err := json.Unmarshal([]byte(s), &decoded); err != nil {
		return map[string]any{"result": s}
	}
	if m, ok := decoded.(map[string]any); ok {
		return m
	}
	return map[string]any{"result": decoded}
}

func encodeArguments(args map[string]any) string {
	if args == nil {
		return "{}"
	}
	b, err := json.Marshal(args)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// newCallID returns call_<name>_<8 hex chars>. Uniqueness is best-effort.
func newCallID(name string) string {
	id := uuid.New()
	return fmt.Sprintf("call_%s_%s", name, hex.EncodeToString(id[:4]))
}

func stringPtr(s string) *string {
	return &s
}
