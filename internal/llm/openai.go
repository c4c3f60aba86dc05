package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// openAIClient implements ChatClient with the OpenAI chat completions API.
type openAIClient struct {
	cfg      LLMConfig
	client   openai.Client
	observer Observer
}

// NewOpenAIClient creates a ChatClient for an OpenAI-compatible endpoint.
// Extra options are appended after the configured ones.
func NewOpenAIClient(cfg LLMConfig, observer Observer, opts ...option.RequestOption) ChatClient {
	if observer == nil {
		observer = NoopObserver{}
	}
	base := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(cfg.MaxRetries),
		option.WithHTTPClient(&http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{Timeout: 5 * time.Second}).DialContext,
			},
		}),
	}
	if cfg.Endpoint != "" {
		base = append(base, option.WithBaseURL(cfg.Endpoint))
	}
	return &openAIClient{
		cfg:      cfg,
		client:   openai.NewClient(append(base, opts...)...),
		observer: observer,
	}
}

func (c *openAIClient) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	start := time.Now()
	model := req.Model
	if model == "" {
		model = c.cfg.ModelFor(req.Task)
	}

	timeoutMs := c.cfg.TaskTimeout(req.Task)
	ctx, cancel := context.WithTimeout(ctx, time.Duration(timeoutMs)*time.Millisecond)
	defer cancel()

	completion, err := c.client.Chat.Completions.New(ctx, c.buildParams(model, req))
	if err == nil && len(completion.Choices) == 0 {
		err = fmt.Errorf("%w: completion has no choices", ErrInvalidOutput)
	}

	latency := time.Since(start).Milliseconds()
	if err != nil {
		err = classify(ctx, err)
		c.observer.OnCallComplete(LLMCallEvent{
			Task:      req.Task,
			Model:     model,
			LatencyMs: latency,
			ErrorCode: errorCode(err),
		})
		return nil, err
	}

	msg := fromCompletion(completion.Choices[0].Message)
	c.observer.OnCallComplete(LLMCallEvent{
		Task:      req.Task,
		Model:     model,
		LatencyMs: latency,
		Success:   true,
		ToolCalls: len(msg.ToolCalls),
	})
	return &ChatResponse{Message: msg, Model: completion.Model, LatencyMs: latency}, nil
}

func (c *openAIClient) buildParams(model string, req ChatRequest) openai.ChatCompletionNewParams {
	taskCfg := c.cfg.Tasks[req.Task]
	temp := taskCfg.Temperature
	if req.Temperature != nil {
		temp = *req.Temperature
	}
	maxTok := taskCfg.MaxTokens
	if req.MaxTokens != nil {
		maxTok = *req.MaxTokens
	}

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(model),
		Messages:    toParams(req.Messages),
		Temperature: openai.Float(temp),
	}
	if maxTok > 0 {
		params.MaxCompletionTokens = openai.Int(int64(maxTok))
	}
	for _, t := range req.Tools {
		params.Tools = append(params.Tools, openai.ChatCompletionToolParam{
			Function: openai.FunctionDefinitionParam{
				Name:        t.Name,
				Description: openai.String(t.Description),
				Parameters:  openai.FunctionParameters(t.Parameters),
			},
		})
	}
	if req.Schema != nil {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:        req.Schema.Name,
					Description: openai.String(req.Schema.Description),
					Schema:      req.Schema.Definition,
					Strict:      openai.Bool(true),
				},
			},
		}
	}
	return params
}

func toParams(msgs []Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs))
	for _, m := range msgs {
		switch m.Role {
		case RoleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		case RoleUser:
			out = append(out, openai.UserMessage(m.Content))
		case RoleTool:
			out = append(out, openai.ToolMessage(m.Content, m.ToolCallID))
		case RoleAssistant:
			if !m.HasToolCalls() {
				out = append(out, openai.AssistantMessage(m.Content))
				continue
			}
			asst := openai.ChatCompletionAssistantMessageParam{}
			if m.Content != "" {
				asst.Content.OfString = openai.String(m.Content)
			}
			for _, call := range m.ToolCalls {
				asst.ToolCalls = append(asst.ToolCalls, openai.ChatCompletionMessageToolCallParam{
					ID: call.ID,
					Function: openai.ChatCompletionMessageToolCallFunctionParam{
						Name:      call.Name,
						Arguments: call.Arguments,
					},
				})
			}
			out = append(out, openai.ChatCompletionMessageParamUnion{OfAssistant: &asst})
		}
	}
	return out
}

func fromCompletion(m openai.ChatCompletionMessage) Message {
	msg := Message{Role: RoleAssistant, Content: m.Content}
	for _, call := range m.ToolCalls {
		msg.ToolCalls = append(msg.ToolCalls, ToolCall{
			ID:        call.ID,
			Name:      call.Function.Name,
			Arguments: call.Function.Arguments,
		})
	}
	return msg
}

func classify(ctx context.Context, err error) error {
	if errors.Is(err, ErrInvalidOutput) {
		return err
	}
	if ctx.Err() != nil {
		return ErrTimeout
	}
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%w: status %d", ErrRequestFailed, apiErr.StatusCode)
	}
	var netErr *net.OpError
	if errors.As(err, &netErr) {
		return ErrUnavailable
	}
	return fmt.Errorf("%w: %v", ErrRequestFailed, err)
}

func errorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTimeout):
		return "TIMEOUT"
	case errors.Is(err, ErrUnavailable):
		return "UNAVAILABLE"
	case errors.Is(err, ErrInvalidOutput):
		return "INVALID_OUTPUT"
	case errors.Is(err, ErrRequestFailed):
		return "REQUEST_FAILED"
	default:
		return "UNKNOWN"
	}
}
