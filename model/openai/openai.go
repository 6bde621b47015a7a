// Package openai provides an implementation of model.Model using the OpenAI
// Chat Completions API (including streaming + function calling). It adapts
// the normalized model.Request into the SDK's message format and back.
//
// OpenAI reports function calls as tool calls. Parallel tool calls are
// disabled on every request and only the first reported call is kept.
package openai

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/hupe1980/agentswarm/core"
	"github.com/hupe1980/agentswarm/logging"
	"github.com/hupe1980/agentswarm/model"
)

// Options configure the OpenAI model adapter.
type Options struct {
	Model               string
	Temperature         float64
	MaxCompletionTokens int64
	// APIKey overrides the OPENAI_API_KEY environment variable. Only used by NewModel.
	APIKey string
	// BaseURL points the client at a compatible endpoint. Only used by NewModel.
	BaseURL string
	Logger  logging.Logger
}

// Model wraps the OpenAI Chat Completions API behind the generic model.Model interface.
type Model struct {
	client *openai.Client
	opts   Options
}

// NewModel creates a new OpenAI model using the official client.
func NewModel(optFns ...func(o *Options)) *Model {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	var reqOpts []option.RequestOption
	if opts.APIKey != "" {
		reqOpts = append(reqOpts, option.WithAPIKey(opts.APIKey))
	}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}

	client := openai.NewClient(reqOpts...)
	return &Model{client: &client, opts: opts}
}

// NewModelFromClient creates a new OpenAI model from an existing client.
func NewModelFromClient(client *openai.Client, optFns ...func(o *Options)) *Model {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	return &Model{client: client, opts: opts}
}

func defaultOptions() Options {
	return Options{
		Model:               openai.ChatModelGPT4oMini,
		Temperature:         0.7,
		MaxCompletionTokens: 4096,
		Logger:              logging.NoOpLogger{},
	}
}

// Complete implements model.Model.
func (m *Model) Complete(ctx context.Context, req model.Request) (*core.Message, error) {
	resp, err := m.client.Chat.Completions.New(ctx, m.buildParams(req))
	if err != nil {
		return nil, fmt.Errorf("openai api error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("openai api error: no choices returned")
	}

	choice := resp.Choices[0].Message
	msg := core.AssistantMessage(choice.Content)
	if n := len(choice.ToolCalls); n > 0 {
		if n > 1 {
			m.opts.Logger.Warn("discarding additional tool calls", "model", m.opts.Model, "count", n-1)
		}
		tc := choice.ToolCalls[0]
		msg.FunctionCall = &core.FunctionCall{
			ID:        callID(tc.ID),
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		}
	}
	return &msg, nil
}

// Stream implements model.Model.
func (m *Model) Stream(ctx context.Context, req model.Request) (model.Stream, error) {
	src := m.client.Chat.Completions.NewStreaming(ctx, m.buildParams(req))
	if err := src.Err(); err != nil {
		_ = src.Close()
		return nil, fmt.Errorf("openai streaming error: %w", err)
	}
	return newChunkStream(src, m.opts.Logger), nil
}

// Info returns metadata describing this OpenAI model implementation.
func (m *Model) Info() model.Info {
	return model.Info{
		Name:              m.opts.Model,
		Provider:          "openai",
		SupportsFunctions: true,
	}
}

// buildParams assembles the OpenAI request parameters including function definitions.
func (m *Model) buildParams(req model.Request) openai.ChatCompletionNewParams {
	name := req.Model
	if name == "" {
		name = m.opts.Model
	}

	params := openai.ChatCompletionNewParams{
		Messages:            buildMessages(req.Messages),
		Model:               name,
		Temperature:         openai.Float(m.opts.Temperature),
		MaxCompletionTokens: openai.Int(m.opts.MaxCompletionTokens),
	}
	if len(req.Functions) == 0 {
		return params
	}

	params.Tools = buildTools(req.Functions)
	params.ParallelToolCalls = openai.Bool(false)

	choice := openai.ChatCompletionToolChoiceOptionAutoAuto
	if req.FunctionCall == model.FunctionCallNone {
		choice = openai.ChatCompletionToolChoiceOptionAutoNone
	}
	params.ToolChoice = openai.ChatCompletionToolChoiceOptionUnionParam{
		OfAuto: openai.String(string(choice)),
	}
	return params
}

// buildMessages converts the conversation into OpenAI chat messages.
// Function-role messages become tool messages bound to the originating call.
func buildMessages(msgs []core.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs))
	for _, msg := range msgs {
		switch msg.Role {
		case core.RoleSystem:
			out = append(out, openai.SystemMessage(msg.Content))
		case core.RoleAssistant:
			if msg.FunctionCall == nil {
				out = append(out, openai.AssistantMessage(msg.Content))
				continue
			}
			am := openai.ChatCompletionAssistantMessageParam{
				ToolCalls: []openai.ChatCompletionMessageToolCallParam{{
					ID: msg.FunctionCall.ID,
					Function: openai.ChatCompletionMessageToolCallFunctionParam{
						Name:      msg.FunctionCall.Name,
						Arguments: msg.FunctionCall.Arguments,
					},
				}},
			}
			if msg.Content != "" {
				am.Content.OfString = openai.String(msg.Content)
			}
			out = append(out, openai.ChatCompletionMessageParamUnion{OfAssistant: &am})
		case core.RoleFunction:
			out = append(out, openai.ToolMessage(msg.Content, msg.ToolCallID))
		default:
			out = append(out, openai.UserMessage(msg.Content))
		}
	}
	return out
}

func buildTools(defs []model.FunctionDefinition) []openai.ChatCompletionToolParam {
	tools := make([]openai.ChatCompletionToolParam, len(defs))
	for i, def := range defs {
		fd := openai.FunctionDefinitionParam{
			Name:       def.Name,
			Parameters: openai.FunctionParameters(def.Parameters),
		}
		if def.Description != "" {
			fd.Description = openai.String(def.Description)
		}
		tools[i] = openai.ChatCompletionToolParam{Function: fd}
	}
	return tools
}

func callID(id string) string {
	if id != "" {
		return id
	}
	return "call_" + uuid.NewString()
}
