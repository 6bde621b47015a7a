package openai

import (
	"errors"
	"strings"
	"testing"

	"github.com/openai/openai-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentswarm/core"
	"github.com/hupe1980/agentswarm/model"
)

func TestBuildMessages(t *testing.T) {
	msgs := buildMessages([]core.Message{
		core.SystemMessage("be nice"),
		core.UserMessage("weather?"),
		{
			Role:         core.RoleAssistant,
			FunctionCall: &core.FunctionCall{ID: "call_1", Name: "get_weather", Arguments: `{"location":"NYC"}`},
		},
		{Role: core.RoleFunction, Name: "get_weather", ToolCallID: "call_1", Content: "sunny"},
		core.AssistantMessage("It is sunny."),
	})

	require.Len(t, msgs, 5)
	assert.NotNil(t, msgs[0].OfSystem)
	assert.NotNil(t, msgs[1].OfUser)

	require.NotNil(t, msgs[2].OfAssistant)
	require.Len(t, msgs[2].OfAssistant.ToolCalls, 1)
	assert.Equal(t, "call_1", msgs[2].OfAssistant.ToolCalls[0].ID)
	assert.Equal(t, "get_weather", msgs[2].OfAssistant.ToolCalls[0].Function.Name)
	assert.Equal(t, `{"location":"NYC"}`, msgs[2].OfAssistant.ToolCalls[0].Function.Arguments)

	require.NotNil(t, msgs[3].OfTool)
	assert.Equal(t, "call_1", msgs[3].OfTool.ToolCallID)

	require.NotNil(t, msgs[4].OfAssistant)
	assert.Empty(t, msgs[4].OfAssistant.ToolCalls)
}

func TestBuildParams(t *testing.T) {
	m := NewModelFromClient(nil, func(o *Options) {
		o.Model = "gpt-4o"
	})

	t.Run("without functions", func(t *testing.T) {
		params := m.buildParams(model.Request{Messages: []core.Message{core.UserMessage("hi")}})
		assert.Equal(t, "gpt-4o", params.Model)
		assert.Empty(t, params.Tools)
		assert.False(t, params.ParallelToolCalls.Valid())
		assert.False(t, params.ToolChoice.OfAuto.Valid())
	})

	t.Run("model override", func(t *testing.T) {
		params := m.buildParams(model.Request{Model: "gpt-4.1"})
		assert.Equal(t, "gpt-4.1", params.Model)
	})

	t.Run("with functions", func(t *testing.T) {
		params := m.buildParams(model.Request{
			Functions: []model.FunctionDefinition{{
				Name:        "get_weather",
				Description: "Get the weather",
				Parameters:  map[string]any{"type": "object"},
			}},
			FunctionCall: model.FunctionCallAuto,
		})
		require.Len(t, params.Tools, 1)
		assert.Equal(t, "get_weather", params.Tools[0].Function.Name)
		assert.Equal(t, "Get the weather", params.Tools[0].Function.Description.Value)
		assert.False(t, params.ParallelToolCalls.Value)
		assert.True(t, params.ParallelToolCalls.Valid())
		assert.Equal(t, "auto", params.ToolChoice.OfAuto.Value)
	})

	t.Run("function call none", func(t *testing.T) {
		params := m.buildParams(model.Request{
			Functions:    []model.FunctionDefinition{{Name: "f"}},
			FunctionCall: model.FunctionCallNone,
		})
		assert.Equal(t, "none", params.ToolChoice.OfAuto.Value)
	})
}

func TestInfo(t *testing.T) {
	m := NewModelFromClient(nil)
	info := m.Info()
	assert.Equal(t, "openai", info.Provider)
	assert.Equal(t, openai.ChatModelGPT4oMini, info.Name)
	assert.True(t, info.SupportsFunctions)
}

type fakeSource struct {
	chunks []openai.ChatCompletionChunk
	pos    int
	err    error
	closed int
}

func (f *fakeSource) Next() bool {
	if f.pos >= len(f.chunks) {
		return false
	}
	f.pos++
	return true
}

func (f *fakeSource) Current() openai.ChatCompletionChunk { return f.chunks[f.pos-1] }
func (f *fakeSource) Err() error                          { return f.err }
func (f *fakeSource) Close() error                        { f.closed++; return nil }

func chunk(d openai.ChatCompletionChunkChoiceDelta) openai.ChatCompletionChunk {
	return openai.ChatCompletionChunk{Choices: []openai.ChatCompletionChunkChoice{{Delta: d}}}
}

func toolDelta(index int64, id, name, args string) openai.ChatCompletionChunkChoiceDelta {
	return openai.ChatCompletionChunkChoiceDelta{
		ToolCalls: []openai.ChatCompletionChunkChoiceDeltaToolCall{{
			Index:    index,
			ID:       id,
			Function: openai.ChatCompletionChunkChoiceDeltaToolCallFunction{Name: name, Arguments: args},
		}},
	}
}

func TestChunkStream(t *testing.T) {
	src := &fakeSource{chunks: []openai.ChatCompletionChunk{
		chunk(openai.ChatCompletionChunkChoiceDelta{Role: "assistant"}),
		chunk(openai.ChatCompletionChunkChoiceDelta{Content: "Let me check"}),
		{}, // usage-only chunk
		chunk(toolDelta(0, "call_1", "get_weather", "")),
		chunk(toolDelta(0, "", "", `{"loc`)),
		chunk(toolDelta(1, "call_2", "other", `{}`)),
		chunk(toolDelta(0, "", "", `":"NYC"}`)),
	}}

	s := newChunkStream(src, nil)

	var got []core.Delta
	for s.Next() {
		got = append(got, s.Current())
	}
	require.NoError(t, s.Err())
	require.Len(t, got, 5)

	assert.Equal(t, core.RoleAssistant, got[0].Role)
	assert.Equal(t, "Let me check", got[1].Content)
	assert.Equal(t, &core.FunctionCallDelta{ID: "call_1", Name: "get_weather"}, got[2].FunctionCall)
	assert.Equal(t, `{"loc`, got[3].FunctionCall.Arguments)
	assert.Equal(t, `":"NYC"}`, got[4].FunctionCall.Arguments)

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	assert.Equal(t, 1, src.closed)
}

func TestChunkStreamSynthesizesMissingCallID(t *testing.T) {
	src := &fakeSource{chunks: []openai.ChatCompletionChunk{
		chunk(toolDelta(0, "", "get_weather", "")),
		chunk(toolDelta(0, "", "", `{"location":"NYC"}`)),
	}}

	s := newChunkStream(src, nil)

	var got []core.Delta
	for s.Next() {
		got = append(got, s.Current())
	}
	require.NoError(t, s.Err())
	require.Len(t, got, 2)

	require.NotNil(t, got[0].FunctionCall)
	assert.True(t, strings.HasPrefix(got[0].FunctionCall.ID, "call_"))
	assert.Equal(t, "get_weather", got[0].FunctionCall.Name)
	assert.Empty(t, got[1].FunctionCall.ID, "the ID is emitted once")
}

func TestChunkStreamError(t *testing.T) {
	src := &fakeSource{err: errors.New("connection reset")}
	s := newChunkStream(src, nil)

	assert.False(t, s.Next())
	require.Error(t, s.Err())
	assert.Contains(t, s.Err().Error(), "connection reset")
	assert.False(t, s.Next())
}
