package engine

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentswarm/core"
	"github.com/hupe1980/agentswarm/internal/testutil"
	"github.com/hupe1980/agentswarm/logging"
	"github.com/hupe1980/agentswarm/model"
)

// drain pulls every event of s.
func drain(t *testing.T, s *Stream) []StreamEvent {
	t.Helper()
	var events []StreamEvent
	for s.Next() {
		events = append(events, s.Event())
	}
	return events
}

func eventTypes(events []StreamEvent) []EventType {
	out := make([]EventType, len(events))
	for i, ev := range events {
		out[i] = ev.Type
	}
	return out
}

func TestRunStream_Text(t *testing.T) {
	m := model.NewMockModel("mock").AddText("Hi")
	stream, err := New(m).RunStream(context.Background(), testutil.NewAgent("A", "x"), testutil.Conversation("Hello"))
	require.NoError(t, err)
	defer stream.Close()

	events := drain(t, stream)
	require.NoError(t, stream.Err())

	assert.Equal(t, []EventType{EventDelimStart, EventDelta, EventDelta, EventDelta, EventDelimEnd, EventResponse}, eventTypes(events))
	assert.Equal(t, core.Delta{Role: core.RoleAssistant, Sender: "A"}, events[1].Delta)
	assert.Equal(t, core.Delta{Content: "H"}, events[2].Delta)
	assert.Equal(t, core.Delta{Content: "i"}, events[3].Delta)

	resp := events[5].Response
	require.NotNil(t, resp)
	require.Len(t, resp.Messages, 1)
	assert.Equal(t, core.Message{Role: core.RoleAssistant, Content: "Hi", Sender: "A"}, resp.Messages[0])
	assert.True(t, m.Requests()[0].Stream)
	assert.Equal(t, 0, m.OpenStreams())
}

func TestRunStream_MatchesSyncRun(t *testing.T) {
	script := func() *model.MockModel {
		return model.NewMockModel("mock").
			AddFunctionCall("transferToB", "{}").
			AddText("¡Hola!")
	}

	a, _ := transferAgents()
	want, err := New(script()).Run(context.Background(), a, testutil.Conversation("Hola"))
	require.NoError(t, err)

	m := script()
	stream, err := New(m).RunStream(context.Background(), a, testutil.Conversation("Hola"))
	require.NoError(t, err)
	defer stream.Close()

	events := drain(t, stream)
	require.NoError(t, stream.Err())

	last := events[len(events)-1]
	require.Equal(t, EventResponse, last.Type)
	assert.Equal(t, want.Messages, last.Response.Messages)
	assert.Equal(t, want.Agent, last.Response.Agent)

	var starts, ends int
	for _, ev := range events {
		switch ev.Type {
		case EventDelimStart:
			starts++
		case EventDelimEnd:
			ends++
		case EventDelta:
			if ev.Delta.Role == core.RoleAssistant {
				assert.NotEmpty(t, ev.Delta.Sender)
			}
		}
	}
	assert.Equal(t, 2, starts)
	assert.Equal(t, 2, ends)
	assert.Equal(t, 0, m.OpenStreams())
}

func TestRunStream_SenderFollowsHandoff(t *testing.T) {
	a, _ := transferAgents()
	m := model.NewMockModel("mock").AddFunctionCall("transferToB", "{}").AddText("hola")

	stream, err := New(m).RunStream(context.Background(), a, nil)
	require.NoError(t, err)
	defer stream.Close()

	var senders []string
	for stream.Next() {
		if ev := stream.Event(); ev.Type == EventDelta && ev.Delta.Role == core.RoleAssistant {
			senders = append(senders, ev.Delta.Sender)
		}
	}
	require.NoError(t, stream.Err())
	assert.Equal(t, []string{"A", "B"}, senders)
}

func TestRunStream_DeltaOrder(t *testing.T) {
	m := model.NewMockModel("mock").AddDeltas(
		core.Delta{Role: core.RoleAssistant},
		core.Delta{Content: "lo"},
		core.Delta{Content: "Hel"},
	)

	stream, err := New(m).RunStream(context.Background(), testutil.NewAgent("A", "x"), nil)
	require.NoError(t, err)
	defer stream.Close()

	events := drain(t, stream)
	assert.Equal(t, "loHel", events[len(events)-1].Response.Messages[0].Content)
}

func TestRunStream_CloseEarlyNeverDispatches(t *testing.T) {
	spy := testutil.NewFuncSpy("get_weather", "sunny")
	m := model.NewMockModel("mock").AddFunctionCall("get_weather", `{"location":"NYC"}`)
	eng := New(m)

	stream, err := eng.RunStream(context.Background(), testutil.NewAgent("A", "x", spy), nil)
	require.NoError(t, err)

	require.True(t, stream.Next())
	assert.Equal(t, EventDelimStart, stream.Event().Type)
	require.True(t, stream.Next())
	assert.Equal(t, 1, m.OpenStreams())

	require.NoError(t, stream.Close())
	require.NoError(t, stream.Close())

	assert.False(t, stream.Next())
	assert.NoError(t, stream.Err())
	assert.Equal(t, 0, m.OpenStreams())
	assert.Empty(t, spy.Calls())
	assert.Equal(t, 0, eng.ActiveRuns())
}

func TestRunStream_CloseAfterEndDelimiterNeverDispatches(t *testing.T) {
	spy := testutil.NewFuncSpy("get_weather", "sunny")
	m := model.NewMockModel("mock").AddFunctionCall("get_weather", `{}`)

	stream, err := New(m).RunStream(context.Background(), testutil.NewAgent("A", "x", spy), nil)
	require.NoError(t, err)

	for stream.Next() {
		if stream.Event().Type == EventDelimEnd {
			break
		}
	}
	require.NoError(t, stream.Close())
	assert.Empty(t, spy.Calls())
	assert.Equal(t, 0, m.OpenStreams())
}

func TestRunStream_LazyStart(t *testing.T) {
	m := model.NewMockModel("mock")
	stream, err := New(m).RunStream(context.Background(), testutil.NewAgent("A", "x"), nil)
	require.NoError(t, err)

	assert.Empty(t, m.Requests())
	require.NoError(t, stream.Close())
	assert.Empty(t, m.Requests())
}

func TestRunStream_TransportFailures(t *testing.T) {
	boom := errors.New("boom")

	t.Run("open", func(t *testing.T) {
		m := model.NewMockModel("mock").AddError(boom)
		stream, err := New(m).RunStream(context.Background(), testutil.NewAgent("A", "x"), nil)
		require.NoError(t, err)

		assert.False(t, stream.Next())
		var te *core.TransportError
		assert.ErrorAs(t, stream.Err(), &te)
		assert.ErrorIs(t, stream.Err(), boom)
	})

	t.Run("mid stream", func(t *testing.T) {
		m := model.NewMockModel("mock").AddTurn(model.MockTurn{
			Deltas:    []core.Delta{{Role: core.RoleAssistant}, {Content: "par"}},
			StreamErr: boom,
		})
		stream, err := New(m).RunStream(context.Background(), testutil.NewAgent("A", "x"), nil)
		require.NoError(t, err)

		events := drain(t, stream)
		assert.Equal(t, []EventType{EventDelimStart, EventDelta, EventDelta}, eventTypes(events))
		assert.ErrorIs(t, stream.Err(), boom)
		assert.Equal(t, 0, m.OpenStreams())
		assert.NoError(t, stream.Close())
	})
}

func TestRunStream_FatalFunctionError(t *testing.T) {
	m := model.NewMockModel("mock").AddFunctionCall("f", "{}")
	stream, err := New(m).RunStream(context.Background(),
		testutil.NewAgent("A", "x", testutil.NewFuncSpy("f", make(chan int))), nil)
	require.NoError(t, err)

	events := drain(t, stream)
	assert.Equal(t, EventDelimEnd, events[len(events)-1].Type)

	var ce *core.ResultCoercionError
	assert.ErrorAs(t, stream.Err(), &ce)
}

func TestRunStream_FunctionNotFoundContinues(t *testing.T) {
	m := model.NewMockModel("mock").
		AddFunctionCall("does_not_exist", `{"x":"1"}`).
		AddText("Sorry about that.")

	stream, err := New(m).RunStream(context.Background(), testutil.NewAgent("A", "x"), testutil.Conversation("go"))
	require.NoError(t, err)
	defer stream.Close()

	events := drain(t, stream)
	require.NoError(t, stream.Err())

	last := events[len(events)-1]
	require.Equal(t, EventResponse, last.Type)

	msgs := last.Response.Messages
	require.Len(t, msgs, 3)

	var functionMsgs []core.Message
	for _, msg := range msgs {
		if msg.Role == core.RoleFunction {
			functionMsgs = append(functionMsgs, msg)
		}
	}
	require.Len(t, functionMsgs, 1)
	assert.Equal(t, "does_not_exist", functionMsgs[0].Name)
	assert.Equal(t, "Error: Function does_not_exist not found.", functionMsgs[0].Content)

	assert.Equal(t, "Sorry about that.", msgs[2].Content)
	assert.Len(t, m.Requests(), 2)
	assert.Equal(t, 0, m.OpenStreams())
}

func TestRunStream_LogsModelCalls(t *testing.T) {
	var buf bytes.Buffer
	m := model.NewMockModel("mock").AddText("Hi")
	eng := New(m, func(o *Options) {
		o.Logger = logging.NewLogger(&logging.LoggerConfig{Level: logging.LogLevelInfo, Format: "json", Output: &buf})
	})

	stream, err := eng.RunStream(context.Background(), testutil.NewAgent("A", "x"), nil, WithModelOverride("gpt-4o"))
	require.NoError(t, err)
	drain(t, stream)
	require.NoError(t, stream.Err())

	calls := logLinesWithMessage(t, &buf, "Model call completed")
	require.Len(t, calls, 1)
	assert.Equal(t, "gpt-4o", calls[0]["model"])
	assert.Equal(t, "engine", calls[0]["component"])
}

func TestRunStream_MaxTurnsZero(t *testing.T) {
	m := model.NewMockModel("mock")
	stream, err := New(m).RunStream(context.Background(), testutil.NewAgent("A", "x"), nil, WithMaxTurns(0))
	require.NoError(t, err)

	events := drain(t, stream)
	require.Len(t, events, 1)
	assert.Equal(t, EventResponse, events[0].Type)
	assert.Empty(t, events[0].Response.Messages)
	assert.Empty(t, m.Requests())
}

func TestStream_All(t *testing.T) {
	m := model.NewMockModel("mock").AddText("ok")
	stream, err := New(m).RunStream(context.Background(), testutil.NewAgent("A", "x"), nil)
	require.NoError(t, err)

	var types []EventType
	for ev, err := range stream.All() {
		require.NoError(t, err)
		types = append(types, ev.Type)
	}
	assert.Equal(t, []EventType{EventDelimStart, EventDelta, EventDelta, EventDelta, EventDelimEnd, EventResponse}, types)
}

func TestStream_AllBreakCloses(t *testing.T) {
	m := model.NewMockModel("mock").AddText("long answer")
	eng := New(m)
	stream, err := eng.RunStream(context.Background(), testutil.NewAgent("A", "x"), nil)
	require.NoError(t, err)

	for ev := range stream.All() {
		if ev.Type == EventDelta {
			break
		}
	}
	assert.Equal(t, 0, m.OpenStreams())
	assert.Equal(t, 0, eng.ActiveRuns())
}

func TestStream_AllYieldsError(t *testing.T) {
	boom := errors.New("boom")
	m := model.NewMockModel("mock").AddError(boom)
	stream, err := New(m).RunStream(context.Background(), testutil.NewAgent("A", "x"), nil)
	require.NoError(t, err)

	var got error
	for _, err := range stream.All() {
		got = err
	}
	assert.ErrorIs(t, got, boom)
}

func TestEventType_String(t *testing.T) {
	assert.Equal(t, "start", EventDelimStart.String())
	assert.Equal(t, "delta", EventDelta.String())
	assert.Equal(t, "end", EventDelimEnd.String())
	assert.Equal(t, "response", EventResponse.String())
	assert.Equal(t, "unknown", EventType(42).String())
}
