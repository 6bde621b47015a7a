package model

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/hupe1980/agentswarm/core"
)

// MockTurn scripts one completion of a MockModel. Exactly one of Message,
// Deltas or Err is normally set. StreamErr is reported by a stream after its
// deltas are exhausted.
type MockTurn struct {
	Message   *core.Message
	Deltas    []core.Delta
	Err       error
	StreamErr error
}

// MockModel is a lightweight in-memory Model useful for tests & examples. It
// replays scripted turns in order and falls back to echoing the last user
// message once the script is exhausted. The same script serves Complete and
// Stream: messages are split into deltas and deltas are folded into messages
// as needed.
type MockModel struct {
	info Info

	mu          sync.Mutex
	turns       []MockTurn
	requests    []Request
	openStreams int
	callSeq     int
}

// NewMockModel constructs a MockModel with function support enabled.
func NewMockModel(name string) *MockModel {
	return &MockModel{
		info: Info{
			Name:              name,
			Provider:          "mock",
			SupportsFunctions: true,
		},
	}
}

// AddTurn appends a scripted turn.
func (m *MockModel) AddTurn(t MockTurn) *MockModel {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.turns = append(m.turns, t)
	return m
}

// AddText scripts an assistant text reply.
func (m *MockModel) AddText(text string) *MockModel {
	msg := core.AssistantMessage(text)
	return m.AddTurn(MockTurn{Message: &msg})
}

// AddFunctionCall scripts an assistant message calling name with the JSON
// argument payload args. A call id is assigned automatically.
func (m *MockModel) AddFunctionCall(name, args string) *MockModel {
	m.mu.Lock()
	m.callSeq++
	id := fmt.Sprintf("call_%d", m.callSeq)
	m.mu.Unlock()

	msg := core.Message{
		Role:         core.RoleAssistant,
		FunctionCall: &core.FunctionCall{ID: id, Name: name, Arguments: args},
	}
	return m.AddTurn(MockTurn{Message: &msg})
}

// AddDeltas scripts a turn delivered as the given fragments.
func (m *MockModel) AddDeltas(deltas ...core.Delta) *MockModel {
	return m.AddTurn(MockTurn{Deltas: deltas})
}

// AddError scripts a failing completion request.
func (m *MockModel) AddError(err error) *MockModel {
	return m.AddTurn(MockTurn{Err: err})
}

// Requests returns a copy of every request received so far.
func (m *MockModel) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.requests))
	copy(out, m.requests)
	return out
}

// OpenStreams returns the number of streams not yet closed.
func (m *MockModel) OpenStreams() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.openStreams
}

// Complete implements Model.
func (m *MockModel) Complete(ctx context.Context, req Request) (*core.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	turn := m.next(req)
	if turn.Err != nil {
		return nil, turn.Err
	}
	if turn.Message != nil {
		msg := turn.Message.Clone()
		return &msg, nil
	}
	msg := foldDeltas(turn.Deltas)
	return &msg, nil
}

// Stream implements Model.
func (m *MockModel) Stream(ctx context.Context, req Request) (Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	turn := m.next(req)
	if turn.Err != nil {
		return nil, turn.Err
	}
	deltas := turn.Deltas
	if turn.Message != nil {
		deltas = splitMessage(*turn.Message)
	}

	m.mu.Lock()
	m.openStreams++
	m.mu.Unlock()

	return &mockStream{ctx: ctx, model: m, deltas: deltas, finalErr: turn.StreamErr}, nil
}

// Info implements Model.
func (m *MockModel) Info() Info { return m.info }

func (m *MockModel) next(req Request) MockTurn {
	m.mu.Lock()
	defer m.mu.Unlock()

	req.Messages = core.CloneMessages(req.Messages)
	m.requests = append(m.requests, req)

	if len(m.turns) > 0 {
		t := m.turns[0]
		m.turns = m.turns[1:]
		return t
	}

	var input string
	for i := len(req.Messages) - 1; i >= 0; i-- {
		if req.Messages[i].Role == core.RoleUser {
			input = req.Messages[i].Content
			break
		}
	}
	msg := core.AssistantMessage("Mock response to: " + input)
	return MockTurn{Message: &msg}
}

func (m *MockModel) release() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.openStreams--
}

// splitMessage turns a message into per-rune content deltas plus, for a
// function call, a header delta and two argument fragments.
func splitMessage(msg core.Message) []core.Delta {
	deltas := []core.Delta{{Role: core.RoleAssistant}}
	for _, r := range msg.Content {
		deltas = append(deltas, core.Delta{Content: string(r)})
	}
	if fc := msg.FunctionCall; fc != nil {
		deltas = append(deltas, core.Delta{FunctionCall: &core.FunctionCallDelta{ID: fc.ID, Name: fc.Name}})
		half := len(fc.Arguments) / 2
		deltas = append(deltas,
			core.Delta{FunctionCall: &core.FunctionCallDelta{Arguments: fc.Arguments[:half]}},
			core.Delta{FunctionCall: &core.FunctionCallDelta{Arguments: fc.Arguments[half:]}},
		)
	}
	return deltas
}

// foldDeltas concatenates scripted deltas for non-streaming replay.
func foldDeltas(deltas []core.Delta) core.Message {
	msg := core.Message{Role: core.RoleAssistant}
	var content strings.Builder
	for _, d := range deltas {
		content.WriteString(d.Content)
		if d.FunctionCall == nil {
			continue
		}
		if msg.FunctionCall == nil {
			msg.FunctionCall = &core.FunctionCall{}
		}
		msg.FunctionCall.ID += d.FunctionCall.ID
		msg.FunctionCall.Name += d.FunctionCall.Name
		msg.FunctionCall.Arguments += d.FunctionCall.Arguments
	}
	msg.Content = content.String()
	return msg
}

type mockStream struct {
	ctx      context.Context
	model    *MockModel
	deltas   []core.Delta
	pos      int
	cur      core.Delta
	err      error
	finalErr error
	closed   bool
}

func (s *mockStream) Next() bool {
	if s.closed || s.err != nil {
		return false
	}
	if err := s.ctx.Err(); err != nil {
		s.err = err
		return false
	}
	if s.pos >= len(s.deltas) {
		s.err = s.finalErr
		return false
	}
	s.cur = s.deltas[s.pos]
	s.pos++
	return true
}

func (s *mockStream) Current() core.Delta { return s.cur }

func (s *mockStream) Err() error { return s.err }

func (s *mockStream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.model.release()
	return nil
}
