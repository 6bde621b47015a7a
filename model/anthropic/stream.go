package anthropic

import (
	"fmt"
	"sync"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/hupe1980/agentswarm/core"
	"github.com/hupe1980/agentswarm/logging"
)

// eventSource is the subset of the SDK's SSE stream consumed by eventStream.
type eventSource interface {
	Next() bool
	Current() anthropic.MessageStreamEventUnion
	Err() error
	Close() error
}

// eventStream adapts Messages API stream events into core.Delta values.
// Only the first tool_use block is forwarded.
type eventStream struct {
	src    eventSource
	logger logging.Logger

	cur       core.Delta
	err       error
	toolIndex int64
	hasTool   bool

	closeOnce sync.Once
	closeErr  error
}

func newEventStream(src eventSource, logger logging.Logger) *eventStream {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &eventStream{src: src, logger: logger}
}

func (s *eventStream) Next() bool {
	if s.err != nil {
		return false
	}
	for s.src.Next() {
		if d, ok := s.convert(s.src.Current()); ok {
			s.cur = d
			return true
		}
	}
	if err := s.src.Err(); err != nil {
		s.err = fmt.Errorf("anthropic streaming error: %w", err)
	}
	return false
}

func (s *eventStream) convert(ev anthropic.MessageStreamEventUnion) (core.Delta, bool) {
	switch ev.Type {
	case "message_start":
		return core.Delta{Role: core.RoleAssistant}, true
	case "content_block_start":
		block := ev.ContentBlock
		switch block.Type {
		case "text":
			if block.Text != "" {
				return core.Delta{Content: block.Text}, true
			}
		case "tool_use":
			if s.hasTool {
				s.logger.Warn("discarding additional streamed tool calls", "index", ev.Index)
				return core.Delta{}, false
			}
			s.hasTool = true
			s.toolIndex = ev.Index
			return core.Delta{FunctionCall: &core.FunctionCallDelta{
				ID:   callID(block.ID),
				Name: block.Name,
			}}, true
		}
	case "content_block_delta":
		switch ev.Delta.Type {
		case "text_delta":
			if ev.Delta.Text != "" {
				return core.Delta{Content: ev.Delta.Text}, true
			}
		case "input_json_delta":
			if s.hasTool && ev.Index == s.toolIndex && ev.Delta.PartialJSON != "" {
				return core.Delta{FunctionCall: &core.FunctionCallDelta{Arguments: ev.Delta.PartialJSON}}, true
			}
		}
	}
	return core.Delta{}, false
}

func (s *eventStream) Current() core.Delta { return s.cur }

func (s *eventStream) Err() error { return s.err }

func (s *eventStream) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.src.Close()
	})
	return s.closeErr
}
