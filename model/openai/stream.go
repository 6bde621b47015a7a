package openai

import (
	"fmt"
	"sync"

	"github.com/openai/openai-go"

	"github.com/hupe1980/agentswarm/core"
	"github.com/hupe1980/agentswarm/logging"
)

// chunkSource is the subset of the SDK's SSE stream consumed by chunkStream.
type chunkSource interface {
	Next() bool
	Current() openai.ChatCompletionChunk
	Err() error
	Close() error
}

// chunkStream adapts streamed completion chunks into core.Delta values.
// Fragments belonging to any tool call other than the first are dropped. The
// call ID is emitted once, on the first fragment, and synthesized when the
// provider omits it.
type chunkStream struct {
	src    chunkSource
	logger logging.Logger

	cur        core.Delta
	err        error
	firstIndex int64
	seenCall   bool
	warned     bool

	closeOnce sync.Once
	closeErr  error
}

func newChunkStream(src chunkSource, logger logging.Logger) *chunkStream {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &chunkStream{src: src, logger: logger}
}

func (s *chunkStream) Next() bool {
	if s.err != nil {
		return false
	}
	for s.src.Next() {
		chunk := s.src.Current()
		if len(chunk.Choices) == 0 {
			continue
		}
		if d, ok := s.convert(chunk.Choices[0].Delta); ok {
			s.cur = d
			return true
		}
	}
	if err := s.src.Err(); err != nil {
		s.err = fmt.Errorf("openai streaming error: %w", err)
	}
	return false
}

func (s *chunkStream) convert(in openai.ChatCompletionChunkChoiceDelta) (core.Delta, bool) {
	d := core.Delta{
		Role:    core.Role(in.Role),
		Content: in.Content,
	}

	for _, tc := range in.ToolCalls {
		first := !s.seenCall
		if first {
			s.seenCall = true
			s.firstIndex = tc.Index
		}
		if tc.Index != s.firstIndex {
			if !s.warned {
				s.warned = true
				s.logger.Warn("discarding additional streamed tool calls", "index", tc.Index)
			}
			continue
		}
		if d.FunctionCall == nil {
			d.FunctionCall = &core.FunctionCallDelta{}
		}
		if first {
			d.FunctionCall.ID = callID(tc.ID)
		}
		d.FunctionCall.Name += tc.Function.Name
		d.FunctionCall.Arguments += tc.Function.Arguments
	}

	if d.Role == "" && d.Content == "" && d.FunctionCall == nil {
		return core.Delta{}, false
	}
	return d, true
}

func (s *chunkStream) Current() core.Delta { return s.cur }

func (s *chunkStream) Err() error { return s.err }

func (s *chunkStream) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.src.Close()
	})
	return s.closeErr
}
