package engine

import (
	"errors"
	"iter"
	"time"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/hupe1980/agentswarm/core"
	"github.com/hupe1980/agentswarm/flow"
	"github.com/hupe1980/agentswarm/model"
)

// EventType discriminates the events of a Stream.
type EventType int

const (
	// EventDelimStart opens the streamed message of one turn.
	EventDelimStart EventType = iota
	// EventDelta carries one fragment of the in-progress message.
	EventDelta
	// EventDelimEnd closes the streamed message of one turn.
	EventDelimEnd
	// EventResponse is the final event and carries the run response.
	EventResponse
)

// String returns the wire name of the event type.
func (t EventType) String() string {
	switch t {
	case EventDelimStart:
		return "start"
	case EventDelta:
		return "delta"
	case EventDelimEnd:
		return "end"
	case EventResponse:
		return "response"
	default:
		return "unknown"
	}
}

// StreamEvent is one element produced by a Stream. Delta is set for
// EventDelta, Response for EventResponse.
type StreamEvent struct {
	Type     EventType
	Delta    core.Delta
	Response *core.Response
}

type streamPhase int

const (
	phaseRequest streamPhase = iota
	phaseChunks
	phaseMerge
	phaseResponse
	phaseDone
)

// Stream is a pull-based iterator over the events of a streaming run.
//
// Every turn yields a start delimiter, the message deltas in delivery order
// and an end delimiter. After the last turn a single response event carries
// the same Response a synchronous run would return. All work, including
// function dispatch, happens inside Next: a stream that is not pulled makes no
// progress.
//
//	stream, err := eng.RunStream(ctx, agent, messages)
//	if err != nil {
//	    return err
//	}
//	defer stream.Close()
//
//	for stream.Next() {
//	    ev := stream.Event()
//	    ...
//	}
//	if err := stream.Err(); err != nil {
//	    return err
//	}
//
// A Stream is not safe for concurrent use.
type Stream struct {
	run *run

	phase  streamPhase
	req    model.Request
	source model.Stream
	span   trace.Span
	start  time.Time
	msg    core.Message

	event StreamEvent
	err   error
}

// Next advances to the next event. It returns false when the run finished,
// failed or the stream was closed.
func (s *Stream) Next() bool {
	for {
		switch s.phase {
		case phaseRequest:
			if !s.run.shouldContinue() {
				s.phase = phaseResponse
				continue
			}
			if err := s.open(); err != nil {
				return s.fail(err)
			}
			s.phase = phaseChunks
			s.event = StreamEvent{Type: EventDelimStart}
			return true

		case phaseChunks:
			if s.source.Next() {
				d := s.source.Current()
				if d.FunctionCall != nil {
					fc := *d.FunctionCall
					d.FunctionCall = &fc
				}
				if d.Role == core.RoleAssistant {
					d.Sender = s.run.state.ActiveAgent().Name
				}
				flow.MergeDelta(&s.msg, d)
				s.event = StreamEvent{Type: EventDelta, Delta: d}
				return true
			}

			err := s.source.Err()
			s.closeSource(err)
			if err != nil {
				return s.fail(&core.TransportError{Model: s.req.Model, Err: err})
			}
			s.phase = phaseMerge
			s.event = StreamEvent{Type: EventDelimEnd}
			return true

		case phaseMerge:
			msg := s.msg
			if err := s.run.accept(s.req, msg); err != nil {
				return s.fail(err)
			}
			if !msg.HasFunctionCall() || !s.run.opts.ExecuteFunctions {
				s.run.debug.Print("Ending turn.")
				s.phase = phaseResponse
				continue
			}
			if err := s.run.dispatch(*msg.FunctionCall); err != nil {
				return s.fail(err)
			}
			s.phase = phaseRequest

		case phaseResponse:
			s.event = StreamEvent{Type: EventResponse, Response: s.run.state.Response()}
			s.phase = phaseDone
			s.run.finish(nil)
			return true

		default:
			return false
		}
	}
}

// Event returns the event produced by the last successful call to Next.
func (s *Stream) Event() StreamEvent { return s.event }

// Err returns the error that ended the stream, if any. Closing a stream early
// is not an error.
func (s *Stream) Err() error { return s.err }

// Close releases the transport stream and ends the run. The message of an
// interrupted turn is discarded and its function call, if any, is never
// dispatched. Close is idempotent.
func (s *Stream) Close() error {
	if s.phase == phaseDone {
		return nil
	}
	s.closeSource(nil)
	s.phase = phaseDone
	s.run.finish(nil)
	return nil
}

// All adapts the stream to a range-over-func sequence. A failure is yielded
// once as the final pair; breaking out of the loop closes the stream.
//
//	for ev, err := range stream.All() {
//	    if err != nil {
//	        return err
//	    }
//	    ...
//	}
func (s *Stream) All() iter.Seq2[StreamEvent, error] {
	return func(yield func(StreamEvent, error) bool) {
		defer s.Close()
		for s.Next() {
			if !yield(s.Event(), nil) {
				return
			}
		}
		if err := s.Err(); err != nil {
			yield(StreamEvent{}, err)
		}
	}
}

func (s *Stream) open() error {
	req, err := s.run.prepareTurn(true)
	if err != nil {
		return err
	}
	s.req = req

	ctx, span := s.run.startTurnSpan(req)
	s.span = span
	s.start = time.Now()

	src, err := s.run.engine.model.Stream(ctx, req)
	if err == nil && src == nil {
		err = errors.New("empty stream")
	}
	if err != nil {
		s.closeSource(err)
		return &core.TransportError{Model: req.Model, Err: err}
	}

	s.source = src
	s.msg = core.Message{Role: core.RoleAssistant, Sender: s.run.state.ActiveAgent().Name}
	return nil
}

// closeSource releases the transport stream of the current turn and records
// its telemetry.
func (s *Stream) closeSource(err error) {
	if s.source != nil {
		_ = s.source.Close()
		s.source = nil
	}
	if s.span != nil {
		s.run.recordCompletion(s.run.ctx, s.req.Model, time.Since(s.start), err)
		if err != nil {
			s.span.RecordError(err)
			s.span.SetStatus(codes.Error, err.Error())
		}
		s.span.End()
		s.span = nil
	}
}

func (s *Stream) fail(err error) bool {
	s.closeSource(nil)
	s.err = err
	s.phase = phaseDone
	s.run.finish(err)
	return false
}
