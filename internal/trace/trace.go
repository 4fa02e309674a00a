// Package trace is a deterministic, byte-stable record of one RunGraph
// invocation's scheduling decisions: which tasks were dispatched,
// completed, failed, or skipped by checkpoint pruning, in canonical
// (not wall-clock) order.
package trace

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

// ExecutionTrace is the canonical, deterministic record of a graph run.
//
// Invariants:
//   - Captures RunID and an ordered list of events.
//   - Contains logical transitions, not runtime-dependent details
//     (no timestamps, no pointers, no goroutine-scheduling artifacts).
//   - Two traces with the same RunID and the same events produce
//     byte-identical canonical JSON even though dispatch/completion
//     interleaving may differ, because Canonicalize sorts by task, not by
//     occurrence time. RunGraph mints a fresh RunID per invocation, so
//     traces of two separate runs differ in their runId field.
type ExecutionTrace struct {
	RunID  string
	Events []TraceEvent
}

// TraceEventKind is the stable, canonical discriminator for TraceEvent.
// The string values are part of the trace's canonical bytes; do not rename.
type TraceEventKind string

const (
	EventTaskDispatched TraceEventKind = "TaskDispatched"
	EventTaskCompleted  TraceEventKind = "TaskCompleted"
	EventTaskFailed     TraceEventKind = "TaskFailed"
	EventTaskSkipped    TraceEventKind = "TaskSkipped"
)

// TraceEvent is a single logical transition for one task.
type TraceEvent struct {
	Kind TraceEventKind

	// TaskID identifies the task this event refers to; required.
	TaskID string

	// Reason is a stable, logical reason code, e.g. "checkpoint" for a
	// TaskSkipped event. Optional.
	Reason string
}

// Validate checks basic invariants and returns a descriptive error.
func (t *ExecutionTrace) Validate() error {
	if t == nil {
		return errors.New("trace is nil")
	}
	if t.RunID == "" {
		return errors.New("runID is required")
	}
	for i := range t.Events {
		e := t.Events[i]
		if e.Kind == "" {
			return fmt.Errorf("events[%d].kind is required", i)
		}
		if e.TaskID == "" {
			return fmt.Errorf("events[%d].taskId is required for kind %q", i, e.Kind)
		}
	}
	return nil
}

// Canonicalize sorts events into a total order independent of dispatch
// or completion timing: primarily by TaskID, then by kind, then reason.
func (t *ExecutionTrace) Canonicalize() {
	if t == nil {
		return
	}
	sort.SliceStable(t.Events, func(i, j int) bool {
		a := t.Events[i]
		b := t.Events[j]

		if a.TaskID != b.TaskID {
			return a.TaskID < b.TaskID
		}
		if kindOrder(a.Kind) != kindOrder(b.Kind) {
			return kindOrder(a.Kind) < kindOrder(b.Kind)
		}
		return a.Reason < b.Reason
	})
}

func kindOrder(k TraceEventKind) int {
	switch k {
	case EventTaskDispatched:
		return 10
	case EventTaskCompleted:
		return 20
	case EventTaskFailed:
		return 30
	case EventTaskSkipped:
		return 40
	default:
		return 1000
	}
}

// CanonicalJSON returns the canonical JSON encoding of the trace. It
// canonicalizes a copy of the trace to avoid mutating the caller's slice.
func (t ExecutionTrace) CanonicalJSON() ([]byte, error) {
	cp := ExecutionTrace{RunID: t.RunID}
	cp.Events = make([]TraceEvent, len(t.Events))
	copy(cp.Events, t.Events)
	cp.Canonicalize()
	if err := cp.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(&cp)
}

// Hash returns the deterministic trace hash (sha256 hex) of the
// canonical JSON bytes.
func (t ExecutionTrace) Hash() (string, error) {
	b, err := t.CanonicalJSON()
	if err != nil {
		return "", err
	}
	return ComputeTraceHash(b), nil
}

// MarshalJSON fixes field order: runId, then events.
func (t ExecutionTrace) MarshalJSON() ([]byte, error) {
	if t.RunID == "" {
		return nil, errors.New("runID is required")
	}
	var buf bytes.Buffer
	buf.WriteByte('{')

	buf.WriteString("\"runId\":")
	rid, _ := json.Marshal(t.RunID)
	buf.Write(rid)
	buf.WriteByte(',')

	buf.WriteString("\"events\":[")
	for i := range t.Events {
		if i > 0 {
			buf.WriteByte(',')
		}
		eb, err := json.Marshal(t.Events[i])
		if err != nil {
			return nil, err
		}
		buf.Write(eb)
	}
	buf.WriteByte(']')

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalJSON fixes field order and omits an empty Reason.
func (e TraceEvent) MarshalJSON() ([]byte, error) {
	if e.Kind == "" {
		return nil, errors.New("kind is required")
	}
	if e.TaskID == "" {
		return nil, errors.New("taskId is required")
	}

	var buf bytes.Buffer
	buf.WriteByte('{')

	buf.WriteString("\"kind\":")
	kb, _ := json.Marshal(string(e.Kind))
	buf.Write(kb)

	buf.WriteByte(',')
	buf.WriteString("\"taskId\":")
	tb, _ := json.Marshal(e.TaskID)
	buf.Write(tb)

	if e.Reason != "" {
		buf.WriteByte(',')
		buf.WriteString("\"reason\":")
		rb, _ := json.Marshal(e.Reason)
		buf.Write(rb)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}
