package evaluator

import (
	"fmt"
	"strings"
	"time"

	"github.com/aetherscript/aether/objects"
)

// DefaultTraceBufferSize is the trace ring buffer's default capacity.
const DefaultTraceBufferSize = 1024

// TraceEntry is one structured diagnostic event appended by TRACE and
// its leveled variants.
type TraceEntry struct {
	Sequence  uint64
	Level     string
	Category  string
	Label     string
	Values    []objects.Value
	Timestamp time.Time
}

// Format renders the entry as "#seq [label] v1 v2 …", omitting the
// label bracket when no label was supplied.
func (t TraceEntry) Format() string {
	var b strings.Builder
	fmt.Fprintf(&b, "#%d", t.Sequence)
	if t.Label != "" {
		fmt.Fprintf(&b, " [%s]", t.Label)
	}
	for _, v := range t.Values {
		b.WriteByte(' ')
		b.WriteString(v.String())
	}
	return b.String()
}

// traceRing is a fixed-capacity ring buffer with a monotonic sequence
// counter that keeps counting past evictions, so dropped entries are
// observable from the gap between the first retained sequence number
// and the total emitted.
type traceRing struct {
	capacity int
	entries  []TraceEntry
	next     int
	total    uint64
}

func newTraceRing(capacity int) *traceRing {
	if capacity <= 0 {
		capacity = DefaultTraceBufferSize
	}
	return &traceRing{capacity: capacity}
}

func (r *traceRing) Append(level, category, label string, values []objects.Value) {
	entry := TraceEntry{Sequence: r.total + 1, Level: level, Category: category, Label: label, Values: values, Timestamp: time.Now()}
	r.total++
	if len(r.entries) < r.capacity {
		r.entries = append(r.entries, entry)
		return
	}
	r.entries[r.next] = entry
	r.next = (r.next + 1) % r.capacity
}

// Records returns the currently retained entries in sequence order.
func (r *traceRing) Records() []TraceEntry {
	if len(r.entries) < r.capacity {
		out := make([]TraceEntry, len(r.entries))
		copy(out, r.entries)
		return out
	}
	out := make([]TraceEntry, r.capacity)
	copy(out, r.entries[r.next:])
	copy(out[r.capacity-r.next:], r.entries[:r.next])
	return out
}

// Take drains the buffer: it returns the retained entries in sequence
// order and empties the ring. The sequence counter keeps counting, so
// entries appended after a Take continue from where the drained ones
// left off.
func (r *traceRing) Take() []TraceEntry {
	out := r.Records()
	r.entries = nil
	r.next = 0
	return out
}

// Clear empties the buffer and resets the sequence counter, so the next
// appended entry starts over at sequence 1.
func (r *traceRing) Clear() {
	r.entries = nil
	r.next = 0
	r.total = 0
}

// Resize changes the capacity, keeping as many of the most recent
// entries as fit in the new capacity.
func (r *traceRing) Resize(capacity int) {
	if capacity <= 0 {
		capacity = DefaultTraceBufferSize
	}
	records := r.Records()
	r.capacity = capacity
	r.entries = nil
	r.next = 0
	if len(records) > capacity {
		records = records[len(records)-capacity:]
	}
	r.entries = append(r.entries, records...)
}

// TotalEmitted returns the total number of trace entries ever appended,
// including those since evicted.
func (r *traceRing) TotalEmitted() uint64 { return r.total }
