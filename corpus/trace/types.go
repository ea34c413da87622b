// Package trace provides a low-overhead event system for tracking
// query execution: index scans, condition results, combinations and
// warnings. Core code emits events instead of writing to a logger.
package trace

import (
	"sync"
	"time"
)

// Event name constants following hierarchical naming pattern
const (
	// Query lifecycle
	QueryInvoked  = "query/invoked"
	QueryComplete = "query/completed"

	// Condition execution
	ConditionBegin    = "condition/begin"
	ConditionComplete = "condition/completed"

	// Index access
	IndexLookup = "index/lookup"
	IndexScan   = "index/scan"

	// Result algebra
	ResultsUnion        = "result/union"
	ResultsIntersection = "result/intersection"
	ResultsComplement   = "result/complement"

	// Temporal subsystem
	TemporalHashBuilt   = "temporal-hash/built"
	TemporalHashQueried = "temporal-hash/queried"
	JoinExecuted        = "join/executed"

	// Warnings
	WarnGranularityMismatch = "warn/granularity.mismatch"
	WarnWildcardPattern     = "warn/wildcard.unsupported"
	WarnHashIndexFallback   = "warn/temporal-hash.fallback"
	WarnEmptyChildren       = "warn/logical.empty"
)

// Event represents a single trace event during query execution.
type Event struct {
	Name    string
	Start   time.Time
	End     time.Time
	Latency time.Duration
	Data    map[string]interface{}
}

// Handler processes trace events as they occur.
type Handler func(event Event)

// Collector accumulates events during query execution. A nil handler
// disables collection entirely so the hot path stays cheap.
type Collector struct {
	enabled bool
	handler Handler
	mu      sync.Mutex
	events  []Event
}

// NewCollector creates a collector. With a nil handler every method is
// a no-op.
func NewCollector(handler Handler) *Collector {
	return &Collector{
		enabled: handler != nil,
		handler: handler,
		events:  make([]Event, 0, 64),
	}
}

// Enabled reports whether events are being collected.
func (c *Collector) Enabled() bool {
	return c != nil && c.enabled
}

// Add records a new event. Safe for concurrent use.
func (c *Collector) Add(event Event) {
	if !c.Enabled() {
		return
	}
	c.mu.Lock()
	c.events = append(c.events, event)
	c.mu.Unlock()

	// Call handler outside the lock to avoid deadlocks
	if c.handler != nil {
		c.handler(event)
	}
}

// AddTiming records an event spanning start..now.
func (c *Collector) AddTiming(name string, start time.Time, data map[string]interface{}) {
	if !c.Enabled() {
		return
	}
	end := time.Now()
	c.Add(Event{
		Name:    name,
		Start:   start,
		End:     end,
		Latency: end.Sub(start),
		Data:    data,
	})
}

// Emit records an instantaneous event.
func (c *Collector) Emit(name string, data map[string]interface{}) {
	if !c.Enabled() {
		return
	}
	now := time.Now()
	c.Add(Event{Name: name, Start: now, End: now, Data: data})
}

// Events returns a copy of all collected events.
func (c *Collector) Events() []Event {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Event, len(c.events))
	copy(out, c.events)
	return out
}

// Reset clears the collector for reuse.
func (c *Collector) Reset() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = c.events[:0]
}
