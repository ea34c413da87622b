package trace

import (
	"testing"
	"time"
)

func TestCollectorDisabledWithoutHandler(t *testing.T) {
	c := NewCollector(nil)
	if c.Enabled() {
		t.Fatal("nil handler must disable collection")
	}
	c.Emit(QueryInvoked, nil)
	if len(c.Events()) != 0 {
		t.Error("disabled collector must not record events")
	}
}

func TestCollectorRecordsAndCallsHandler(t *testing.T) {
	var handled []Event
	c := NewCollector(func(e Event) { handled = append(handled, e) })

	c.Emit(QueryInvoked, map[string]interface{}{"query": "mini"})
	c.AddTiming(QueryComplete, time.Now(), map[string]interface{}{"detail.count": 3})

	if len(c.Events()) != 2 || len(handled) != 2 {
		t.Fatalf("expected 2 events, got %d collected, %d handled", len(c.Events()), len(handled))
	}
	if handled[0].Name != QueryInvoked || handled[1].Name != QueryComplete {
		t.Errorf("unexpected event names: %v %v", handled[0].Name, handled[1].Name)
	}

	c.Reset()
	if len(c.Events()) != 0 {
		t.Error("reset must clear events")
	}
}

func TestNilCollectorIsSafe(t *testing.T) {
	var c *Collector
	if c.Enabled() {
		t.Fatal("nil collector is disabled")
	}
	c.Emit(QueryInvoked, nil)
	c.Reset()
	if c.Events() != nil {
		t.Error("nil collector has no events")
	}
}
