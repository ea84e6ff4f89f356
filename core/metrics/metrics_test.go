package metrics

import (
	"strings"
	"testing"
)

// Gauges must not carry the _total suffix; counters must.
func TestCollectorNaming(t *testing.T) {
	if desc := ActiveSessions.Desc().String(); !strings.Contains(desc, `"nexon_active_sessions"`) {
		t.Fatalf("active sessions gauge desc = %s", desc)
	}
	counters := map[string]string{
		"commands":  CommandCounter.WithLabelValues("post", "ok").Desc().String(),
		"publishes": PublishCounter.WithLabelValues("origin", "ok").Desc().String(),
		"messages":  MessagesSent.WithLabelValues("text").Desc().String(),
		"events":    EventCounter.WithLabelValues("message").Desc().String(),
	}
	for name, desc := range counters {
		if !strings.Contains(desc, "_total") {
			t.Errorf("%s counter missing _total suffix: %s", name, desc)
		}
	}
}
