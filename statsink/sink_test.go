package statsink

import (
	"encoding/json"
	"testing"
	"time"

	simmessage "github.com/coreforge/simdriver/simmessage"
)

// S7: one sink of an unregistered type is skipped with a warning; the
// stdout sink alongside it still receives every forwarded snapshot.
func TestForwardingManagerSkipsUnregisteredSinkType(t *testing.T) {
	AvailableSinks = map[string]func(name string, rawConfig json.RawMessage) (Sink, error){}
	RegisterBuiltins()

	sinksConfig := json.RawMessage(`{
		"console": {"type": "stdout"},
		"bogus": {"type": "not_a_real_sink_type"}
	}`)

	fm := NewForwardingManager(sinksConfig)
	if fm.Count() != 1 {
		t.Fatalf("expected exactly 1 constructed sink, got %d", fm.Count())
	}

	fm.Forward(simmessage.NewHeaderSnapshot("testmachine", time.Now()))
	fm.Close()
}

func TestForwardingManagerEmptySectionIsNoOp(t *testing.T) {
	fm := NewForwardingManager(nil)
	if fm.Count() != 0 {
		t.Fatalf("expected no sinks for an empty section, got %d", fm.Count())
	}
	// Forward must be safe to call with zero sinks.
	fm.Forward(simmessage.NewHeaderSnapshot("testmachine", time.Now()))
}
