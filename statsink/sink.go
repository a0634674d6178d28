// Package statsink implements the Snapshot Forwarding layer (spec.md §4.9):
// a named registry of sink factories, mirroring the source project's
// AvailableSinks/Sink split, specialized to dispatch cycle-engine snapshots
// instead of collected metrics.
package statsink

import (
	"encoding/json"
	"net/http"

	simlog "github.com/coreforge/simdriver/simlog"
	simmessage "github.com/coreforge/simdriver/simmessage"
)

// Sink is the interface every statistics sink implements.
type Sink interface {
	// Write forwards a single snapshot. Errors are logged by the caller
	// and never abort the run (spec.md §7).
	Write(simmessage.Snapshot) error
	Name() string
	Close() error
}

// defaultSinkConfig holds the configuration fields common to all sinks.
type defaultSinkConfig struct {
	Type string `json:"type"`
}

// sink is the embeddable base every concrete sink starts from.
type sink struct {
	name string
}

func (s *sink) Name() string { return s.name }

// AvailableSinks maps a sink type name to its constructor. Populated by
// RegisterBuiltins; plugins may add further entries via Register.
var AvailableSinks = map[string]func(name string, rawConfig json.RawMessage) (Sink, error){}

// Register adds or replaces the factory for key. Last registration wins.
func Register(key string, factory func(name string, rawConfig json.RawMessage) (Sink, error)) {
	AvailableSinks[key] = factory
}

// RegisterBuiltins populates AvailableSinks with the sink types this module
// ships: stdout, prometheus, influxdb, questdb, nats.
func RegisterBuiltins() {
	Register("stdout", NewStdoutSink)
	Register("prometheus", NewPrometheusSink)
	Register("influxdb", NewInfluxSink)
	Register("questdb", NewQuestSink)
	Register("nats", NewNatsSink)
}

// ForwardingManager owns the set of constructed sinks and fans out every
// snapshot to all of them. A sink whose constructor fails is skipped with a
// warning; it never aborts assembly (spec.md §3, §4.9).
type ForwardingManager struct {
	sinks []Sink
}

// NewForwardingManager builds a ForwardingManager from a "sinks" config
// section: a JSON object mapping sink-instance-name to its raw sub-config.
// A nil or empty section yields a manager with no sinks, which is a valid,
// fully functional (no-op) configuration.
func NewForwardingManager(sinksConfig json.RawMessage) *ForwardingManager {
	fm := &ForwardingManager{}
	if len(sinksConfig) == 0 {
		return fm
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(sinksConfig, &raw); err != nil {
		simlog.ComponentError("ForwardingManager", "invalid sinks configuration:", err)
		return fm
	}

	for name, cfg := range raw {
		var head defaultSinkConfig
		if err := json.Unmarshal(cfg, &head); err != nil {
			simlog.ComponentError("ForwardingManager", "SKIP", name, "invalid JSON:", err)
			continue
		}
		if head.Type == "" {
			simlog.ComponentError("ForwardingManager", "SKIP", name, "missing sink type")
			continue
		}
		factory, ok := AvailableSinks[head.Type]
		if !ok {
			simlog.ComponentWarn("ForwardingManager", "SKIP", name, "unknown sink type:", head.Type)
			continue
		}
		s, err := factory(name, cfg)
		if err != nil {
			simlog.ComponentWarn("ForwardingManager", "SKIP", name, "construction failed:", err)
			continue
		}
		fm.sinks = append(fm.sinks, s)
		simlog.ComponentDebug("ForwardingManager", "ADD SINK", s.Name())
	}
	return fm
}

// Forward writes snap to every constructed sink. Called only from the
// cycle-engine orchestrator goroutine (spec.md §5).
func (fm *ForwardingManager) Forward(snap simmessage.Snapshot) {
	for _, s := range fm.sinks {
		if err := s.Write(snap); err != nil {
			simlog.ComponentError("ForwardingManager", s.Name(), "write failed:", err)
		}
	}
}

// Close shuts down every constructed sink in registration order.
func (fm *ForwardingManager) Close() {
	for _, s := range fm.sinks {
		if err := s.Close(); err != nil {
			simlog.ComponentError("ForwardingManager", s.Name(), "close failed:", err)
		}
	}
}

// Count returns the number of successfully constructed sinks. Used by tests.
func (fm *ForwardingManager) Count() int {
	return len(fm.sinks)
}

// metricsHandler is implemented by sinks that can serve their own
// Prometheus registry over HTTP (currently only PrometheusSink).
type metricsHandler interface {
	Handler() http.Handler
}

// MetricsHandler returns the constructed Prometheus sink's handler, if one
// is configured, for the admin HTTP surface to mount at /metrics
// (spec.md §4.10).
func (fm *ForwardingManager) MetricsHandler() (http.Handler, bool) {
	for _, s := range fm.sinks {
		if mh, ok := s.(metricsHandler); ok {
			return mh.Handler(), true
		}
	}
	return nil, false
}
