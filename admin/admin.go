// Package admin implements the driver's read-only admin HTTP surface
// (spec.md §4.10): /healthz, /stats, and, when a Prometheus sink is
// configured, /metrics. It never mutates machine state, so it is safe to
// run concurrently with either engine mode.
package admin

import (
	"encoding/json"
	"net"
	"net/http"

	"github.com/gorilla/mux"

	simlog "github.com/coreforge/simdriver/simlog"
	simmessage "github.com/coreforge/simdriver/simmessage"
	statsink "github.com/coreforge/simdriver/statsink"
)

// StatsSource is the subset of *engine.Engine the /stats route reads.
// Defined as an interface so tests can substitute a stub.
type StatsSource interface {
	SimCycle() uint64
	Iterations() uint64
	InstructionsPerCycle() simmessage.Float
}

// Server is the admin surface's embedded HTTP server.
type Server struct {
	httpServer *http.Server
	listener   net.Listener
}

// statsResponse is the JSON body served at /stats.
type statsResponse struct {
	SimCycle             uint64           `json:"sim_cycle"`
	Iterations           uint64           `json:"iterations"`
	InstructionsPerCycle simmessage.Float `json:"instructions_per_cycle"`
	Mode                 string           `json:"mode"`
}

// Start binds addr and begins serving in a background goroutine. An empty
// addr disables the surface entirely and Start returns (nil, nil).
func Start(addr string, eng StatsSource, fm *statsink.ForwardingManager, mode string) (*Server, error) {
	if addr == "" {
		return nil, nil
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	router := mux.NewRouter()
	router.HandleFunc("/healthz", handleHealthz).Methods(http.MethodGet)
	router.HandleFunc("/stats", handleStats(eng, mode)).Methods(http.MethodGet)
	if fm != nil {
		if h, ok := fm.MetricsHandler(); ok {
			router.Handle("/metrics", h).Methods(http.MethodGet)
		}
	}

	srv := &Server{
		httpServer: &http.Server{Handler: router},
		listener:   ln,
	}

	go func() {
		if err := srv.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			simlog.ComponentError("Admin", "server stopped:", err)
		}
	}()

	simlog.ComponentInfo("Admin", "listening on", addr)
	return srv, nil
}

// Close shuts down the admin server. Safe to call on a nil *Server.
func (s *Server) Close() error {
	if s == nil {
		return nil
	}
	return s.httpServer.Close()
}

func handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func handleStats(eng StatsSource, mode string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := statsResponse{
			SimCycle:             eng.SimCycle(),
			Iterations:           eng.Iterations(),
			InstructionsPerCycle: eng.InstructionsPerCycle(),
			Mode:                 mode,
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}
}
