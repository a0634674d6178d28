package statsink

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	simlog "github.com/coreforge/simdriver/simlog"
	simmessage "github.com/coreforge/simdriver/simmessage"
)

// PrometheusSinkConfig configures the Prometheus sink's embedded HTTP
// server, which serves /<path> with the registered simulation gauges.
type PrometheusSinkConfig struct {
	defaultSinkConfig
	Host string `json:"host,omitempty"`
	Port string `json:"port"`
	Path string `json:"path,omitempty"`
}

// PrometheusSink exposes the running simulation's cycle counters as
// Prometheus gauges, polled through the admin surface's /metrics route or
// scraped directly from its own embedded server.
type PrometheusSink struct {
	sink
	config     PrometheusSinkConfig
	registry   *prometheus.Registry
	cycle      prometheus.Gauge
	iterations prometheus.Gauge
	insns      prometheus.Gauge
	server     *http.Server
	wg         sync.WaitGroup
}

// Handler returns the promhttp handler for this sink's registry, so the
// admin HTTP surface can mount it at /metrics without requiring the sink's
// own embedded scrape server to be configured (spec.md §4.10).
func (s *PrometheusSink) Handler() http.Handler {
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})
}

func (s *PrometheusSink) Write(snap simmessage.Snapshot) error {
	s.cycle.Set(float64(snap.Cycle))
	s.iterations.Set(float64(snap.Iterations))
	s.insns.Set(float64(snap.TotalUserInsnsCommitted))
	return nil
}

func (s *PrometheusSink) Close() error {
	if s.server == nil {
		return nil
	}
	err := s.server.Shutdown(context.Background())
	s.wg.Wait()
	return err
}

// NewPrometheusSink builds a PrometheusSink and, if a port is configured,
// starts its own scrape endpoint. Each instance registers its gauges in a
// registry of its own, so several instances do not collide on gauge names.
func NewPrometheusSink(name string, config json.RawMessage) (Sink, error) {
	s := new(PrometheusSink)
	s.name = fmt.Sprintf("PrometheusSink(%s)", name)
	s.config.Path = "metrics"

	if len(config) > 0 {
		d := json.NewDecoder(bytes.NewReader(config))
		d.DisallowUnknownFields()
		if err := d.Decode(&s.config); err != nil {
			return nil, err
		}
	}

	reg := prometheus.NewRegistry()
	s.registry = reg
	s.cycle = prometheus.NewGauge(prometheus.GaugeOpts{Name: "simdriver_sim_cycle", Help: "Current simulated cycle."})
	s.iterations = prometheus.NewGauge(prometheus.GaugeOpts{Name: "simdriver_iterations", Help: "Total iterations executed."})
	s.insns = prometheus.NewGauge(prometheus.GaugeOpts{Name: "simdriver_total_user_insns_committed", Help: "Committed user instructions across all cores."})
	for _, g := range []prometheus.Collector{s.cycle, s.iterations, s.insns} {
		if err := reg.Register(g); err != nil {
			return nil, err
		}
	}

	if s.config.Port == "" {
		return s, nil
	}

	router := mux.NewRouter()
	router.Path("/" + s.config.Path).Handler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	addr := fmt.Sprintf("%s:%s", s.config.Host, s.config.Port)
	s.server = &http.Server{Addr: addr, Handler: router}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			simlog.ComponentError(s.name, "scrape server stopped:", err)
		}
	}()
	return s, nil
}
