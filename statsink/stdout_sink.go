package statsink

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	simmessage "github.com/coreforge/simdriver/simmessage"
)

// StdoutSinkConfig configures the stdout sink. An empty OutputFile writes to
// the process's standard output.
type StdoutSinkConfig struct {
	defaultSinkConfig
	OutputFile string `json:"output_file,omitempty"`
}

// StdoutSink writes one human-readable line per snapshot. It is the
// zero-configuration default: with no configuration it always constructs
// successfully. A config with unknown fields, or an output_file that cannot
// be opened, is a construction error.
type StdoutSink struct {
	sink
	config StdoutSinkConfig
	out    io.Writer
	file   *os.File
	mu     sync.Mutex
}

func (s *StdoutSink) Write(snap simmessage.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := fmt.Fprintf(s.out, "%s cycle=%d iterations=%d total_user_insns_committed=%d tags=%v\n",
		snap.Kind, snap.Cycle, snap.Iterations, snap.TotalUserInsnsCommitted, snap.Tags)
	return err
}

func (s *StdoutSink) Close() error {
	if s.file != nil {
		return s.file.Close()
	}
	return nil
}

// NewStdoutSink builds a StdoutSink.
func NewStdoutSink(name string, config json.RawMessage) (Sink, error) {
	s := new(StdoutSink)
	s.name = fmt.Sprintf("StdoutSink(%s)", name)
	s.out = os.Stdout

	if len(config) > 0 {
		d := json.NewDecoder(bytes.NewReader(config))
		d.DisallowUnknownFields()
		if err := d.Decode(&s.config); err != nil {
			return nil, err
		}
	}

	if s.config.OutputFile != "" {
		f, err := os.OpenFile(s.config.OutputFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return nil, err
		}
		s.file = f
		s.out = f
	}
	return s, nil
}
