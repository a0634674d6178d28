package statsink

import (
	"encoding/json"
	"os"
	"strings"
	"testing"
	"time"

	simmessage "github.com/coreforge/simdriver/simmessage"
)

func TestStdoutSink(t *testing.T) {
	f, err := os.CreateTemp("", "simdriver-stdout-")
	if err != nil {
		t.Fatalf("failed to create temporary file: %s", err)
	}
	defer os.Remove(f.Name())
	f.Close()

	cfg, err := json.Marshal(StdoutSinkConfig{OutputFile: f.Name()})
	if err != nil {
		t.Fatalf("failed to marshal configuration: %s", err)
	}

	s, err := NewStdoutSink("testsink", cfg)
	if err != nil {
		t.Fatalf("failed to construct stdout sink: %s", err)
	}

	snap := simmessage.NewSampleSnapshot("testmachine", 10000, 10000, 2_000_000, nil, time.Now())
	if err := s.Write(snap); err != nil {
		t.Fatalf("write failed: %s", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close failed: %s", err)
	}

	data, err := os.ReadFile(f.Name())
	if err != nil {
		t.Fatalf("failed to read output file: %s", err)
	}
	line := strings.TrimSpace(string(data))
	if !strings.Contains(line, "cycle=10000") || !strings.Contains(line, "total_user_insns_committed=2000000") {
		t.Fatalf("unexpected output line: %q", line)
	}
}
