package statsink

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	nats "github.com/nats-io/nats.go"
	server "github.com/nats-io/nats-server/v2/server"

	simmessage "github.com/coreforge/simdriver/simmessage"
)

func TestNatsSink(t *testing.T) {
	opts := &server.Options{Host: "localhost", Port: 14222}
	ns, err := server.NewServer(opts)
	if err != nil {
		t.Fatalf("nats server cannot be created: %s", err)
	}
	go ns.Start()
	defer ns.Shutdown()

	if !ns.ReadyForConnections(4 * time.Second) {
		t.Fatal("nats server not ready for connections")
	}

	uri := fmt.Sprintf("nats://%s:%d", opts.Host, opts.Port)
	sub, err := nats.Connect(uri)
	if err != nil {
		t.Fatalf("failed to connect test subscriber: %s", err)
	}
	defer sub.Close()

	received := make(chan string, 1)
	if _, err := sub.Subscribe("simdriver.test", func(msg *nats.Msg) {
		received <- string(msg.Data)
	}); err != nil {
		t.Fatalf("failed to subscribe: %s", err)
	}

	cfg, err := json.Marshal(NatsSinkConfig{Host: "localhost", Port: "14222", Subject: "simdriver.test"})
	if err != nil {
		t.Fatalf("failed to marshal configuration: %s", err)
	}
	s, err := NewNatsSink("testsink", cfg)
	if err != nil {
		t.Fatalf("failed to construct nats sink: %s", err)
	}
	defer s.Close()

	if err := s.Write(simmessage.NewHeaderSnapshot("testmachine", time.Now())); err != nil {
		t.Fatalf("write failed: %s", err)
	}

	select {
	case line := <-received:
		if !strings.Contains(line, "simdriver_header") {
			t.Fatalf("unexpected line-protocol output: %q", line)
		}
	case <-time.After(4 * time.Second):
		t.Fatal("timed out waiting for published message")
	}
}
