package statsink

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	nats "github.com/nats-io/nats.go"

	influx "github.com/ClusterCockpit/cc-line-protocol/v2/lineprotocol"
	simmessage "github.com/coreforge/simdriver/simmessage"
)

// NatsSinkConfig configures the NATS sink.
type NatsSinkConfig struct {
	defaultSinkConfig
	Host     string `json:"host"`
	Port     string `json:"port"`
	Subject  string `json:"subject"`
	User     string `json:"user,omitempty"`
	Password string `json:"password,omitempty"`
}

// NatsSink publishes each snapshot as a line-protocol-encoded NATS message,
// letting any number of external observers subscribe without the driver
// knowing about them.
type NatsSink struct {
	sink
	config  NatsSinkConfig
	conn    *nats.Conn
	mu      sync.Mutex
	encoder influx.Encoder
}

func (s *NatsSink) Write(snap simmessage.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.encoder.Reset()
	if err := simmessage.EncodeInto(&s.encoder, snap); err != nil {
		return fmt.Errorf("encoding failed: %w", err)
	}
	return s.conn.Publish(s.config.Subject, s.encoder.Bytes())
}

func (s *NatsSink) Close() error {
	if s.conn == nil {
		return nil
	}
	if err := s.conn.Flush(); err != nil {
		return err
	}
	s.conn.Close()
	return nil
}

// NewNatsSink builds a NatsSink.
func NewNatsSink(name string, config json.RawMessage) (Sink, error) {
	s := new(NatsSink)
	s.name = fmt.Sprintf("NatsSink(%s)", name)

	if len(config) > 0 {
		d := json.NewDecoder(bytes.NewReader(config))
		d.DisallowUnknownFields()
		if err := d.Decode(&s.config); err != nil {
			return nil, err
		}
	}
	if s.config.Subject == "" {
		return nil, fmt.Errorf("nats sink requires a subject")
	}

	uri := fmt.Sprintf("nats://%s:%s", s.config.Host, s.config.Port)
	var opts []nats.Option
	if s.config.User != "" {
		opts = append(opts, nats.UserInfo(s.config.User, s.config.Password))
	}
	conn, err := nats.Connect(uri, opts...)
	if err != nil {
		return nil, err
	}
	s.conn = conn
	return s, nil
}
