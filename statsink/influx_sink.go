package statsink

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	influxapi "github.com/influxdata/influxdb-client-go/v2/api"

	simmessage "github.com/coreforge/simdriver/simmessage"
)

// InfluxSinkConfig configures the InfluxDB v2 sink.
type InfluxSinkConfig struct {
	defaultSinkConfig
	Host         string `json:"host"`
	Port         string `json:"port"`
	Organization string `json:"organization"`
	Bucket       string `json:"bucket"`
	Token        string `json:"token"`
	SSL          bool   `json:"ssl,omitempty"`
}

// InfluxSink writes snapshots as points to an InfluxDB v2 bucket, one point
// per forwarded Snapshot using the blocking write API (the cadence of
// snapshots, one header and then one sample every 10000 cycles, is far below
// what batching exists to amortize).
type InfluxSink struct {
	sink
	config   InfluxSinkConfig
	client   influxdb2.Client
	writeAPI influxapi.WriteAPIBlocking
}

func (s *InfluxSink) Write(snap simmessage.Snapshot) error {
	fields := make(map[string]any, len(snap.Fields))
	for k, v := range snap.Fields {
		fields[k] = v
	}
	p := influxdb2.NewPoint(s.measurement(snap), snap.Tags, fields, snap.Time)
	return s.writeAPI.WritePoint(context.Background(), p)
}

func (s *InfluxSink) measurement(snap simmessage.Snapshot) string {
	return "simdriver_" + snap.Kind.String()
}

func (s *InfluxSink) Close() error {
	s.client.Close()
	return nil
}

// NewInfluxSink builds an InfluxSink.
func NewInfluxSink(name string, config json.RawMessage) (Sink, error) {
	s := new(InfluxSink)
	s.name = fmt.Sprintf("InfluxSink(%s)", name)

	if len(config) > 0 {
		d := json.NewDecoder(bytes.NewReader(config))
		d.DisallowUnknownFields()
		if err := d.Decode(&s.config); err != nil {
			return nil, err
		}
	}
	if s.config.Host == "" || s.config.Port == "" || s.config.Bucket == "" {
		return nil, errors.New("influxdb sink requires host, port and bucket")
	}

	scheme := "http"
	if s.config.SSL {
		scheme = "https"
	}
	url := fmt.Sprintf("%s://%s:%s", scheme, s.config.Host, s.config.Port)

	s.client = influxdb2.NewClient(url, s.config.Token)
	s.writeAPI = s.client.WriteAPIBlocking(s.config.Organization, s.config.Bucket)
	return s, nil
}
