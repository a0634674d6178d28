package statsink

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	qdb "github.com/questdb/go-questdb-client/v4"

	simmessage "github.com/coreforge/simdriver/simmessage"
)

// QuestSinkConfig configures the QuestDB ILP-over-HTTP sink, an alternative
// time-series destination to InfluxSink for deployments that already run a
// QuestDB instance.
type QuestSinkConfig struct {
	defaultSinkConfig
	Host string `json:"host"`
	Port string `json:"port"`
}

// QuestSink writes snapshots to QuestDB using its native line-sender client.
type QuestSink struct {
	sink
	config QuestSinkConfig
	sender qdb.LineSender
}

func (s *QuestSink) Write(snap simmessage.Snapshot) error {
	ctx := context.Background()
	line := s.sender.Table("simdriver_" + snap.Kind.String())
	for k, v := range snap.Tags {
		line = line.Symbol(k, v)
	}
	for k, v := range snap.Fields {
		switch x := v.(type) {
		case uint64:
			line = line.Int64Column(k, int64(x))
		case int64:
			line = line.Int64Column(k, x)
		case int:
			line = line.Int64Column(k, int64(x))
		case float64:
			line = line.Float64Column(k, x)
		case string:
			line = line.StringColumn(k, x)
		case bool:
			line = line.BoolColumn(k, x)
		}
	}
	if err := line.At(ctx, snap.Time); err != nil {
		return err
	}
	return s.sender.Flush(ctx)
}

func (s *QuestSink) Close() error {
	return s.sender.Close(context.Background())
}

// NewQuestSink builds a QuestSink.
func NewQuestSink(name string, config json.RawMessage) (Sink, error) {
	s := new(QuestSink)
	s.name = fmt.Sprintf("QuestSink(%s)", name)

	if len(config) > 0 {
		d := json.NewDecoder(bytes.NewReader(config))
		d.DisallowUnknownFields()
		if err := d.Decode(&s.config); err != nil {
			return nil, err
		}
	}
	if s.config.Host == "" || s.config.Port == "" {
		return nil, errors.New("questdb sink requires host and port")
	}

	addr := fmt.Sprintf("%s:%s", s.config.Host, s.config.Port)
	sender, err := qdb.NewLineSender(context.Background(), qdb.WithHttp(), qdb.WithAddress(addr))
	if err != nil {
		return nil, err
	}
	s.sender = sender
	return s, nil
}
