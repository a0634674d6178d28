// Package simmessage defines the wire message the cycle engine forwards to
// statistics sinks (spec.md §4.9). It mirrors the source project's tagged
// message design: a name, a tag set, and a field set, encodable
// as an InfluxDB line-protocol line.
package simmessage

import (
	"sort"
	"time"

	influx "github.com/ClusterCockpit/cc-line-protocol/v2/lineprotocol"
	"github.com/google/uuid"
)

// RunID identifies this process's simulation run; it is included as a tag
// on every snapshot so a sink aggregating multiple driver instances (or
// successive runs against the same sink) can distinguish them.
var RunID = uuid.NewString()

// Kind distinguishes the two snapshot kinds the cycle engine emits.
type Kind int

const (
	// KindHeader is emitted exactly once, on the first cycle.
	KindHeader Kind = iota
	// KindSample is emitted every 10000 cycles (spec.md §4.5 step 4).
	KindSample
)

func (k Kind) String() string {
	if k == KindHeader {
		return "header"
	}
	return "sample"
}

// Snapshot is a point-in-time forwarding record (spec.md §3).
type Snapshot struct {
	Kind                    Kind
	Cycle                   uint64
	Iterations              uint64
	TotalUserInsnsCommitted uint64
	Tags                    map[string]string
	Fields                  map[string]any
	Time                    time.Time
}

// NewHeaderSnapshot builds the once-per-run header snapshot.
func NewHeaderSnapshot(machineName string, tm time.Time) Snapshot {
	return Snapshot{
		Kind: KindHeader,
		Tags: map[string]string{"machine": machineName, "run_id": RunID},
		Fields: map[string]any{
			"event": "header",
		},
		Time: tm,
	}
}

// NewSampleSnapshot builds a periodic snapshot, merging in any free-form
// fields the memory hierarchy contributed via its optional DumpFields method.
func NewSampleSnapshot(machineName string, cycle, iterations, totalInsns uint64, extra map[string]any, tm time.Time) Snapshot {
	fields := make(map[string]any, len(extra)+3)
	for k, v := range extra {
		fields[k] = v
	}
	fields["sim_cycle"] = cycle
	fields["iterations"] = iterations
	fields["total_user_insns_committed"] = totalInsns

	return Snapshot{
		Kind:                    KindSample,
		Cycle:                   cycle,
		Iterations:              iterations,
		TotalUserInsnsCommitted: totalInsns,
		Tags:                    map[string]string{"machine": machineName, "run_id": RunID},
		Fields:                  fields,
		Time:                    tm,
	}
}

// measurement is the line-protocol measurement name for a snapshot.
func (s Snapshot) measurement() string {
	return "simdriver_" + s.Kind.String()
}

// EncodeInto appends s to enc as a single line-protocol line. It is the
// simulator-domain analogue of the source project's EncoderAdd helper.
func EncodeInto(enc *influx.Encoder, s Snapshot) error {
	enc.StartLine(s.measurement())
	// The encoder requires tag keys in lexical order.
	tagKeys := make([]string, 0, len(s.Tags))
	for k := range s.Tags {
		tagKeys = append(tagKeys, k)
	}
	sort.Strings(tagKeys)
	for _, k := range tagKeys {
		enc.AddTag([]byte(k), []byte(s.Tags[k]))
	}
	for k, v := range s.Fields {
		lv, ok := toLineValue(v)
		if !ok {
			continue
		}
		enc.AddField([]byte(k), lv)
	}
	enc.EndLine(s.Time)
	return enc.Err()
}

func toLineValue(v any) (influx.Value, bool) {
	switch x := v.(type) {
	case int:
		return influx.IntValue(int64(x)), true
	case int64:
		return influx.IntValue(x), true
	case uint64:
		return influx.UintValue(x), true
	case float64:
		return influx.FloatValue(x), true
	case float32:
		return influx.FloatValue(float64(x)), true
	case bool:
		return influx.BoolValue(x), true
	case string:
		return influx.StringValue(x), true
	default:
		return influx.Value{}, false
	}
}
