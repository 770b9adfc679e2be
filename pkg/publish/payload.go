package publish

import (
	"encoding/json"
	"fmt"

	"github.com/itohio/gorain/pkg/monitor"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	EncodingJSON    = "json"
	EncodingMsgpack = "msgpack"
)

// Payload is the machine-readable form of an update.
type Payload struct {
	Timestamp       int64   `json:"timestamp" msgpack:"timestamp"` // unix milliseconds
	Category        string  `json:"category" msgpack:"category"`
	Percent         int     `json:"percent" msgpack:"percent"`
	Trend           string  `json:"trend" msgpack:"trend"`
	FilteredAverage int     `json:"filtered_average" msgpack:"filtered_average"`
	Baseline        int     `json:"baseline" msgpack:"baseline"`
	Median          int     `json:"median" msgpack:"median"`
	StdDev          float32 `json:"stddev" msgpack:"stddev"`
	ValidCount      int     `json:"valid_count" msgpack:"valid_count"`
	UptimeMs        int64   `json:"uptime_ms" msgpack:"uptime_ms"`
}

// NewPayload converts an update into a Payload.
func NewPayload(u monitor.Update) Payload {
	return Payload{
		Timestamp:       u.Timestamp.UnixMilli(),
		Category:        u.Category.String(),
		Percent:         u.Percent,
		Trend:           u.Trend.String(),
		FilteredAverage: u.Filter.FilteredAverage,
		Baseline:        u.Baseline,
		Median:          u.Filter.Median,
		StdDev:          u.Filter.StdDev,
		ValidCount:      u.Filter.ValidCount,
		UptimeMs:        u.Uptime.Milliseconds(),
	}
}

// Encode marshals p with the named encoding.
func Encode(p Payload, encoding string) ([]byte, error) {
	switch encoding {
	case "", EncodingJSON:
		data, err := json.Marshal(p)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal json payload: %w", err)
		}
		return data, nil
	case EncodingMsgpack:
		data, err := msgpack.Marshal(p)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal msgpack payload: %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("unknown payload encoding %q", encoding)
	}
}
