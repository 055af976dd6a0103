package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Result is a validated analytics payload for a single time window.
type Result struct {
	Totals     Totals     `json:"totals"`
	Timeseries []Interval `json:"timeseries"`
}

// Totals aggregates the whole window.
type Totals struct {
	Since     time.Time     `json:"since"`
	Until     time.Time     `json:"until"`
	Requests  RequestTotals `json:"requests"`
	Bandwidth Counter       `json:"bandwidth"`
	Pageviews Counter       `json:"pageviews"`
	Uniques   Counter       `json:"uniques"`
}

// RequestTotals carries the request counters plus their breakdowns.
type RequestTotals struct {
	Counter
	SSL         SSLCounts `json:"ssl"`
	ContentType Counts    `json:"content_type"`
	Country     Counts    `json:"country"`
}

// SSLCounts splits requests by transport encryption.
type SSLCounts struct {
	Encrypted   int64 `json:"encrypted"`
	Unencrypted int64 `json:"unencrypted"`
}

// Counter is the {all, cached, uncached} triple. Pageviews and uniques only
// populate All.
type Counter struct {
	All      int64 `json:"all"`
	Cached   int64 `json:"cached"`
	Uncached int64 `json:"uncached"`
}

// Interval is one point of the time series.
type Interval struct {
	Since     time.Time `json:"since"`
	Until     time.Time `json:"until"`
	Requests  Counter   `json:"requests"`
	Bandwidth Counter   `json:"bandwidth"`
	Pageviews Counter   `json:"pageviews"`
	Uniques   Counter   `json:"uniques"`
}

// Metric returns the counter for m. Callers must pass a valid MetricKind.
func (i Interval) Metric(m MetricKind) Counter {
	switch m {
	case MetricRequests:
		return i.Requests
	case MetricBandwidth:
		return i.Bandwidth
	case MetricPageviews:
		return i.Pageviews
	case MetricUniques:
		return i.Uniques
	default:
		panic(fmt.Sprintf("analytics: unsupported metric %q", m))
	}
}

// Count is a single labelled value of a breakdown.
type Count struct {
	Key   string
	Value int64
}

// Counts is a string to count mapping that keeps the key order of the
// JSON object it was decoded from.
type Counts []Count

// MarshalJSON writes the entries as a JSON object in their stored order.
func (c Counts) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range c {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		fmt.Fprintf(&buf, "%d", e.Value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object, preserving key order. A null or
// empty array (some upstream APIs emit [] for empty maps) yields no entries.
func (c *Counts) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) || bytes.Equal(trimmed, []byte("[]")) {
		*c = Counts{}
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("counts: expected object, got %v", tok)
	}

	out := Counts{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("counts: expected string key, got %v", keyTok)
		}
		var value int64
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("counts: value for %q: %w", key, err)
		}
		out = append(out, Count{Key: key, Value: value})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*c = out
	return nil
}
