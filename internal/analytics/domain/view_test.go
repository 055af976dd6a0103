package domain

import (
	"encoding/json"
	"testing"
)

func TestParseTimeRange(t *testing.T) {
	tests := []struct {
		in   string
		want TimeRange
	}{
		{"-1440", RangeLast24Hours},
		{"-10080", RangeLastWeek},
		{"-43200", RangeLastMonth},
		{"last-24-hours", RangeLast24Hours},
		{" Week ", RangeLastWeek},
		{"month", RangeLastMonth},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTimeRange(tt.in)
			if err != nil {
				t.Fatalf("ParseTimeRange(%q) error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseTimeRange(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseTimeRange_Rejects(t *testing.T) {
	for _, in := range []string{"", "-30", "-360", "10080", "yesterday", "-1440; DROP"} {
		if _, err := ParseTimeRange(in); err == nil {
			t.Errorf("ParseTimeRange(%q) expected error, got nil", in)
		}
	}
}

func TestParseMetricKind(t *testing.T) {
	got, err := ParseMetricKind(" Bandwidth ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != MetricBandwidth {
		t.Errorf("got %q, want %q", got, MetricBandwidth)
	}

	if _, err := ParseMetricKind("threats"); err == nil {
		t.Error("expected error for unsupported metric")
	}
}

func TestTimeRange_StringAndLabel(t *testing.T) {
	if got := RangeLastWeek.String(); got != "-10080" {
		t.Errorf("String() = %q, want %q", got, "-10080")
	}
	if got := RangeLast24Hours.Label(); got != "Last 24 hours" {
		t.Errorf("Label() = %q, want %q", got, "Last 24 hours")
	}
}

func TestTimeRange_JSON(t *testing.T) {
	data, err := json.Marshal(struct {
		R TimeRange `json:"r"`
	}{RangeLastMonth})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"r":"-43200"}` {
		t.Errorf("marshal = %s", data)
	}

	var out struct {
		R TimeRange `json:"r"`
	}
	if err := json.Unmarshal([]byte(`{"r":"-720"}`), &out); err == nil {
		t.Error("expected unmarshal to reject unsupported range")
	}
}

func TestMetricKind_HasCacheSplit(t *testing.T) {
	want := map[MetricKind]bool{
		MetricRequests:  true,
		MetricBandwidth: true,
		MetricPageviews: false,
		MetricUniques:   false,
	}
	for m, split := range want {
		if m.HasCacheSplit() != split {
			t.Errorf("%s.HasCacheSplit() = %v, want %v", m, !split, split)
		}
	}
}
