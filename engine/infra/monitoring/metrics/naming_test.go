package metrics

import "testing"

func TestMetricName(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "adds prefix", input: "requests_total", expected: "plexify_requests_total"},
		{name: "keeps prefixed", input: "plexify_custom_metric", expected: "plexify_custom_metric"},
		{name: "blank returns prefix", input: "", expected: "plexify_"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := MetricName(tt.input); got != tt.expected {
				t.Fatalf("MetricName(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestMetricNameWithSubsystem(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name       string
		subsystem  string
		metricName string
		expected   string
	}{
		{name: "subsystem and name", subsystem: "http", metricName: "requests_total", expected: "plexify_http_requests_total"},
		{name: "subsystem trims underscore", subsystem: "_llm_", metricName: "failures_total", expected: "plexify_llm_failures_total"},
		{name: "empty name", subsystem: "tts", metricName: "", expected: "plexify_tts"},
		{name: "already prefixed", subsystem: "", metricName: "plexify_existing_metric", expected: "plexify_existing_metric"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := MetricNameWithSubsystem(tt.subsystem, tt.metricName); got != tt.expected {
				t.Fatalf("MetricNameWithSubsystem(%q, %q) = %q, want %q", tt.subsystem, tt.metricName, got, tt.expected)
			}
		})
	}
}
