package session

import "testing"

func TestMetricsHealth(t *testing.T) {
	tests := []struct {
		name string
		m    Metrics
		want string
	}{
		{"fresh session", Metrics{}, HealthNoSpeech},
		{"normal operation", Metrics{SegmentsCaptured: 3, SegmentsAccepted: 3, CapturedSeconds: 20}, HealthOK},
		{
			"engine failing with plenty of audio",
			Metrics{SegmentsCaptured: 4, TranscribeFailures: 4, CapturedSeconds: 24},
			HealthTranscriptionFailing,
		},
		{
			"decoder failing",
			Metrics{SegmentsCaptured: 3, DecodeFailures: 3},
			HealthDecodeFailing,
		},
		{
			"little audio yet despite a failure",
			Metrics{SegmentsCaptured: 1, TranscribeFailures: 1, CapturedSeconds: 2},
			HealthOK,
		},
		{
			"failures before the first success stop mattering after one",
			Metrics{SegmentsCaptured: 5, SegmentsAccepted: 1, TranscribeFailures: 4, CapturedSeconds: 30},
			HealthOK,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.m.Health(); got != tt.want {
				t.Fatalf("Health() = %q, want %q", got, tt.want)
			}
		})
	}
}
