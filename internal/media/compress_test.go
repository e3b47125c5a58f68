package media

import (
	"errors"
	"testing"
)

func TestPlanBitrate(t *testing.T) {
	t.Run("long_audio_clamps_to_floor", func(t *testing.T) {
		// 24MB over 3 hours would be ~18kbps; clamp to 32.
		kbps, err := PlanBitrate(3*3600, 24)
		if err != nil {
			t.Fatalf("PlanBitrate: %v", err)
		}
		if kbps != MinBitrateKbps {
			t.Errorf("kbps = %d, want %d", kbps, MinBitrateKbps)
		}
	})

	t.Run("short_audio_clamps_to_ceiling", func(t *testing.T) {
		// 24MB over 60s would be ~3276kbps; clamp to 128.
		kbps, err := PlanBitrate(60, 24)
		if err != nil {
			t.Fatalf("PlanBitrate: %v", err)
		}
		if kbps != MaxBitrateKbps {
			t.Errorf("kbps = %d, want %d", kbps, MaxBitrateKbps)
		}
	})

	t.Run("midrange", func(t *testing.T) {
		// 24MB over 40 minutes: 24*8*1024/2400 = 81kbps.
		kbps, err := PlanBitrate(2400, 24)
		if err != nil {
			t.Fatalf("PlanBitrate: %v", err)
		}
		if kbps != 81 {
			t.Errorf("kbps = %d, want 81", kbps)
		}
	})

	t.Run("bounds_hold_for_any_positive_duration", func(t *testing.T) {
		for _, d := range []float64{0.5, 1, 30, 600, 7200, 86400} {
			kbps, err := PlanBitrate(d, 24)
			if err != nil {
				t.Fatalf("PlanBitrate(%v): %v", d, err)
			}
			if kbps < MinBitrateKbps || kbps > MaxBitrateKbps {
				t.Errorf("PlanBitrate(%v) = %d, outside [%d, %d]", d, kbps, MinBitrateKbps, MaxBitrateKbps)
			}
		}
	})

	t.Run("unknown_duration_fails", func(t *testing.T) {
		_, err := PlanBitrate(0, 24)
		var se *SizeError
		if !errors.As(err, &se) {
			t.Errorf("expected SizeError, got %v", err)
		}
	})
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "?"},
		{-5, "?"},
		{45, "45s"},
		{185, "3m05s"},
		{4320, "1h12m"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.in); got != tt.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
