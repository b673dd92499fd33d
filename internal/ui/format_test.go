package ui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bamsammich/dupes/internal/event"
)

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "0 B", FormatBytes(0))
	assert.Equal(t, "512 B", FormatBytes(512))
	assert.Equal(t, "1.0 KiB", FormatBytes(1024))
	assert.Equal(t, "1.5 MiB", FormatBytes(3*512*1024))
	assert.Equal(t, "-2.0 KiB", FormatBytes(-2048))
}

func TestFormatRate(t *testing.T) {
	tests := []struct {
		input float64
		want  string
	}{
		{0, "0 B/s"},
		{-1, "0 B/s"},
		{512, "512 B/s"},
		{1.5 * 1024 * 1024, "1.5 MiB/s"},
		{100 * 1024, "100 KiB/s"},
		{15 * 1024, "15 KiB/s"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatRate(tt.input))
		})
	}
}

func TestFormatCount(t *testing.T) {
	tests := []struct {
		input int64
		want  string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{14302, "14,302"},
		{-1000, "-1,000"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatCount(tt.input))
		})
	}
}

func TestProgressBar(t *testing.T) {
	assert.Equal(t, "▪▪▪▪▪□□□□□", ProgressBar(0.5, 10))
	assert.Equal(t, "□□□□□□□□□□", ProgressBar(0, 10))
	assert.Equal(t, "▪▪▪▪▪▪▪▪▪▪", ProgressBar(1, 10))
	assert.Equal(t, "", ProgressBar(0.5, 0))
	assert.Equal(t, "▪▪▪▪▪▪▪▪▪▪", ProgressBar(1.5, 10))
	assert.Equal(t, "□□□□", ProgressBar(-1, 4))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0s", FormatDuration(0))
	assert.Equal(t, "30s", FormatDuration(30*time.Second))
	assert.Equal(t, "3m 17s", FormatDuration(3*time.Minute+17*time.Second))
	assert.Equal(t, "1h 02m 03s", FormatDuration(time.Hour+2*time.Minute+3*time.Second))
}

func TestPhaseLabel(t *testing.T) {
	assert.Equal(t, "scanning", PhaseLabel(event.Scanning))
	assert.Equal(t, "partial hash", PhaseLabel(event.PartialHash))
	assert.Equal(t, "full hash", PhaseLabel(event.FullHash))
	assert.Equal(t, "deleting", PhaseLabel(event.Deleting))
	assert.Equal(t, "unknown", PhaseLabel(event.Phase(99)))
}

func TestFraction(t *testing.T) {
	assert.Zero(t, Fraction(event.Progress{Phase: event.Scanning, Current: 100}))
	assert.InDelta(t, 0.25, Fraction(event.Progress{Current: 10, Total: 40}), 1e-9)
	assert.InDelta(t, 1.0, Fraction(event.Progress{Current: 50, Total: 40}), 1e-9)
}

func TestFitWidth(t *testing.T) {
	cases := []struct {
		name  string
		in    string
		width int
		want  string
	}{
		{"fits", "scanning", 8, "scanning"},
		{"cut", "scanning 42 files", 10, "scanning …"},
		{"multibyte", "▪▪▪□□□", 4, "▪▪▪…"},
		{"styled fits", ansiDim + "ab" + ansiReset, 2, ansiDim + "ab" + ansiReset},
		{"styled cut", "x " + ansiDim + "skipped 3" + ansiReset, 5, "x " + ansiDim + "sk…" + ansiReset},
		{"zero width", "abc", 0, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FitWidth(tc.in, tc.width))
		})
	}
}
