package filters

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsoDate(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want string
	}{
		{"utc midnight", time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), "2024-01-03"},
		{"late evening east of utc", time.Date(2024, 1, 3, 1, 30, 0, 0, time.FixedZone("CET", 3600)), "2024-01-03"},
		{"crosses day boundary", time.Date(2024, 1, 3, 0, 30, 0, 0, time.FixedZone("CET", 3600)), "2024-01-02"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsoDate(tt.in))
		})
	}
}

func TestReadableDate(t *testing.T) {
	assert.Equal(t, "Jan 03, 2024", ReadableDate(time.Date(2024, 1, 3, 12, 0, 0, 0, time.UTC)))
	assert.Equal(t, "Dec 31, 2023", ReadableDate(time.Date(2024, 1, 1, 0, 30, 0, 0, time.FixedZone("X", 3600))))
}

func TestURLSafe(t *testing.T) {
	tests := map[string]string{
		"travel":        "travel",
		"New York":      "New%20York",
		"c++":           "c%2B%2B",
		"a/b":           "a%2Fb",
		"café":          "caf%C3%A9",
		"it's (fine)!":  "it's%20(fine)!",
		"q?x=1&y=2#top": "q%3Fx%3D1%26y%3D2%23top",
		"":              "",
	}
	for in, want := range tests {
		assert.Equal(t, want, URLSafe(in), "URLSafe(%q)", in)
	}
}

func TestYear(t *testing.T) {
	assert.Equal(t, time.Now().Year(), Year())
}
