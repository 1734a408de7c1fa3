package base

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParams_Normalize(t *testing.T) {
	tests := []struct {
		name string
		in   Params
		want Params
	}{
		{"defaults applied", Params{}, Params{Skip: 0, Take: DefaultTake}},
		{"negative skip clamped", Params{Skip: -5, Take: 10}, Params{Skip: 0, Take: 10}},
		{"negative take uses default", Params{Skip: 10, Take: -1}, Params{Skip: 10, Take: DefaultTake}},
		{"take capped at max", Params{Take: 500}, Params{Take: MaxTake}},
		{"take at max passes", Params{Take: MaxTake}, Params{Take: MaxTake}},
		{"normal values untouched", Params{Skip: 60, Take: 30}, Params{Skip: 60, Take: 30}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Normalize(DefaultTake))
		})
	}
}

func TestParams_NormalizePhotoDefault(t *testing.T) {
	got := Params{}.Normalize(DefaultPhotoTake)
	assert.Equal(t, DefaultPhotoTake, got.Take)
}

func TestHasMore(t *testing.T) {
	// Full page with rows remaining.
	assert.True(t, HasMore(0, 30, 100))
	// Last partial page.
	assert.False(t, HasMore(90, 10, 100))
	// Exactly consumed.
	assert.False(t, HasMore(70, 30, 100))
	// Empty result set.
	assert.False(t, HasMore(0, 0, 0))
	// Skip past the end.
	assert.False(t, HasMore(200, 0, 100))
}
