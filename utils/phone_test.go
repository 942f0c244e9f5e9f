package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePhone(t *testing.T) {
	cases := []struct {
		name   string
		sender string
		want   string
	}{
		{"plain digits", "254700000001", "254700000001"},
		{"leading plus kept", "+254 700 000 001", "+254700000001"},
		{"transport prefix", "whatsapp:+254700000001", "+254700000001"},
		{"domain suffix ignored", "254700000001@c.us", "254700000001"},
		{"digits after at dropped", "+1555@host123", "+1555"},
		{"inner plus dropped", "12+34", "1234"},
		{"no digits", "anonymous", ""},
		{"lone plus", "+@x", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NormalizePhone(tc.sender))
		})
	}
}

func TestHaversineKm(t *testing.T) {
	assert.InDelta(t, 0, HaversineKm(-1.28, 36.82, -1.28, 36.82), 1e-9)
	// One degree of latitude is roughly 111 km.
	assert.InDelta(t, 111.19, HaversineKm(0, 0, 1, 0), 0.1)
}
