package qris

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

const baseTemplate = "00020101021126670016COM.NOBUBANK.WWW01189360050300000879140214353153527368570303UMI51440014ID.CO.QRIS.WWW0215ID20232679645180303UMI5204481253033605802ID5920MEFZ STORE OK11724136006BEKASI61051711162070703A016304DE60"

func TestCRC16_KnownVectors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty input keeps initial register", in: "", want: "FFFF"},
		{name: "CCITT-FALSE check value", in: "123456789", want: "29B1"},
		{name: "base template body", in: baseTemplate[:len(baseTemplate)-4], want: "DE60"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CRC16(tt.in))
		})
	}
}

func TestCRC16_Format(t *testing.T) {
	hex4 := regexp.MustCompile(`^[0-9A-F]{4}$`)
	inputs := []string{"", "a", "0", "6304", "ID", baseTemplate, "\x00\x00\x00"}

	for _, in := range inputs {
		got := CRC16(in)
		assert.Regexp(t, hex4, got, "input %q", in)
		assert.Equal(t, got, CRC16(in), "checksum must be deterministic")
	}
}

func TestChecksum_MasksEveryStep(t *testing.T) {
	// A long run of 0xFF drives the register through many high-bit shifts.
	data := make([]byte, 4096)
	for i := range data {
		data[i] = 0xFF
	}
	sum := Checksum(data)
	assert.Equal(t, sum, Checksum(data))
	assert.Len(t, CRC16(string(data)), 4)
}

func TestValidateChecksum(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    bool
	}{
		{name: "base template", payload: baseTemplate, want: true},
		{name: "tampered merchant name", payload: strings.Replace(baseTemplate, "MEFZ", "MEFY", 1), want: false},
		{name: "lowercase checksum", payload: baseTemplate[:len(baseTemplate)-4] + "de60", want: false},
		{name: "no checksum tag", payload: "0002015802ID", want: false},
		{name: "too short", payload: "6304", want: false},
		{name: "empty", payload: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateChecksum(tt.payload))
		})
	}
}
