package qris

import (
	"fmt"
	"strings"
)

const (
	crcPoly = 0x1021
	crcInit = 0xFFFF

	// checksumPrefix is tag 63 with its fixed length of 4.
	checksumPrefix = TagChecksum + "04"
)

// Checksum computes CRC-16/CCITT-FALSE over data.
func Checksum(data []byte) uint16 {
	crc := uint16(crcInit)
	for _, b := range data {
		crc ^= uint16(b) << 8
		for i := 0; i < 8; i++ {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ crcPoly
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}

// CRC16 returns the checksum of s as four uppercase hex digits.
func CRC16(s string) string {
	return fmt.Sprintf("%04X", Checksum([]byte(s)))
}

// ValidateChecksum reports whether payload ends in a tag-63 field whose value
// matches the CRC of everything preceding that value.
func ValidateChecksum(payload string) bool {
	if len(payload) < len(checksumPrefix)+4 {
		return false
	}
	body, sum := payload[:len(payload)-4], payload[len(payload)-4:]
	if !strings.HasSuffix(body, checksumPrefix) {
		return false
	}
	return CRC16(body) == sum
}

// seal appends the checksum field to body.
func seal(body string) string {
	signed := body + checksumPrefix
	return signed + CRC16(signed)
}
