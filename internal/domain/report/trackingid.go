package report

import (
	"crypto/rand"
	"fmt"
)

const (
	trackingPrefix = "CS-"
	trackingLength = 10
	// 32 symbols without 0/O/1/I so ids survive being read aloud
	trackingAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

// NewTrackingID returns a fresh human-shareable report id, e.g. CS-7KQ2MXRT9A
func NewTrackingID() (string, error) {
	buf := make([]byte, trackingLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	out := make([]byte, trackingLength)
	for i, b := range buf {
		out[i] = trackingAlphabet[int(b)%len(trackingAlphabet)]
	}
	return trackingPrefix + string(out), nil
}

// IsTrackingID reports whether s has the shape of a tracking id
func IsTrackingID(s string) bool {
	if len(s) != len(trackingPrefix)+trackingLength || s[:len(trackingPrefix)] != trackingPrefix {
		return false
	}
	for i := len(trackingPrefix); i < len(s); i++ {
		found := false
		for j := 0; j < len(trackingAlphabet); j++ {
			if s[i] == trackingAlphabet[j] {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
