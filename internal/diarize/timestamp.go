package diarize

import (
	"strconv"
	"strings"
)

// ParseClock parses a clock-style timestamp ("M:SS" or "H:MM:SS") into
// seconds. Any other shape, or a non-integer component, returns nil;
// callers treat nil as "timestamp unavailable".
func ParseClock(ts string) *float64 {
	parts := strings.Split(ts, ":")

	var secs int
	switch len(parts) {
	case 2:
		m, err1 := strconv.Atoi(parts[0])
		s, err2 := strconv.Atoi(parts[1])
		if err1 != nil || err2 != nil {
			return nil
		}
		secs = m*60 + s
	case 3:
		h, err1 := strconv.Atoi(parts[0])
		m, err2 := strconv.Atoi(parts[1])
		s, err3 := strconv.Atoi(parts[2])
		if err1 != nil || err2 != nil || err3 != nil {
			return nil
		}
		secs = h*3600 + m*60 + s
	default:
		return nil
	}

	f := float64(secs)
	return &f
}
