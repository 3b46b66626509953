package gps

import "strings"

// splitSentence splits one NMEA line into its tag ("GPRMC", "GNGGA", ...) and
// comma-separated fields. The leading '$' and any trailing "*hh" checksum are
// stripped; the checksum is not verified. Receivers on noisy serial links emit
// occasional corrupt checksums and dropping those lines would starve the clock
// for no benefit, so validation happens per field instead.
func splitSentence(line string) (tag string, fields []string, ok bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "$") {
		return "", nil, false
	}
	payload := line[1:]
	if star := strings.LastIndexByte(payload, '*'); star >= 0 {
		payload = payload[:star]
	}
	fields = strings.Split(payload, ",")
	tag = strings.ToUpper(fields[0])
	if len(tag) < 5 {
		return "", nil, false
	}
	return tag, fields, true
}

// field returns fields[i] when the sentence is long enough, else absent.
func field(fields []string, i int) (string, bool) {
	if i < 0 || i >= len(fields) {
		return "", false
	}
	return strings.TrimSpace(fields[i]), true
}
