package p4

import (
	"strconv"
	"strings"
)

// ParseVersion extracts the compact release integer from a server
// version string. Both the full version identifier
// ("P4D/LINUX26X86_64/2009.2/228098") and a bare release ("2009.2",
// "2014.2.BETA") are accepted; the result is year*10+point, so
// 2009.2 becomes 20092. Unparseable input yields 0.
func ParseVersion(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if strings.Contains(s, "/") {
		for _, field := range strings.Split(s, "/") {
			if v := parseRelease(field); v != 0 {
				return v
			}
		}
		return 0
	}
	return parseRelease(s)
}

// parseRelease parses a "YYYY.R" release segment, tolerating suffixes
// like "2014.2.BETA".
func parseRelease(s string) int {
	parts := strings.SplitN(s, ".", 3)
	if len(parts) < 2 {
		return 0
	}
	year := leadingDigits(parts[0])
	point := leadingDigits(parts[1])
	if len(year) != 4 || point == "" {
		return 0
	}
	y, err := strconv.Atoi(year)
	if err != nil {
		return 0
	}
	p, err := strconv.Atoi(point)
	if err != nil {
		return 0
	}
	return y*10 + p
}

// leadingDigits returns the run of ASCII digits at the start of s.
func leadingDigits(s string) string {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	return s[:i]
}
