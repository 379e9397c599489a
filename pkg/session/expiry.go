package session

import (
	"regexp"
	"strconv"
	"time"
)

// expiryPattern matches the ticket lifetime announcement in login
// status output, e.g.
//
//	User alice ticket expires in 11 hours 38 minutes.
//
// The pattern must cover the whole line; trailing garbage means the
// line is not the announcement we think it is.
var expiryPattern = regexp.MustCompile(`^.* expires in (\d+) hours (\d+) minutes\.$`)

// ParseExpiry converts a ticket status line into the absolute expiry
// instant relative to now. A line that does not match the announced
// format returns an *ExpiryParseError; callers must surface it rather
// than guess at a lifetime.
func ParseExpiry(line string, now time.Time) (time.Time, error) {
	m := expiryPattern.FindStringSubmatch(line)
	if m == nil {
		return time.Time{}, &ExpiryParseError{Line: line}
	}

	hours, err := strconv.Atoi(m[1])
	if err != nil {
		return time.Time{}, &ExpiryParseError{Line: line, Err: err}
	}
	minutes, err := strconv.Atoi(m[2])
	if err != nil {
		return time.Time{}, &ExpiryParseError{Line: line, Err: err}
	}

	return now.Add(time.Duration(hours)*time.Hour + time.Duration(minutes)*time.Minute), nil
}
