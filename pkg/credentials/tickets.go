package credentials

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// TicketEntry is one line of a tickets file.
type TicketEntry struct {
	// Address is the server address the ticket was issued for, in
	// host:port form without a protocol prefix.
	Address string

	// User is the ticket owner.
	User string

	// Value is the raw ticket value.
	Value string
}

// ParseTickets reads tickets-file lines of the form
//
//	host:port=user:ticketvalue
//
// from r. Blank and malformed lines are skipped; the server writes
// this file and occasionally leaves partial lines behind.
func ParseTickets(r io.Reader) ([]TicketEntry, error) {
	var entries []TicketEntry
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		entry, ok := parseTicketLine(line)
		if !ok {
			continue
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read tickets: %w", err)
	}
	return entries, nil
}

// parseTicketLine splits one tickets line. The address may itself
// contain colons, so the line splits on the first '='; the ticket
// value never contains a colon, so the remainder splits on the last.
func parseTicketLine(line string) (TicketEntry, bool) {
	eq := strings.Index(line, "=")
	if eq <= 0 {
		return TicketEntry{}, false
	}
	addr := strings.TrimSpace(line[:eq])
	rest := line[eq+1:]

	colon := strings.LastIndex(rest, ":")
	if colon <= 0 || colon == len(rest)-1 {
		return TicketEntry{}, false
	}
	return TicketEntry{
		Address: addr,
		User:    strings.TrimSpace(rest[:colon]),
		Value:   strings.TrimSpace(rest[colon+1:]),
	}, true
}

// ReadTicketsFile parses the tickets file at path.
func ReadTicketsFile(path string) ([]TicketEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open tickets file: %w", err)
	}
	defer f.Close()
	return ParseTickets(f)
}

// FindTicket returns the ticket value for user on the server at
// address, if present. The address comparison ignores any protocol
// prefix ("ssl:", "tcp:", ...) since tickets files store bare
// host:port addresses.
func FindTicket(entries []TicketEntry, address, user string) (string, bool) {
	want := StripProtocol(address)
	for _, e := range entries {
		if e.User == user && StripProtocol(e.Address) == want {
			return e.Value, true
		}
	}
	return "", false
}

// protocolPrefixes are the P4PORT transport prefixes a server address
// may carry.
var protocolPrefixes = []string{
	"ssl64:", "ssl46:", "ssl6:", "ssl4:", "ssl:",
	"tcp64:", "tcp46:", "tcp6:", "tcp4:", "tcp:",
}

// StripProtocol removes a leading P4PORT transport prefix from a
// server address, leaving bare host:port.
func StripProtocol(address string) string {
	for _, p := range protocolPrefixes {
		if strings.HasPrefix(address, p) {
			return address[len(p):]
		}
	}
	return address
}
