package session

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/helixkit/p4session/internal/logger"
	"github.com/helixkit/p4session/internal/telemetry"
	"github.com/helixkit/p4session/pkg/credentials"
)

// applyCredential performs the authentication step for the session's
// credential type. The dispatch is exhaustive over the known variants;
// an unknown implementation fails fast rather than guessing a
// strategy.
func (h *Helper) applyCredential(ctx context.Context) error {
	switch cred := h.cred.(type) {
	case *credentials.Password:
		if err := h.conn.Login(ctx, cred.Password(), cred.AllHosts()); err != nil {
			h.listener.Log(fmt.Sprintf("P4: login failed '%v'", err))
			return &LoginError{User: cred.User(), Status: err.Error()}
		}

	case *credentials.Ticket:
		h.conn.SetAuthTicket(cred.Value())

	case *credentials.TicketPath:
		path := cred.Path()
		if path == "" {
			path = h.conn.TicketsFile()
		}
		h.conn.SetTicketsFile(path)

	default:
		return fmt.Errorf("%w: %T", ErrUnsupportedCredential, h.cred)
	}
	return nil
}

// queryStatus runs the silent login status command and interprets its
// output. The first informative line wins:
//
//   - "not necessary": the server needs no login from this client,
//     valid for the process lifetime
//   - "ticket expires in H hours M minutes.": a ticket with a parsed
//     absolute expiry
//   - a blank line: only trusted as "logged in" when the
//     compatibility option is set; some older servers emit an empty
//     status for valid sessions, but an empty line proves nothing
//   - anything else: not logged in
func (h *Helper) queryStatus(ctx context.Context) (Status, error) {
	ctx, span := telemetry.StartLoginStatusSpan(ctx, h.cred.User())
	defer span.End()

	lines, err := h.conn.LoginStatus(ctx)
	if err != nil {
		telemetry.RecordError(ctx, err)
		return Status{}, fmt.Errorf("query login status: %w", err)
	}
	h.lastStatus = joinStatus(lines)

	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		switch {
		case line == "":
			if h.trustEmptyStatus {
				logger.Debug("empty login status trusted", logger.User(h.cred.User()))
				return Status{Authenticated: true}, nil
			}

		case strings.Contains(line, "not necessary"):
			return Status{Authenticated: true, ExpiresAt: NeverExpires}, nil

		case strings.Contains(line, "ticket expires in"):
			expiresAt, err := ParseExpiry(line, time.Now())
			if err != nil {
				telemetry.RecordError(ctx, err)
				return Status{}, err
			}
			return Status{Authenticated: true, ExpiresAt: expiresAt}, nil
		}
	}
	return Status{}, nil
}

// joinStatus flattens status lines into the single diagnostic string
// carried by LoginError.
func joinStatus(lines []string) string {
	trimmed := make([]string, 0, len(lines))
	for _, l := range lines {
		if t := strings.TrimSpace(l); t != "" {
			trimmed = append(trimmed, t)
		}
	}
	return strings.Join(trimmed, "; ")
}
