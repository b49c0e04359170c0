package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-mud-client/internal/api"
	"github.com/pixil98/go-mud-client/internal/messaging"
)

// bundleId keys the persisted auth record.
const bundleId = "auth"

// Session is the authenticated player context. The exported fields are what
// gets persisted between runs.
type Session struct {
	Key     string            `json:"key"`
	Token   string            `json:"token"`
	Headers map[string]string `json:"headers"`
}

func (s *Session) Validate() error {
	el := errors.NewErrorList()

	if s.Key == "" {
		el.Add(fmt.Errorf("key must be set"))
	}
	if s.Token == "" {
		el.Add(fmt.Errorf("token must be set"))
	}

	return el.Err()
}

// Authenticated reports whether a login has succeeded or been restored.
func (s *Store) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.Token != ""
}

// EvaluatorKey returns the player key commands are evaluated as.
func (s *Store) EvaluatorKey() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.Key
}

// Headers returns a copy of the session's request headers.
func (s *Store) Headers() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()

	headers := map[string]string{}
	for k, v := range s.session.Headers {
		headers[k] = v
	}
	return headers
}

// Restore hydrates the session from the persisted bundle, if one exists.
// Absent or malformed bundles leave the store unauthenticated; neither is an
// error.
func (s *Store) Restore() {
	if s.bundles == nil {
		return
	}
	session, ok := s.bundles.Load()
	if !ok {
		return
	}

	s.mu.Lock()
	s.session = *session
	token := s.session.Token
	s.mu.Unlock()

	slog.Info("restored session", "key", session.Key)
	if s.channel != nil {
		s.channel.Connect(token)
	}
}

// Login authenticates against the server. When an invite token and secret
// pair is supplied the redeem-invite path is taken, which also creates the
// player. On success the session is recorded, persisted, and the realtime
// channel started. On failure no state changes.
func (s *Store) Login(ctx context.Context, username, password, inviteToken, inviteSecret string) error {
	var auth *api.Auth
	var err error
	if inviteToken != "" && inviteSecret != "" {
		auth, err = s.api.RedeemInvite(ctx, username, password, inviteToken, inviteSecret)
	} else {
		auth, err = s.api.Login(ctx, username, password)
	}
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.session = Session{
		Key:   auth.Key,
		Token: auth.Token,
		Headers: map[string]string{
			"Authorization": fmt.Sprintf("Bearer %s", auth.Token),
		},
	}
	session := s.session
	s.mu.Unlock()

	if s.bundles != nil {
		if err := s.bundles.Save(bundleId, &session); err != nil {
			// The login itself worked; losing persistence only costs the
			// next restart a fresh login.
			slog.Warn("persisting session", "error", err)
		}
	}

	if s.channel != nil {
		s.channel.Connect(session.Token)
	}

	return nil
}

// Logout stops the realtime channel before any state is cleared, so a late
// push can't re-populate the cache with stale data, then clears the session
// and removes the persisted bundle. Safe to call when not logged in.
func (s *Store) Logout() {
	if s.channel != nil {
		s.channel.Disconnect()
	}

	s.mu.Lock()
	s.session = Session{}
	s.connected = false
	s.mu.Unlock()

	if s.bundles != nil {
		if err := s.bundles.Delete(); err != nil {
			slog.Warn("removing session bundle", "error", err)
		}
	}
}

// HandleConnected marks the realtime channel up. Called by the channel each
// time the transport (re)establishes.
func (s *Store) HandleConnected() {
	s.mu.Lock()
	s.connected = true
	s.mu.Unlock()

	s.publish(messaging.SubjectPresence, messaging.Encode(messaging.PresenceEvent{Connected: true}))
}

// HandleDisconnected marks the realtime channel down.
func (s *Store) HandleDisconnected() {
	s.mu.Lock()
	s.connected = false
	s.mu.Unlock()

	s.publish(messaging.SubjectPresence, messaging.Encode(messaging.PresenceEvent{Connected: false}))
}
