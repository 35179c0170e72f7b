package auth

import (
	"errors"
	"net/http"
	"strings"

	"studybud/internal/config"
	"studybud/internal/database"
	"studybud/pkg/logger"

	"github.com/gorilla/sessions"
)

const (
	sessionName = "studybud-session"
	tokenKey    = "token"
)

// Sessions keeps the signed session token in a cookie-backed session and
// resolves it back to the current user on each request.
type Sessions struct {
	store   sessions.Store
	service *Service
}

func NewSessions(store sessions.Store, service *Service) *Sessions {
	return &Sessions{store: store, service: service}
}

// NewCookieStore builds the cookie store from configuration. The cookie
// lives as long as the token inside it.
func NewCookieStore(cfg *config.Config) *sessions.CookieStore {
	store := sessions.NewCookieStore(cfg.Session.Secret)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.JWT.ExpiresIn.Seconds()),
		HttpOnly: true,
		Secure:   cfg.Session.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

func (s *Sessions) session(r *http.Request) *sessions.Session {
	session, err := s.store.Get(r, sessionName)
	if err != nil {
		// a cookie signed with an old key decodes with an error but still
		// yields a fresh session we can overwrite
		logger.Debug("Discarding unreadable session: %v", err)
	}
	return session
}

// Establish stores token in the session cookie.
func (s *Sessions) Establish(w http.ResponseWriter, r *http.Request, token string) error {
	session := s.session(r)
	session.Values[tokenKey] = token
	return session.Save(r, w)
}

// Destroy expires the session cookie. It is safe without a session.
func (s *Sessions) Destroy(w http.ResponseWriter, r *http.Request) error {
	session := s.session(r)
	delete(session.Values, tokenKey)
	session.Options.MaxAge = -1
	return session.Save(r, w)
}

// AddFlash queues a one-shot notice shown on the next rendered page.
func (s *Sessions) AddFlash(w http.ResponseWriter, r *http.Request, message string) error {
	session := s.session(r)
	session.AddFlash(message)
	return session.Save(r, w)
}

// Flashes drains queued notices.
func (s *Sessions) Flashes(w http.ResponseWriter, r *http.Request) []string {
	session := s.session(r)
	raw := session.Flashes()
	if len(raw) == 0 {
		return nil
	}
	if err := session.Save(r, w); err != nil {
		logger.Error("Error clearing flashes: %v", err)
	}

	messages := make([]string, 0, len(raw))
	for _, v := range raw {
		if msg, ok := v.(string); ok {
			messages = append(messages, msg)
		}
	}
	return messages
}

// LoadUser resolves the current user from the session token, or from an
// "Authorization: Bearer" header, and stores it in the request context.
// Requests without a valid token continue anonymously.
func (s *Sessions) LoadUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			if v, ok := s.session(r).Values[tokenKey].(string); ok {
				token = v
			}
		}

		if token != "" {
			user, err := s.service.GetUserFromToken(r.Context(), token)
			switch {
			case err == nil:
				r = r.WithContext(WithUser(r.Context(), user))
			case errors.Is(err, database.ErrNotFound):
				logger.Debug("Session token refers to a deleted account")
			default:
				logger.Debug("Ignoring invalid session token: %v", err)
			}
		}

		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}
