// internal/httpserver/routes_auth.go
//
// Accounts and identity.
//   - POST /auth/signup, /auth/login, /auth/logout
//   - GET  /auth/me, /stats/me, /games/mine (gated)
//
// Every request passes through withOptionalAuth; guests get a stable
// anonymous cookie so their rounds have an owner. Signing in claims the
// guest's recorded rounds and hands its live sessions to the user.

package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/robalobadob/wordle/apps/round-server/internal/auth"
	"github.com/robalobadob/wordle/apps/round-server/internal/store"
)

const anonCookieName = "wordle_anon"

// authUser is placed into the request context by the auth middleware.
type authUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type ctxUserKey struct{}

func userFrom(ctx context.Context) *authUser {
	me, _ := ctx.Value(ctxUserKey{}).(*authUser)
	return me
}

func (s *Server) mountAuth(r chi.Router) {
	r.Post("/auth/signup", s.handleSignup)
	r.Post("/auth/login", s.handleLogin)
	r.Post("/auth/logout", s.handleLogout)

	r.Group(func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Get("/auth/me", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, userFrom(r.Context()))
		})
		r.Get("/stats/me", s.handleStats)
		r.Get("/games/mine", s.handleMyGames)
	})
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if !decode(w, r, &in) {
		return
	}
	u, err := s.users.Create(r.Context(), in.Username, in.Password)
	var verr *auth.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, "invalid_signup", verr.Msg)
		return
	case errors.Is(err, auth.ErrUsernameTaken):
		writeError(w, http.StatusConflict, "username_taken", err.Error())
		return
	case err != nil:
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("signup")
		writeError(w, http.StatusInternalServerError, "internal", "")
		return
	}
	s.signIn(w, r, u)
	writeJSON(w, http.StatusCreated, authUser{ID: u.ID, Username: u.Username})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if !decode(w, r, &in) {
		return
	}
	u, err := s.users.Authenticate(r.Context(), in.Username, in.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		writeError(w, http.StatusUnauthorized, "invalid_credentials", err.Error())
		return
	}
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("login")
		writeError(w, http.StatusInternalServerError, "internal", "")
		return
	}
	s.signIn(w, r, u)
	writeJSON(w, http.StatusOK, authUser{ID: u.ID, Username: u.Username})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.clearAuthCookie(w)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// signIn sets the auth cookie and moves the guest's history and live
// sessions onto the user.
func (s *Server) signIn(w http.ResponseWriter, r *http.Request, u *auth.User) {
	ctx := r.Context()
	tok, exp, err := s.tokens.Sign(u.ID, u.Username)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("sign token")
		return
	}
	s.setAuthCookie(w, tok, exp)
	claimed := 0
	if c, err := r.Cookie(anonCookieName); err == nil && c.Value != "" {
		if err := s.history.ClaimAnonymous(ctx, c.Value, u.ID); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Msg("claim anon games")
		}
		claimed = s.claimSessions(ctx, store.Owner{AnonID: c.Value}, store.Owner{UserID: u.ID})
	}
	zerolog.Ctx(ctx).Info().Str("user", u.ID).Int("claimed", claimed).Msg("signed in")
}

// claimSessions moves every stored session of from onto to and returns how
// many moved. A daily session stays with from when to already has one for
// that date.
func (s *Server) claimSessions(ctx context.Context, from, to store.Owner) int {
	var normal, dailies []string
	s.store.Range(ctx, func(sess store.Session) bool {
		if sess.Owner.Key() == from.Key() {
			if sess.Mode == store.ModeDaily {
				dailies = append(dailies, sess.ID)
			} else {
				normal = append(normal, sess.ID)
			}
		}
		return true
	})

	n := 0
	for _, id := range normal {
		_, err := s.store.Update(ctx, id, func(sess *store.Session) error {
			if sess.Owner.Key() != from.Key() {
				return store.ErrNotFound
			}
			sess.Owner = to
			return nil
		})
		if err == nil {
			n++
		}
	}
	for _, id := range dailies {
		ok, err := s.daily.claim(ctx, id, from, to)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			zerolog.Ctx(ctx).Warn().Err(err).Str("round", id).Msg("claim daily round")
		}
		if ok {
			n++
		}
	}
	return n
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	u, err := s.users.FindByID(r.Context(), userFrom(r.Context()).ID)
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found", "user not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":          u.ID,
		"gamesPlayed": u.GamesPlayed,
		"wins":        u.Wins,
		"streak":      u.Streak,
	})
}

func (s *Server) handleMyGames(w http.ResponseWriter, r *http.Request) {
	games, err := s.history.ListByUser(r.Context(), userFrom(r.Context()).ID, 50)
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("list games")
		writeError(w, http.StatusInternalServerError, "db_error", "")
		return
	}
	writeJSON(w, http.StatusOK, games)
}

// --------------------------- middleware ------------------------------------

// withOptionalAuth decorates requests with the user if a valid token is
// present. It never rejects.
func (s *Server) withOptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if me := s.authenticate(r); me != nil {
			r = r.WithContext(context.WithValue(r.Context(), ctxUserKey{}, me))
		}
		next.ServeHTTP(w, r)
	})
}

// requireAuth rejects requests without a signed-in user.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if userFrom(r.Context()) == nil {
			writeError(w, http.StatusUnauthorized, "unauthorized", "")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) authenticate(r *http.Request) *authUser {
	tok := s.bearerOrCookie(r)
	if tok == "" {
		return nil
	}
	claims, err := s.tokens.Parse(tok)
	if err != nil {
		return nil
	}
	// the user may have been deleted since the token was issued
	if _, err := s.users.FindByID(r.Context(), claims.ID); err != nil {
		return nil
	}
	return &authUser{ID: claims.ID, Username: claims.Username}
}

// owner returns who is playing: the signed-in user, else the anonymous
// cookie (set here on first use).
func (s *Server) owner(w http.ResponseWriter, r *http.Request) store.Owner {
	if me := userFrom(r.Context()); me != nil {
		return store.Owner{UserID: me.ID}
	}
	return store.Owner{AnonID: s.ensureAnonID(w, r)}
}

func (s *Server) ensureAnonID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(anonCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	id := uuid.NewString()
	s.setCookie(w, &http.Cookie{
		Name:    anonCookieName,
		Value:   id,
		Expires: time.Now().Add(180 * 24 * time.Hour),
	})
	// later reads in this request see the new id
	r.AddCookie(&http.Cookie{Name: anonCookieName, Value: id})
	return id
}

// ------------------------------ cookies ------------------------------------

func (s *Server) setCookie(w http.ResponseWriter, c *http.Cookie) {
	c.Path = "/"
	c.HttpOnly = true
	c.Secure = s.cfg.CookieSecure
	c.SameSite = http.SameSiteLaxMode
	if c.Secure {
		c.SameSite = http.SameSiteNoneMode // required for third-party contexts when Secure
	}
	http.SetCookie(w, c)
}

func (s *Server) setAuthCookie(w http.ResponseWriter, token string, exp time.Time) {
	s.setCookie(w, &http.Cookie{Name: s.cfg.CookieName, Value: token, Expires: exp})
}

func (s *Server) clearAuthCookie(w http.ResponseWriter) {
	s.setCookie(w, &http.Cookie{Name: s.cfg.CookieName, Value: "", MaxAge: -1})
}

// bearerOrCookie extracts a token from the Authorization header or the auth cookie.
func (s *Server) bearerOrCookie(r *http.Request) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	if c, err := r.Cookie(s.cfg.CookieName); err == nil {
		return c.Value
	}
	return ""
}
