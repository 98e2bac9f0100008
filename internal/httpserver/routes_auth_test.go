package httpserver

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/robalobadob/wordle/apps/round-server/internal/game"
	"github.com/robalobadob/wordle/apps/round-server/internal/history"
	"github.com/robalobadob/wordle/apps/round-server/internal/store"
)

func TestSignupLoginFlow(t *testing.T) {
	e := newTestEnv(t)
	c := e.client(t)
	creds := map[string]string{"username": "player_one", "password": "correct horse"}

	var me authUser
	if code, raw := e.call(t, c, http.MethodPost, "/auth/signup", creds, &me); code != http.StatusCreated {
		t.Fatalf("signup = %d %s", code, raw)
	}
	if me.ID == "" || me.Username != "player_one" {
		t.Fatalf("signup user = %+v", me)
	}
	if code, _ := e.call(t, c, http.MethodPost, "/auth/signup", creds, nil); code != http.StatusConflict {
		t.Fatalf("duplicate signup = %d", code)
	}

	var got authUser
	if code, _ := e.call(t, c, http.MethodGet, "/auth/me", nil, &got); code != http.StatusOK || got != me {
		t.Fatalf("me = %d %+v", code, got)
	}

	if code, _ := e.call(t, c, http.MethodPost, "/auth/logout", nil, nil); code != http.StatusOK {
		t.Fatalf("logout = %d", code)
	}
	if code, _ := e.call(t, c, http.MethodGet, "/auth/me", nil, nil); code != http.StatusUnauthorized {
		t.Fatalf("me after logout = %d", code)
	}

	bad := map[string]string{"username": "player_one", "password": "wrong horse"}
	if code, _ := e.call(t, c, http.MethodPost, "/auth/login", bad, nil); code != http.StatusUnauthorized {
		t.Fatalf("bad login = %d", code)
	}
	if code, _ := e.call(t, c, http.MethodPost, "/auth/login", creds, nil); code != http.StatusOK {
		t.Fatalf("login = %d", code)
	}
}

func TestSignupValidation(t *testing.T) {
	e := newTestEnv(t)
	tests := []struct {
		name  string
		creds map[string]string
	}{
		{"short username", map[string]string{"username": "ab", "password": "long enough"}},
		{"bad characters", map[string]string{"username": "no spaces!", "password": "long enough"}},
		{"short password", map[string]string{"username": "valid_name", "password": "short"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var er errorRes
			code, _ := e.call(t, e.client(t), http.MethodPost, "/auth/signup", tc.creds, &er)
			if code != http.StatusBadRequest || er.Error != "invalid_signup" {
				t.Fatalf("got %d %+v", code, er)
			}
		})
	}
}

func TestGatedRoutesRequireAuth(t *testing.T) {
	e := newTestEnv(t)
	c := e.client(t)
	for _, p := range []string{"/auth/me", "/stats/me", "/games/mine"} {
		if code, _ := e.call(t, c, http.MethodGet, p, nil, nil); code != http.StatusUnauthorized {
			t.Fatalf("%s = %d", p, code)
		}
	}
}

func TestBearerToken(t *testing.T) {
	e := newTestEnv(t)
	var me authUser
	e.call(t, e.client(t), http.MethodPost, "/auth/signup", map[string]string{"username": "bearer", "password": "correct horse"}, &me)

	tok, _, err := e.srv.tokens.Sign(me.ID, me.Username)
	if err != nil {
		t.Fatal(err)
	}
	req, _ := http.NewRequest(http.MethodGet, e.ts.URL+"/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("bearer me = %d", res.StatusCode)
	}
}

func TestStatsAndHistoryAfterSignedInRound(t *testing.T) {
	e := newTestEnv(t)
	c := e.client(t)

	// A guest round is claimed on signup.
	guest := e.newRound(t, c)
	e.call(t, c, http.MethodPost, "/rounds/"+guest.ID+"/guess", map[string]any{"word": "TRACE"}, nil)

	e.call(t, c, http.MethodPost, "/auth/signup", map[string]string{"username": "stats_user", "password": "correct horse"}, nil)

	v := e.newRound(t, c)
	e.call(t, c, http.MethodPost, "/rounds/"+v.ID+"/guess", map[string]any{"word": "TRACE"}, nil)
	e.call(t, c, http.MethodPost, "/rounds/"+v.ID+"/guess", map[string]any{"word": "CRANE"}, nil)

	var stats map[string]any
	if code, _ := e.call(t, c, http.MethodGet, "/stats/me", nil, &stats); code != http.StatusOK {
		t.Fatalf("stats = %d", code)
	}
	if stats["gamesPlayed"] != float64(1) || stats["wins"] != float64(1) || stats["streak"] != float64(1) {
		t.Fatalf("stats = %v", stats)
	}

	var games []history.Game
	if code, _ := e.call(t, c, http.MethodGet, "/games/mine", nil, &games); code != http.StatusOK {
		t.Fatalf("games = %d", code)
	}
	if len(games) != 2 {
		t.Fatalf("games = %+v", games)
	}
	var won, playing int
	for _, g := range games {
		switch g.Status {
		case "won":
			won++
			if g.Answer != testSecret || g.Guesses != 2 {
				t.Fatalf("won game = %+v", g)
			}
		case "playing":
			playing++
			if g.Answer != "" {
				t.Fatalf("unfinished game reveals answer: %+v", g)
			}
		}
	}
	if won != 1 || playing != 1 {
		t.Fatalf("games = %+v", games)
	}
}

func TestSignInClaimsGuestSessions(t *testing.T) {
	e := newTestEnv(t)
	c := e.client(t)

	v := e.newRound(t, c)
	e.call(t, c, http.MethodPost, "/rounds/"+v.ID+"/guess", map[string]any{"word": "TRACE"}, nil)
	var today newRes
	e.call(t, c, http.MethodPost, "/daily/new", nil, &today)

	e.call(t, c, http.MethodPost, "/auth/signup", map[string]string{"username": "late_signup", "password": "correct horse"}, nil)

	var res guessRes
	if code, raw := e.call(t, c, http.MethodPost, "/rounds/"+v.ID+"/guess", map[string]any{"word": "CRANE"}, &res); code != http.StatusOK {
		t.Fatalf("finish guest round = %d %s", code, raw)
	}
	if res.Round.Outcome != game.OutcomeWon {
		t.Fatalf("outcome = %s", res.Round.Outcome)
	}

	var again newRes
	if code, _ := e.call(t, c, http.MethodPost, "/daily/new", nil, &again); code != http.StatusOK || again.GameID != today.GameID {
		t.Fatalf("daily after sign-in = %d %+v", code, again)
	}

	var stats map[string]any
	e.call(t, c, http.MethodGet, "/stats/me", nil, &stats)
	if stats["gamesPlayed"] != float64(1) || stats["wins"] != float64(1) {
		t.Fatalf("stats = %v", stats)
	}

	var games []history.Game
	e.call(t, c, http.MethodGet, "/games/mine", nil, &games)
	won := 0
	for _, g := range games {
		if g.Status == "won" {
			won++
		}
	}
	if len(games) != 2 || won != 1 {
		t.Fatalf("games = %+v", games)
	}
}

func TestClaimSkipsTakenDailySession(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	member := e.client(t)
	var me authUser
	e.call(t, member, http.MethodPost, "/auth/signup", map[string]string{"username": "two_devices", "password": "correct horse"}, &me)
	var mine newRes
	e.call(t, member, http.MethodPost, "/daily/new", nil, &mine)

	guest := e.client(t)
	var theirs newRes
	e.call(t, guest, http.MethodPost, "/daily/new", nil, &theirs)
	base, _ := url.Parse(e.ts.URL)
	var anon string
	for _, ck := range guest.Jar.Cookies(base) {
		if ck.Name == anonCookieName {
			anon = ck.Value
		}
	}

	if n := e.srv.claimSessions(ctx, store.Owner{AnonID: anon}, store.Owner{UserID: me.ID}); n != 0 {
		t.Fatalf("claimed = %d, want 0", n)
	}
	sess, err := e.srv.store.Get(ctx, theirs.GameID)
	if err != nil || sess.Owner.AnonID != anon {
		t.Fatalf("guest daily = %+v, %v", sess, err)
	}
}
