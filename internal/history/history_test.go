package history

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/robalobadob/wordle/apps/round-server/internal/database"
	"github.com/robalobadob/wordle/apps/round-server/internal/store"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.OpenMigrated(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if _, err := db.Exec(`INSERT INTO users (id, username, password_hash, created_at) VALUES ('u1', 'player', 'x', '2026-01-01T00:00:00Z')`); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return db
}

func TestRecorderLifecycle(t *testing.T) {
	ctx := context.Background()
	rec := NewRecorder(openTestDB(t))
	start := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

	if err := rec.Started(ctx, "g1", store.Owner{UserID: "u1"}, store.ModeNormal, start); err != nil {
		t.Fatalf("Started: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := rec.Guessed(ctx, "g1"); err != nil {
			t.Fatalf("Guessed: %v", err)
		}
	}
	if err := rec.Finished(ctx, "g1", "won", "CRANE", start.Add(time.Minute)); err != nil {
		t.Fatalf("Finished: %v", err)
	}
	if err := rec.Started(ctx, "g2", store.Owner{UserID: "u1"}, store.ModeDaily, start.Add(time.Hour)); err != nil {
		t.Fatalf("Started g2: %v", err)
	}

	games, err := rec.ListByUser(ctx, "u1", 0)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(games) != 2 {
		t.Fatalf("games = %+v", games)
	}
	if games[0].ID != "g2" || games[0].Status != "playing" || games[0].Answer != "" || games[0].FinishedAt != "" {
		t.Fatalf("newest = %+v", games[0])
	}
	g := games[1]
	if g.Status != "won" || g.Guesses != 3 || g.Answer != "CRANE" || g.Mode != store.ModeNormal || g.FinishedAt == "" {
		t.Fatalf("finished = %+v", g)
	}
}

func TestClaimAnonymous(t *testing.T) {
	ctx := context.Background()
	rec := NewRecorder(openTestDB(t))

	if err := rec.Started(ctx, "g1", store.Owner{AnonID: "anon-1"}, store.ModeNormal, time.Now()); err != nil {
		t.Fatal(err)
	}
	if games, _ := rec.ListByUser(ctx, "u1", 10); len(games) != 0 {
		t.Fatalf("anon game visible before claim: %+v", games)
	}
	if err := rec.ClaimAnonymous(ctx, "anon-1", "u1"); err != nil {
		t.Fatalf("ClaimAnonymous: %v", err)
	}
	if err := rec.ClaimAnonymous(ctx, "", "u1"); err != nil {
		t.Fatalf("ClaimAnonymous empty: %v", err)
	}
	games, err := rec.ListByUser(ctx, "u1", 10)
	if err != nil || len(games) != 1 || games[0].ID != "g1" {
		t.Fatalf("after claim: %+v, %v", games, err)
	}
}

func TestAbandoned(t *testing.T) {
	ctx := context.Background()
	rec := NewRecorder(openTestDB(t))
	start := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	owner := store.Owner{UserID: "u1"}

	for _, id := range []string{"open", "won"} {
		if err := rec.Started(ctx, id, owner, store.ModeNormal, start); err != nil {
			t.Fatal(err)
		}
	}
	if err := rec.Finished(ctx, "won", "won", "CRANE", start.Add(time.Minute)); err != nil {
		t.Fatal(err)
	}
	for _, id := range []string{"open", "won", "missing"} {
		if err := rec.Abandoned(ctx, id, start.Add(time.Hour)); err != nil {
			t.Fatalf("Abandoned(%s): %v", id, err)
		}
	}

	games, err := rec.ListByUser(ctx, "u1", 10)
	if err != nil {
		t.Fatal(err)
	}
	got := map[string]Game{}
	for _, g := range games {
		got[g.ID] = g
	}
	if g := got["open"]; g.Status != "abandoned" || g.Answer != "" || g.FinishedAt != "2026-10-19T10:00:00Z" {
		t.Fatalf("open = %+v", g)
	}
	if g := got["won"]; g.Status != "won" || g.FinishedAt != "2026-10-19T09:01:00Z" {
		t.Fatalf("won = %+v", g)
	}
}
