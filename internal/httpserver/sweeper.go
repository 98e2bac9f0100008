package httpserver

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordle/apps/round-server/internal/store"
)

// runSweeper evicts idle rounds every interval until ctx is cancelled.
func (s *Server) runSweeper(ctx context.Context, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			s.sweep(ctx, now)
		}
	}
}

// sweep removes normal rounds untouched for longer than RoundTTL and returns
// how many it removed. Daily rounds stay until the day rolls over so a lost
// daily cannot be replayed. Evicted rounds that were still in progress are
// recorded as abandoned.
func (s *Server) sweep(ctx context.Context, now time.Time) int {
	cutoff := now.Add(-s.cfg.RoundTTL)
	evicted := s.store.DeleteIf(ctx, func(sess *store.Session) bool {
		return sess.Mode != store.ModeDaily && sess.UpdatedAt.Before(cutoff)
	})
	for _, sess := range evicted {
		if sess.Round.Outcome().Finished() {
			continue
		}
		if err := s.history.Abandoned(ctx, sess.RecordID, now); err != nil {
			log.Warn().Err(err).Str("round", sess.ID).Msg("record round abandoned")
		}
	}
	s.refreshActive(ctx)
	if len(evicted) > 0 {
		log.Info().Int("evicted", len(evicted)).Int("left", s.store.Len()).Msg("swept idle rounds")
	}
	return len(evicted)
}
