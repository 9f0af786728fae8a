package postgres

import (
	"context"
	"fmt"
	"hash/fnv"

	"github.com/jmoiron/sqlx"
	"github.com/leagueforge/waiverwire/internal/domain/waiver"
)

// RunLocker serializes settlement runs per league across every process
// that shares the database, using session-level advisory locks. The
// lock lives on a dedicated connection so pool reuse cannot release it
// under a running settlement.
type RunLocker struct {
	db *sqlx.DB
}

func NewRunLocker(db *sqlx.DB) *RunLocker {
	return &RunLocker{db: db}
}

func (l *RunLocker) AcquireRunLock(ctx context.Context, leagueID string) (func(), error) {
	conn, err := l.db.Connx(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire settlement lock connection league=%s: %w", leagueID, err)
	}

	key := advisoryLockKey(leagueID)

	var locked bool
	if err := conn.GetContext(ctx, &locked, `SELECT pg_try_advisory_lock($1)`, key); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("acquire settlement lock league=%s: %w", leagueID, err)
	}
	if !locked {
		_ = conn.Close()
		return nil, fmt.Errorf("league=%s: %w", leagueID, waiver.ErrSettlementRunning)
	}

	release := func() {
		// Closing the connection drops the session-level lock even when
		// the unlock call itself fails.
		var unlocked bool
		_ = conn.GetContext(context.Background(), &unlocked, `SELECT pg_advisory_unlock($1)`, key)
		_ = conn.Close()
	}

	return release, nil
}

func advisoryLockKey(leagueID string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte("waiver-settlement:" + leagueID))
	return int64(h.Sum64())
}
