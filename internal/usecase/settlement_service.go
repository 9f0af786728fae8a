package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/leagueforge/waiverwire/internal/domain/league"
	"github.com/leagueforge/waiverwire/internal/domain/team"
	"github.com/leagueforge/waiverwire/internal/domain/waiver"
	"github.com/leagueforge/waiverwire/internal/platform/cache"
	"github.com/leagueforge/waiverwire/internal/platform/logging"
)

// SweepResult summarizes one multi-league settlement sweep.
type SweepResult struct {
	LeagueCount   int                 `json:"league_count"`
	RunCount      int                 `json:"run_count"`
	SkippedLocked int                 `json:"skipped_locked"`
	FailedRuns    int                 `json:"failed_runs"`
	WorkerCount   int                 `json:"worker_count"`
	Runs          []SweepLeagueResult `json:"runs"`
}

type SweepLeagueResult struct {
	LeagueID   string `json:"league_id"`
	ClaimCount int    `json:"claim_count"`
	Status     string `json:"status"`
	Message    string `json:"message,omitempty"`
	DurationMs int64  `json:"duration_ms"`
}

// SettlementService runs the waiver auction for a league: it snapshots
// pending claims under the league's run lock, resolves them with the
// pure auction pass, applies each accepted claim in its own
// transaction, and returns the audit log to the caller. One claim's
// failure never aborts the batch.
type SettlementService struct {
	leagueRepo league.Repository
	teamRepo   team.Repository
	claimRepo  waiver.Repository
	store      waiver.SettlementStore
	locker     waiver.RunLocker
	tieBreak   waiver.TieBreak
	logCache   *cache.Store
	logger     *logging.Logger
	now        func() time.Time
}

func NewSettlementService(
	leagueRepo league.Repository,
	teamRepo team.Repository,
	claimRepo waiver.Repository,
	store waiver.SettlementStore,
	locker waiver.RunLocker,
	tieBreak waiver.TieBreak,
	logCache *cache.Store,
	logger *logging.Logger,
) *SettlementService {
	if logger == nil {
		logger = logging.Default()
	}
	if !tieBreak.Valid() {
		tieBreak = waiver.TieBreakCreatedAt
	}

	return &SettlementService{
		leagueRepo: leagueRepo,
		teamRepo:   teamRepo,
		claimRepo:  claimRepo,
		store:      store,
		locker:     locker,
		tieBreak:   tieBreak,
		logCache:   logCache,
		logger:     logger,
		now:        time.Now,
	}
}

// ProcessWaivers settles all pending claims for the league. Only the
// league commissioner may trigger it.
func (s *SettlementService) ProcessWaivers(ctx context.Context, actorUserID, leagueID string) ([]waiver.AuditEntry, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SettlementService.ProcessWaivers")
	defer span.End()

	actorUserID = strings.TrimSpace(actorUserID)
	leagueID = strings.TrimSpace(leagueID)
	if actorUserID == "" || leagueID == "" {
		return nil, fmt.Errorf("%w: user_id and league_id are required", ErrInvalidInput)
	}

	lg, exists, err := s.leagueRepo.GetByID(ctx, leagueID)
	if err != nil {
		return nil, fmt.Errorf("get league: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: league=%s", ErrNotFound, leagueID)
	}
	if !lg.IsCommissioner(actorUserID) {
		return nil, fmt.Errorf("%w: only the commissioner may process waivers for league %s", ErrForbidden, leagueID)
	}

	return s.settleLeague(ctx, leagueID)
}

// ProcessLeagueSweep settles one league without an actor check. It
// backs the scheduled job callback, which authenticates with the
// internal job token instead of a user principal.
func (s *SettlementService) ProcessLeagueSweep(ctx context.Context, leagueID string) ([]waiver.AuditEntry, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SettlementService.ProcessLeagueSweep")
	defer span.End()

	leagueID = strings.TrimSpace(leagueID)
	if leagueID == "" {
		return nil, fmt.Errorf("%w: league_id is required", ErrInvalidInput)
	}

	_, exists, err := s.leagueRepo.GetByID(ctx, leagueID)
	if err != nil {
		return nil, fmt.Errorf("get league: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: league=%s", ErrNotFound, leagueID)
	}

	return s.settleLeague(ctx, leagueID)
}

// settleLeague is the trigger-agnostic run: commissioner endpoint and
// the scheduled sweep both land here.
func (s *SettlementService) settleLeague(ctx context.Context, leagueID string) ([]waiver.AuditEntry, error) {
	release, err := s.locker.AcquireRunLock(ctx, leagueID)
	if err != nil {
		return nil, fmt.Errorf("acquire settlement lock for league %s: %w", leagueID, err)
	}
	defer release()

	pending, err := s.claimRepo.ListPendingByLeague(ctx, leagueID)
	if err != nil {
		return nil, fmt.Errorf("list pending claims: %w", err)
	}
	if len(pending) == 0 {
		s.logger.InfoContext(ctx, "settlement run with no pending claims", "league_id", leagueID)
		return []waiver.AuditEntry{}, nil
	}

	teams, err := s.teamRepo.ListByLeague(ctx, leagueID)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	budgets := make(map[string]int64, len(teams))
	for _, tm := range teams {
		budgets[tm.ID] = tm.FAABBudget
	}

	decisions := waiver.Resolve(pending, budgets, s.tieBreak)

	claimsByID := make(map[string]waiver.Claim, len(pending))
	for _, claim := range pending {
		claimsByID[claim.ID] = claim
	}

	entries := make([]waiver.AuditEntry, 0, len(decisions))
	for _, decision := range decisions {
		claim, ok := claimsByID[decision.ClaimID]
		if !ok {
			continue
		}
		entries = append(entries, s.applyDecision(ctx, claim, decision))
	}

	if s.logCache != nil {
		s.logCache.DeletePrefix(ctx, TransactionLogCachePrefix(leagueID))
	}

	succeeded, failed, errored := 0, 0, 0
	for _, entry := range entries {
		switch entry.Status {
		case waiver.StatusSuccess:
			succeeded++
		case waiver.StatusFailed:
			failed++
		default:
			errored++
		}
	}
	s.logger.InfoContext(ctx, "settlement run finished",
		"league_id", leagueID,
		"claims", len(pending),
		"succeeded", succeeded,
		"failed", failed,
		"errored", errored,
	)

	return entries, nil
}

// applyDecision drives one claim to its terminal state. Persistence
// errors mark the claim errored and are reported in the audit log; the
// batch keeps going either way.
func (s *SettlementService) applyDecision(ctx context.Context, claim waiver.Claim, decision waiver.Decision) waiver.AuditEntry {
	processedAt := s.now().UTC()

	if !decision.Accepted {
		reason := decision.Reason.Describe()
		if err := s.claimRepo.MarkProcessed(ctx, claim.ID, waiver.StatusFailed, reason, processedAt); err != nil {
			s.logger.ErrorContext(ctx, "mark claim failed", "claim_id", claim.ID, "error", err)
			return waiver.NewAuditEntry(claim, waiver.StatusError, "", err)
		}
		return waiver.NewAuditEntry(claim, waiver.StatusFailed, decision.Reason, nil)
	}

	if err := s.store.ApplyAccepted(ctx, claim, processedAt); err != nil {
		s.logger.ErrorContext(ctx, "apply accepted claim", "claim_id", claim.ID, "team_id", claim.TeamID, "error", err)
		if markErr := s.claimRepo.MarkProcessed(ctx, claim.ID, waiver.StatusError, err.Error(), processedAt); markErr != nil {
			s.logger.ErrorContext(ctx, "mark claim errored", "claim_id", claim.ID, "error", markErr)
		}
		return waiver.NewAuditEntry(claim, waiver.StatusError, "", err)
	}

	return waiver.NewAuditEntry(claim, waiver.StatusSuccess, "", nil)
}

// ProcessAllLeagues sweeps every league through a settlement run using
// a bounded worker pool. Each league's run still serializes on its own
// lock; a league whose lock is busy is skipped, not queued.
func (s *SettlementService) ProcessAllLeagues(ctx context.Context, maxWorkers int) (SweepResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SettlementService.ProcessAllLeagues")
	defer span.End()

	leagues, err := s.leagueRepo.List(ctx)
	if err != nil {
		return SweepResult{}, fmt.Errorf("list leagues: %w", err)
	}

	workerCount := maxWorkers
	if workerCount < 1 {
		workerCount = 4
	}
	if workerCount > len(leagues) && len(leagues) > 0 {
		workerCount = len(leagues)
	}

	result := SweepResult{
		LeagueCount: len(leagues),
		WorkerCount: workerCount,
		Runs:        make([]SweepLeagueResult, len(leagues)),
	}
	if len(leagues) == 0 {
		return result, nil
	}

	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return SweepResult{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var workers sync.WaitGroup
	for i, lg := range leagues {
		i, lg := i, lg
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			start := s.now()
			row := SweepLeagueResult{LeagueID: lg.ID}

			entries, runErr := s.settleLeague(ctx, lg.ID)
			row.DurationMs = time.Since(start).Milliseconds()
			switch {
			case errors.Is(runErr, waiver.ErrSettlementRunning):
				row.Status = "skipped"
				row.Message = runErr.Error()
			case runErr != nil:
				row.Status = "failed"
				row.Message = runErr.Error()
			default:
				row.Status = "ok"
				row.ClaimCount = len(entries)
			}

			result.Runs[i] = row
		}); err != nil {
			workers.Done()
			result.Runs[i] = SweepLeagueResult{
				LeagueID: lg.ID,
				Status:   "failed",
				Message:  fmt.Sprintf("submit to pool: %v", err),
			}
		}
	}
	workers.Wait()

	for _, row := range result.Runs {
		switch row.Status {
		case "ok":
			result.RunCount++
		case "skipped":
			result.SkippedLocked++
		default:
			result.FailedRuns++
		}
	}

	s.logger.InfoContext(ctx, "settlement sweep finished",
		"leagues", result.LeagueCount,
		"runs", result.RunCount,
		"skipped", result.SkippedLocked,
		"failed", result.FailedRuns,
	)

	return result, nil
}
