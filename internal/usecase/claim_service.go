package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/leagueforge/waiverwire/internal/domain/asset"
	"github.com/leagueforge/waiverwire/internal/domain/league"
	"github.com/leagueforge/waiverwire/internal/domain/roster"
	"github.com/leagueforge/waiverwire/internal/domain/team"
	"github.com/leagueforge/waiverwire/internal/domain/waiver"
	"github.com/leagueforge/waiverwire/internal/platform/cache"
	idgen "github.com/leagueforge/waiverwire/internal/platform/id"
	"github.com/leagueforge/waiverwire/internal/platform/logging"
)

// SubmitClaimInput is the incoming payload for a new waiver claim.
type SubmitClaimInput struct {
	UserID   string
	LeagueID string
	TeamID   string
	Add      asset.Ref
	Drop     asset.Ref
	Bid      int64
}

// TransactionLogInput narrows the terminal-claim listing.
type TransactionLogInput struct {
	UserID   string
	LeagueID string
	Statuses []waiver.Status
	Week     int
	Limit    int
}

// ClaimService is the admission side of the waiver wire: it validates
// and stores claims, cancels pending ones, and serves claim listings.
// Settlement is SettlementService's job.
type ClaimService struct {
	leagueRepo league.Repository
	teamRepo   team.Repository
	rosterRepo roster.Repository
	claimRepo  waiver.Repository
	idGen      idgen.Generator
	logCache   *cache.Store
	logger     *logging.Logger
	now        func() time.Time
}

func NewClaimService(
	leagueRepo league.Repository,
	teamRepo team.Repository,
	rosterRepo roster.Repository,
	claimRepo waiver.Repository,
	idGen idgen.Generator,
	logCache *cache.Store,
	logger *logging.Logger,
) *ClaimService {
	if logger == nil {
		logger = logging.Default()
	}

	return &ClaimService{
		leagueRepo: leagueRepo,
		teamRepo:   teamRepo,
		rosterRepo: rosterRepo,
		claimRepo:  claimRepo,
		idGen:      idGen,
		logCache:   logCache,
		logger:     logger,
		now:        time.Now,
	}
}

// SubmitClaim validates a bid at admission time and stores it pending.
// The bid is checked against the team's current budget but nothing is
// escrowed; the resolver re-checks cumulative spend at settlement.
func (s *ClaimService) SubmitClaim(ctx context.Context, input SubmitClaimInput) (waiver.Claim, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ClaimService.SubmitClaim")
	defer span.End()

	input.UserID = strings.TrimSpace(input.UserID)
	input.LeagueID = strings.TrimSpace(input.LeagueID)
	input.TeamID = strings.TrimSpace(input.TeamID)

	if input.UserID == "" {
		return waiver.Claim{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if input.LeagueID == "" {
		return waiver.Claim{}, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}
	if input.TeamID == "" {
		return waiver.Claim{}, fmt.Errorf("%w: team id is required", ErrInvalidInput)
	}
	if input.Bid < 0 {
		return waiver.Claim{}, fmt.Errorf("%w: bid cannot be negative", ErrInvalidInput)
	}
	if err := input.Add.Validate(); err != nil {
		return waiver.Claim{}, fmt.Errorf("%w: add asset: %v", ErrInvalidInput, err)
	}
	if !input.Drop.IsZero() {
		if err := input.Drop.Validate(); err != nil {
			return waiver.Claim{}, fmt.Errorf("%w: drop asset: %v", ErrInvalidInput, err)
		}
	}

	lg, err := s.getLeague(ctx, input.LeagueID)
	if err != nil {
		return waiver.Claim{}, err
	}

	tm, err := s.getOwnedTeam(ctx, input.LeagueID, input.TeamID, input.UserID)
	if err != nil {
		return waiver.Claim{}, err
	}

	if input.Bid > tm.FAABBudget {
		return waiver.Claim{}, fmt.Errorf("%w: bid %d exceeds budget %d", waiver.ErrInsufficientBudget, input.Bid, tm.FAABBudget)
	}

	if !input.Drop.IsZero() {
		holds, err := s.rosterRepo.Holds(ctx, input.LeagueID, input.TeamID, input.Drop)
		if err != nil {
			return waiver.Claim{}, fmt.Errorf("check drop asset ownership: %w", err)
		}
		if !holds {
			return waiver.Claim{}, fmt.Errorf("%w: %s", waiver.ErrAssetNotOwned, input.Drop)
		}
	}

	holder, held, err := s.rosterRepo.HolderOf(ctx, input.LeagueID, input.Add)
	if err != nil {
		return waiver.Claim{}, fmt.Errorf("check add asset availability: %w", err)
	}
	if held {
		return waiver.Claim{}, fmt.Errorf("%w: %s held by team %s", waiver.ErrAssetUnavailable, input.Add, holder)
	}

	claimID, err := s.idGen.NewID()
	if err != nil {
		return waiver.Claim{}, fmt.Errorf("generate claim id: %w", err)
	}

	claim := waiver.Claim{
		ID:        claimID,
		LeagueID:  input.LeagueID,
		TeamID:    input.TeamID,
		Year:      lg.SeasonYear,
		Week:      lg.CurrentWeek,
		Add:       input.Add,
		Drop:      input.Drop,
		Bid:       input.Bid,
		Priority:  tm.WaiverPriority,
		Status:    waiver.StatusPending,
		CreatedAt: s.now().UTC(),
	}
	if err := claim.Validate(); err != nil {
		return waiver.Claim{}, fmt.Errorf("validate claim: %w", err)
	}

	if err := s.claimRepo.Insert(ctx, claim); err != nil {
		return waiver.Claim{}, fmt.Errorf("insert claim: %w", err)
	}

	s.logger.InfoContext(ctx, "claim submitted",
		"claim_id", claim.ID,
		"league_id", claim.LeagueID,
		"team_id", claim.TeamID,
		"add_asset", claim.Add.String(),
		"bid", claim.Bid,
	)

	return claim, nil
}

// CancelClaim removes a claim iff it is still pending and owned by the
// acting user's team. A claim that went terminal mid-settlement reports
// not found rather than reverting.
func (s *ClaimService) CancelClaim(ctx context.Context, userID, leagueID, claimID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.ClaimService.CancelClaim")
	defer span.End()

	userID = strings.TrimSpace(userID)
	leagueID = strings.TrimSpace(leagueID)
	claimID = strings.TrimSpace(claimID)
	if userID == "" || leagueID == "" || claimID == "" {
		return fmt.Errorf("%w: user_id, league_id and claim_id are required", ErrInvalidInput)
	}

	claim, exists, err := s.claimRepo.GetByID(ctx, leagueID, claimID)
	if err != nil {
		return fmt.Errorf("get claim: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: claim=%s", ErrNotFound, claimID)
	}

	if _, err := s.getOwnedTeam(ctx, leagueID, claim.TeamID, userID); err != nil {
		return err
	}

	deleted, err := s.claimRepo.DeletePending(ctx, leagueID, claimID, claim.TeamID)
	if err != nil {
		return fmt.Errorf("delete pending claim: %w", err)
	}
	if !deleted {
		return fmt.Errorf("%w: claim=%s is no longer pending", ErrNotFound, claimID)
	}

	s.logger.InfoContext(ctx, "claim cancelled", "claim_id", claimID, "league_id", leagueID, "team_id", claim.TeamID)

	return nil
}

// ListTeamClaims returns the caller's pending claims for one league.
func (s *ClaimService) ListTeamClaims(ctx context.Context, userID, leagueID, teamID string) ([]waiver.Claim, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ClaimService.ListTeamClaims")
	defer span.End()

	userID = strings.TrimSpace(userID)
	leagueID = strings.TrimSpace(leagueID)
	teamID = strings.TrimSpace(teamID)
	if userID == "" || leagueID == "" || teamID == "" {
		return nil, fmt.Errorf("%w: user_id, league_id and team_id are required", ErrInvalidInput)
	}

	if _, err := s.getOwnedTeam(ctx, leagueID, teamID, userID); err != nil {
		return nil, err
	}

	claims, err := s.claimRepo.ListPendingByTeam(ctx, leagueID, teamID)
	if err != nil {
		return nil, fmt.Errorf("list pending claims: %w", err)
	}

	return claims, nil
}

// ListTransactionLog returns the league's terminal claims, newest
// first. Results are cached briefly; settlement invalidates the
// league's entries when it writes new outcomes.
func (s *ClaimService) ListTransactionLog(ctx context.Context, input TransactionLogInput) ([]waiver.Claim, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ClaimService.ListTransactionLog")
	defer span.End()

	input.UserID = strings.TrimSpace(input.UserID)
	input.LeagueID = strings.TrimSpace(input.LeagueID)
	if input.UserID == "" || input.LeagueID == "" {
		return nil, fmt.Errorf("%w: user_id and league_id are required", ErrInvalidInput)
	}
	for _, status := range input.Statuses {
		if !status.IsTerminal() {
			return nil, fmt.Errorf("%w: status %q is not terminal", ErrInvalidInput, status)
		}
	}

	if _, err := s.getLeague(ctx, input.LeagueID); err != nil {
		return nil, err
	}
	if err := s.requireMembership(ctx, input.LeagueID, input.UserID); err != nil {
		return nil, err
	}

	filter := waiver.LogFilter{
		Statuses: input.Statuses,
		Week:     input.Week,
		Limit:    input.Limit,
	}

	load := func(ctx context.Context) (any, error) {
		claims, err := s.claimRepo.ListTerminalByLeague(ctx, input.LeagueID, filter)
		if err != nil {
			return nil, fmt.Errorf("list terminal claims: %w", err)
		}
		return claims, nil
	}

	if s.logCache == nil {
		value, err := load(ctx)
		if err != nil {
			return nil, err
		}
		return value.([]waiver.Claim), nil
	}

	value, err := s.logCache.GetOrLoad(ctx, TransactionLogCacheKey(input.LeagueID, filter), load)
	if err != nil {
		return nil, err
	}

	return value.([]waiver.Claim), nil
}

// TransactionLogCacheKey builds the cache key for one filtered listing.
// TransactionLogCachePrefix is the league-wide invalidation prefix.
func TransactionLogCacheKey(leagueID string, filter waiver.LogFilter) string {
	var sb strings.Builder
	sb.WriteString(TransactionLogCachePrefix(leagueID))
	for _, status := range filter.Statuses {
		sb.WriteString(string(status))
		sb.WriteString(",")
	}
	fmt.Fprintf(&sb, ":w%d:l%d", filter.Week, filter.Limit)
	return sb.String()
}

func TransactionLogCachePrefix(leagueID string) string {
	return "txlog:" + leagueID + ":"
}

func (s *ClaimService) getLeague(ctx context.Context, leagueID string) (league.League, error) {
	lg, exists, err := s.leagueRepo.GetByID(ctx, leagueID)
	if err != nil {
		return league.League{}, fmt.Errorf("get league: %w", err)
	}
	if !exists {
		return league.League{}, fmt.Errorf("%w: league=%s", ErrNotFound, leagueID)
	}

	return lg, nil
}

func (s *ClaimService) getOwnedTeam(ctx context.Context, leagueID, teamID, userID string) (team.Team, error) {
	tm, exists, err := s.teamRepo.GetByID(ctx, leagueID, teamID)
	if err != nil {
		return team.Team{}, fmt.Errorf("get team: %w", err)
	}
	if !exists {
		return team.Team{}, fmt.Errorf("%w: team=%s in league=%s", ErrNotFound, teamID, leagueID)
	}
	if !tm.IsOwnedBy(userID) {
		return team.Team{}, fmt.Errorf("%w: team %s is not managed by user %s", ErrForbidden, teamID, userID)
	}

	return tm, nil
}

func (s *ClaimService) requireMembership(ctx context.Context, leagueID, userID string) error {
	teams, err := s.teamRepo.ListByLeague(ctx, leagueID)
	if err != nil {
		return fmt.Errorf("list teams: %w", err)
	}
	for _, tm := range teams {
		if tm.IsOwnedBy(userID) {
			return nil
		}
	}

	return fmt.Errorf("%w: user %s has no team in league %s", ErrForbidden, userID, leagueID)
}
