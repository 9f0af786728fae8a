package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/leagueforge/waiverwire/internal/domain/league"
	"github.com/leagueforge/waiverwire/internal/domain/roster"
	"github.com/leagueforge/waiverwire/internal/domain/team"
)

// LeagueService serves the read-side league/team/roster views the UI
// needs around the waiver wire.
type LeagueService struct {
	leagueRepo league.Repository
	teamRepo   team.Repository
	rosterRepo roster.Repository
}

func NewLeagueService(leagueRepo league.Repository, teamRepo team.Repository, rosterRepo roster.Repository) *LeagueService {
	return &LeagueService{
		leagueRepo: leagueRepo,
		teamRepo:   teamRepo,
		rosterRepo: rosterRepo,
	}
}

func (s *LeagueService) ListLeagues(ctx context.Context) ([]league.League, error) {
	leagues, err := s.leagueRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list leagues: %w", err)
	}

	return leagues, nil
}

func (s *LeagueService) ListTeamsByLeague(ctx context.Context, leagueID string) ([]team.Team, error) {
	leagueID = strings.TrimSpace(leagueID)
	if leagueID == "" {
		return nil, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}

	if err := s.requireLeague(ctx, leagueID); err != nil {
		return nil, err
	}

	teams, err := s.teamRepo.ListByLeague(ctx, leagueID)
	if err != nil {
		return nil, fmt.Errorf("list teams by league: %w", err)
	}

	return teams, nil
}

func (s *LeagueService) GetTeamRoster(ctx context.Context, leagueID, teamID string) ([]roster.Entry, error) {
	leagueID = strings.TrimSpace(leagueID)
	teamID = strings.TrimSpace(teamID)
	if leagueID == "" || teamID == "" {
		return nil, fmt.Errorf("%w: league_id and team_id are required", ErrInvalidInput)
	}

	_, exists, err := s.teamRepo.GetByID(ctx, leagueID, teamID)
	if err != nil {
		return nil, fmt.Errorf("get team: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: team=%s in league=%s", ErrNotFound, teamID, leagueID)
	}

	entries, err := s.rosterRepo.ListByTeam(ctx, leagueID, teamID)
	if err != nil {
		return nil, fmt.Errorf("list roster: %w", err)
	}

	return entries, nil
}

func (s *LeagueService) requireLeague(ctx context.Context, leagueID string) error {
	_, exists, err := s.leagueRepo.GetByID(ctx, leagueID)
	if err != nil {
		return fmt.Errorf("get league: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: league=%s", ErrNotFound, leagueID)
	}

	return nil
}
