package usecase

import (
	"testing"

	"github.com/leagueforge/waiverwire/internal/infrastructure/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLeagueService() *LeagueService {
	return NewLeagueService(
		memory.NewLeagueRepository(memory.SeedLeagues()),
		memory.NewTeamRepository(memory.SeedTeams()),
		memory.NewRosterRepository(memory.SeedRosters()),
	)
}

func TestLeagueService_ListLeagues(t *testing.T) {
	svc := newLeagueService()

	leagues, err := svc.ListLeagues(t.Context())
	require.NoError(t, err)
	require.Len(t, leagues, 1)
	assert.Equal(t, memory.LeagueIDGridiron2026, leagues[0].ID)
	assert.Equal(t, 2026, leagues[0].SeasonYear)
	assert.Equal(t, 3, leagues[0].CurrentWeek)
}

func TestLeagueService_ListTeamsByLeague(t *testing.T) {
	svc := newLeagueService()

	teams, err := svc.ListTeamsByLeague(t.Context(), memory.LeagueIDGridiron2026)
	require.NoError(t, err)
	require.Len(t, teams, 4)

	byID := map[string]int64{}
	for _, tm := range teams {
		byID[tm.ID] = tm.FAABBudget
	}
	assert.Equal(t, int64(100), byID[memory.TeamIDThunder])
	assert.Equal(t, int64(40), byID[memory.TeamIDComets])
}

func TestLeagueService_ListTeamsByLeague_Errors(t *testing.T) {
	svc := newLeagueService()

	t.Run("blank league id", func(t *testing.T) {
		_, err := svc.ListTeamsByLeague(t.Context(), "   ")
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("unknown league", func(t *testing.T) {
		_, err := svc.ListTeamsByLeague(t.Context(), "league-missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestLeagueService_GetTeamRoster(t *testing.T) {
	svc := newLeagueService()

	entries, err := svc.GetTeamRoster(t.Context(), memory.LeagueIDGridiron2026, memory.TeamIDThunder)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assetIDs := []string{entries[0].Asset.ID, entries[1].Asset.ID}
	assert.Contains(t, assetIDs, "pl-qb-rivera")
	assert.Contains(t, assetIDs, "pl-rb-oduya")
}

func TestLeagueService_GetTeamRoster_Errors(t *testing.T) {
	svc := newLeagueService()

	t.Run("blank ids", func(t *testing.T) {
		_, err := svc.GetTeamRoster(t.Context(), "", memory.TeamIDThunder)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("unknown team", func(t *testing.T) {
		_, err := svc.GetTeamRoster(t.Context(), memory.LeagueIDGridiron2026, "team-missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("team from another league", func(t *testing.T) {
		_, err := svc.GetTeamRoster(t.Context(), "league-missing", memory.TeamIDThunder)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
