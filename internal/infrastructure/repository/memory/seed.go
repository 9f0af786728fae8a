package memory

import (
	"time"

	"github.com/leagueforge/waiverwire/internal/domain/asset"
	"github.com/leagueforge/waiverwire/internal/domain/league"
	"github.com/leagueforge/waiverwire/internal/domain/roster"
	"github.com/leagueforge/waiverwire/internal/domain/team"
)

// Demo league used by the dev wiring and the service tests.
const (
	LeagueIDGridiron2026 = "gridiron-2026"

	TeamIDThunder  = "team-thunder"
	TeamIDAtoms    = "team-atoms"
	TeamIDMariners = "team-mariners"
	TeamIDComets   = "team-comets"

	CommissionerUserID = "user-commish"
)

func SeedLeagues() []league.League {
	return []league.League{
		{
			ID:                 LeagueIDGridiron2026,
			Name:               "Gridiron Masters",
			SeasonYear:         2026,
			CurrentWeek:        3,
			CommissionerUserID: CommissionerUserID,
		},
	}
}

func SeedTeams() []team.Team {
	return []team.Team{
		{ID: TeamIDThunder, LeagueID: LeagueIDGridiron2026, OwnerUserID: "user-thunder", Name: "Thunder", FAABBudget: 100, WaiverPriority: 1},
		{ID: TeamIDAtoms, LeagueID: LeagueIDGridiron2026, OwnerUserID: "user-atoms", Name: "Atoms", FAABBudget: 100, WaiverPriority: 2},
		{ID: TeamIDMariners, LeagueID: LeagueIDGridiron2026, OwnerUserID: "user-mariners", Name: "Mariners", FAABBudget: 60, WaiverPriority: 3},
		{ID: TeamIDComets, LeagueID: LeagueIDGridiron2026, OwnerUserID: CommissionerUserID, Name: "Comets", FAABBudget: 40, WaiverPriority: 4},
	}
}

func SeedRosters() []roster.Entry {
	acquired := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
	entries := []roster.Entry{}

	add := func(teamID, assetID string) {
		entries = append(entries, roster.Entry{
			TeamID:      teamID,
			LeagueID:    LeagueIDGridiron2026,
			Asset:       asset.Ref{Type: asset.TypePlayer, ID: assetID},
			Acquisition: roster.AcquisitionDraft,
			AcquiredAt:  acquired,
		})
	}

	add(TeamIDThunder, "pl-qb-rivera")
	add(TeamIDThunder, "pl-rb-oduya")
	add(TeamIDAtoms, "pl-qb-malone")
	add(TeamIDAtoms, "pl-wr-takayama")
	add(TeamIDMariners, "pl-rb-castillo")
	add(TeamIDMariners, "pl-te-brandt")
	add(TeamIDComets, "pl-wr-ellison")
	add(TeamIDComets, "pl-k-sorensen")

	return entries
}
