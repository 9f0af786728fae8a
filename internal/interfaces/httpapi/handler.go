package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/leagueforge/waiverwire/internal/domain/asset"
	"github.com/leagueforge/waiverwire/internal/domain/league"
	"github.com/leagueforge/waiverwire/internal/domain/roster"
	"github.com/leagueforge/waiverwire/internal/domain/team"
	"github.com/leagueforge/waiverwire/internal/domain/waiver"
	"github.com/leagueforge/waiverwire/internal/platform/logging"
	"github.com/leagueforge/waiverwire/internal/usecase"
)

type Handler struct {
	leagueService     *usecase.LeagueService
	claimService      *usecase.ClaimService
	settlementService *usecase.SettlementService
	sweepWorkers      int
	logger            *logging.Logger
	validator         *validator.Validate
}

func NewHandler(
	leagueService *usecase.LeagueService,
	claimService *usecase.ClaimService,
	settlementService *usecase.SettlementService,
	sweepWorkers int,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		leagueService:     leagueService,
		claimService:      claimService,
		settlementService: settlementService,
		sweepWorkers:      sweepWorkers,
		logger:            logger,
		validator:         validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

type assetRefPayload struct {
	Type string `json:"type" validate:"required,oneof=player draft_pick"`
	ID   string `json:"id" validate:"required,max=80"`
}

type submitClaimRequest struct {
	TeamID string           `json:"team_id" validate:"required"`
	Add    assetRefPayload  `json:"add" validate:"required"`
	Drop   *assetRefPayload `json:"drop" validate:"omitempty"`
	Bid    int64            `json:"bid" validate:"gte=0"`
}

type listTeamClaimsRequest struct {
	TeamID string `validate:"required"`
}

type internalProcessWaiversRequest struct {
	LeagueID string `json:"league_id"`
	Week     int    `json:"week"`
}

type assetRefDTO struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

type claimDTO struct {
	ID             string       `json:"id"`
	LeagueID       string       `json:"league_id"`
	TeamID         string       `json:"team_id"`
	SeasonYear     int          `json:"season_year"`
	Week           int          `json:"week"`
	Add            assetRefDTO  `json:"add"`
	Drop           *assetRefDTO `json:"drop,omitempty"`
	Bid            int64        `json:"bid"`
	Priority       int          `json:"priority"`
	Status         string       `json:"status"`
	FailureReason  string       `json:"failure_reason,omitempty"`
	CreatedAtUTC   string       `json:"created_at_utc"`
	ProcessedAtUTC string       `json:"processed_at_utc,omitempty"`
}

type auditEntryDTO struct {
	ClaimID string `json:"claim_id"`
	TeamID  string `json:"team_id"`
	Status  string `json:"status"`
	Detail  string `json:"detail"`
}

type settlementRunDTO struct {
	LeagueID   string          `json:"league_id"`
	ClaimCount int             `json:"claim_count"`
	Entries    []auditEntryDTO `json:"entries"`
}

type leagueDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	SeasonYear  int    `json:"season_year"`
	CurrentWeek int    `json:"current_week"`
}

type teamDTO struct {
	ID             string `json:"id"`
	LeagueID       string `json:"league_id"`
	Name           string `json:"name"`
	FAABBudget     int64  `json:"faab_budget"`
	WaiverPriority int    `json:"waiver_priority"`
}

type rosterEntryDTO struct {
	TeamID       string      `json:"team_id"`
	Asset        assetRefDTO `json:"asset"`
	Acquisition  string      `json:"acquisition"`
	AcquiredAtUTC string     `json:"acquired_at_utc"`
}

func assetRefToDTO(ref asset.Ref) assetRefDTO {
	return assetRefDTO{Type: string(ref.Type), ID: ref.ID}
}

func assetRefFromPayload(p *assetRefPayload) asset.Ref {
	if p == nil {
		return asset.Ref{}
	}
	return asset.Ref{Type: asset.Type(p.Type), ID: p.ID}
}

func claimToDTO(ctx context.Context, v waiver.Claim) claimDTO {
	ctx, span := startSpan(ctx, "httpapi.claimToDTO")
	defer span.End()

	dto := claimDTO{
		ID:            v.ID,
		LeagueID:      v.LeagueID,
		TeamID:        v.TeamID,
		SeasonYear:    v.Year,
		Week:          v.Week,
		Add:           assetRefToDTO(v.Add),
		Bid:           v.Bid,
		Priority:      v.Priority,
		Status:        string(v.Status),
		FailureReason: v.FailureReason,
		CreatedAtUTC:  v.CreatedAt.UTC().Format(time.RFC3339),
	}
	if v.HasDrop() {
		drop := assetRefToDTO(v.Drop)
		dto.Drop = &drop
	}
	dto.ProcessedAtUTC = formatOptionalTime(v.ProcessedAt)
	return dto
}

func claimsToDTO(ctx context.Context, claims []waiver.Claim) []claimDTO {
	out := make([]claimDTO, 0, len(claims))
	for _, claim := range claims {
		out = append(out, claimToDTO(ctx, claim))
	}
	return out
}

func auditEntriesToDTO(entries []waiver.AuditEntry) []auditEntryDTO {
	out := make([]auditEntryDTO, 0, len(entries))
	for _, entry := range entries {
		out = append(out, auditEntryDTO{
			ClaimID: entry.ClaimID,
			TeamID:  entry.TeamID,
			Status:  string(entry.Status),
			Detail:  entry.Detail,
		})
	}
	return out
}

func leagueToDTO(v league.League) leagueDTO {
	return leagueDTO{
		ID:          v.ID,
		Name:        v.Name,
		SeasonYear:  v.SeasonYear,
		CurrentWeek: v.CurrentWeek,
	}
}

func teamToDTO(v team.Team) teamDTO {
	return teamDTO{
		ID:             v.ID,
		LeagueID:       v.LeagueID,
		Name:           v.Name,
		FAABBudget:     v.FAABBudget,
		WaiverPriority: v.WaiverPriority,
	}
}

func rosterEntryToDTO(v roster.Entry) rosterEntryDTO {
	return rosterEntryDTO{
		TeamID:        v.TeamID,
		Asset:         assetRefToDTO(v.Asset),
		Acquisition:   string(v.Acquisition),
		AcquiredAtUTC: v.AcquiredAt.UTC().Format(time.RFC3339),
	}
}

func formatOptionalTime(v *time.Time) string {
	if v == nil || v.IsZero() {
		return ""
	}
	return v.UTC().Format(time.RFC3339)
}
