package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/leagueforge/waiverwire/internal/domain/waiver"
	"github.com/leagueforge/waiverwire/internal/usecase"
)

func (h *Handler) SubmitClaim(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SubmitClaim")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	leagueID := strings.TrimSpace(r.PathValue("leagueID"))

	var req submitClaimRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	claim, err := h.claimService.SubmitClaim(ctx, usecase.SubmitClaimInput{
		UserID:   principal.UserID,
		LeagueID: leagueID,
		TeamID:   req.TeamID,
		Add:      assetRefFromPayload(&req.Add),
		Drop:     assetRefFromPayload(req.Drop),
		Bid:      req.Bid,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "submit claim failed", "user_id", principal.UserID, "league_id", leagueID, "team_id", req.TeamID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, claimToDTO(ctx, claim))
}

func (h *Handler) CancelClaim(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CancelClaim")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	leagueID := strings.TrimSpace(r.PathValue("leagueID"))
	claimID := strings.TrimSpace(r.PathValue("claimID"))

	if err := h.claimService.CancelClaim(ctx, principal.UserID, leagueID, claimID); err != nil {
		h.logger.WarnContext(ctx, "cancel claim failed", "user_id", principal.UserID, "league_id", leagueID, "claim_id", claimID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"claim_id": claimID, "status": "cancelled"})
}

func (h *Handler) ListTeamClaims(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListTeamClaims")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	leagueID := strings.TrimSpace(r.PathValue("leagueID"))
	teamID := strings.TrimSpace(r.URL.Query().Get("team_id"))
	if err := h.validateRequest(ctx, listTeamClaimsRequest{TeamID: teamID}); err != nil {
		writeError(ctx, w, err)
		return
	}

	claims, err := h.claimService.ListTeamClaims(ctx, principal.UserID, leagueID, teamID)
	if err != nil {
		h.logger.WarnContext(ctx, "list team claims failed", "user_id", principal.UserID, "league_id", leagueID, "team_id", teamID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, claimsToDTO(ctx, claims))
}

func (h *Handler) ListTransactionLog(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListTransactionLog")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	leagueID := strings.TrimSpace(r.PathValue("leagueID"))

	statuses, err := parseStatusFilter(r.URL.Query().Get("status"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	week, err := parsePositiveIntParam(r.URL.Query().Get("week"), "week")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	limit, err := parsePositiveIntParam(r.URL.Query().Get("limit"), "limit")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	claims, err := h.claimService.ListTransactionLog(ctx, usecase.TransactionLogInput{
		UserID:   principal.UserID,
		LeagueID: leagueID,
		Statuses: statuses,
		Week:     week,
		Limit:    limit,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "list transaction log failed", "user_id", principal.UserID, "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, claimsToDTO(ctx, claims))
}

func parseStatusFilter(raw string) ([]waiver.Status, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	parts := strings.Split(raw, ",")
	statuses := make([]waiver.Status, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		status, err := waiver.ParseStatus(part)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err)
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

func parsePositiveIntParam(raw, name string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}

	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", usecase.ErrInvalidInput, name)
	}
	return value, nil
}
