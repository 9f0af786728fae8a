package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/leagueforge/waiverwire/internal/usecase"
)

func (h *Handler) ProcessWaivers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ProcessWaivers")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	leagueID := strings.TrimSpace(r.PathValue("leagueID"))

	entries, err := h.settlementService.ProcessWaivers(ctx, principal.UserID, leagueID)
	if err != nil {
		h.logger.WarnContext(ctx, "process waivers failed", "user_id", principal.UserID, "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, settlementRunDTO{
		LeagueID:   leagueID,
		ClaimCount: len(entries),
		Entries:    auditEntriesToDTO(entries),
	})
}

// RunProcessWaiversJob is the queue callback: with a league id it
// settles that league, without one it sweeps every league.
func (h *Handler) RunProcessWaiversJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunProcessWaiversJob")
	defer span.End()

	req, err := decodeProcessWaiversJobRequest(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	if leagueID := strings.TrimSpace(req.LeagueID); leagueID != "" {
		entries, err := h.settlementService.ProcessLeagueSweep(ctx, leagueID)
		if err != nil {
			h.logger.WarnContext(ctx, "process waivers job failed", "league_id", leagueID, "error", err)
			writeError(ctx, w, err)
			return
		}
		writeSuccess(ctx, w, http.StatusOK, settlementRunDTO{
			LeagueID:   leagueID,
			ClaimCount: len(entries),
			Entries:    auditEntriesToDTO(entries),
		})
		return
	}

	result, err := h.settlementService.ProcessAllLeagues(ctx, h.sweepWorkers)
	if err != nil {
		h.logger.WarnContext(ctx, "waiver sweep failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

func decodeProcessWaiversJobRequest(r *http.Request) (internalProcessWaiversRequest, error) {
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	var req internalProcessWaiversRequest
	if err := decoder.Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return internalProcessWaiversRequest{}, nil
		}
		return internalProcessWaiversRequest{}, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}

	return req, nil
}
