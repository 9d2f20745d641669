package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/scorewatch/scorewatch/internal/usecase"
)

type backfillValidateRequest struct {
	GameID int64 `json:"game_id" validate:"required,gt=0"`
}

type syncScheduleRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type reclassifyPostRequest struct {
	Platform   string `json:"platform" validate:"required"`
	ExternalID string `json:"external_id" validate:"required"`
	Reason     string `json:"reason" validate:"required"`
}

func (h *Handler) RunCollectSocialJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunCollectSocialJob")
	defer span.End()

	if h.collector == nil {
		writeError(ctx, w, fmt.Errorf("%w: collector is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	result, err := h.collector.RunCycle(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "run collect social job failed", "cycle_id", result.CycleID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) RunSyncScheduleJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunSyncScheduleJob")
	defer span.End()

	if h.scheduleSync == nil {
		writeError(ctx, w, fmt.Errorf("%w: schedule synchronizer is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	var req syncScheduleRequest
	if err := decodeJobRequest(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	now := time.Now().UTC()
	from := now.AddDate(0, 0, -1)
	to := now.AddDate(0, 0, 7)
	if strings.TrimSpace(req.From) != "" {
		parsed, err := time.Parse(time.RFC3339, req.From)
		if err != nil {
			writeError(ctx, w, fmt.Errorf("%w: invalid from timestamp: %v", usecase.ErrInvalidInput, err))
			return
		}
		from = parsed
	}
	if strings.TrimSpace(req.To) != "" {
		parsed, err := time.Parse(time.RFC3339, req.To)
		if err != nil {
			writeError(ctx, w, fmt.Errorf("%w: invalid to timestamp: %v", usecase.ErrInvalidInput, err))
			return
		}
		to = parsed
	}
	if !to.After(from) {
		writeError(ctx, w, fmt.Errorf("%w: to must be after from", usecase.ErrInvalidInput))
		return
	}

	result, err := h.scheduleSync.SyncSchedule(ctx, from, to)
	if err != nil {
		h.logger.WarnContext(ctx, "run sync schedule job failed", "from", from, "to", to, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) RunSyncLiveJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunSyncLiveJob")
	defer span.End()

	if h.scheduleSync == nil {
		writeError(ctx, w, fmt.Errorf("%w: schedule synchronizer is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	result, err := h.scheduleSync.SyncLive(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "run sync live job failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) RunBackfillValidateJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunBackfillValidateJob")
	defer span.End()

	if h.backfill == nil {
		writeError(ctx, w, fmt.Errorf("%w: backfill validator is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	var req backfillValidateRequest
	if err := decodeJobRequest(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: game_id is required", usecase.ErrInvalidInput))
		return
	}

	report, err := h.backfill.ValidateGame(ctx, req.GameID)
	if err != nil {
		h.logger.WarnContext(ctx, "run backfill validate job failed", "game_id", req.GameID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, report)
}

func (h *Handler) RunSyncOddsJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunSyncOddsJob")
	defer span.End()

	if h.oddsService == nil {
		writeError(ctx, w, fmt.Errorf("%w: odds synchronizer is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	result, err := h.oddsService.SyncOdds(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "run sync odds job failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) RunReclassifyPostJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunReclassifyPostJob")
	defer span.End()

	if h.revealService == nil {
		writeError(ctx, w, fmt.Errorf("%w: reveal classifier is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	var req reclassifyPostRequest
	if err := decodeJobRequest(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: platform, external_id and reason are required", usecase.ErrInvalidInput))
		return
	}

	if err := h.revealService.Reclassify(ctx, req.Platform, req.ExternalID, req.Reason); err != nil {
		h.logger.WarnContext(ctx, "run reclassify post job failed",
			"platform", req.Platform,
			"external_id", req.ExternalID,
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{
		"platform":    req.Platform,
		"external_id": req.ExternalID,
		"status":      "reclassified",
	})
}

func decodeJobRequest(r *http.Request, out any) error {
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}
