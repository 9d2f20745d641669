package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/scorewatch/scorewatch/internal/domain/account"
	"github.com/scorewatch/scorewatch/internal/domain/game"
	"github.com/scorewatch/scorewatch/internal/domain/odds"
	"github.com/scorewatch/scorewatch/internal/domain/pbp"
	"github.com/scorewatch/scorewatch/internal/domain/social"
	"github.com/scorewatch/scorewatch/internal/platform/logging"
	"github.com/scorewatch/scorewatch/internal/usecase"
)

type Handler struct {
	gameService   *usecase.GameService
	socialService *usecase.SocialService
	recapService  *usecase.RecapService
	oddsService   *usecase.OddsSyncService
	revealService *usecase.RevealService
	collector     *usecase.CollectorService
	scheduleSync  *usecase.ScheduleSyncService
	backfill      *usecase.BackfillService
	logger        *logging.Logger
	validator     *validator.Validate
}

func NewHandler(
	gameService *usecase.GameService,
	socialService *usecase.SocialService,
	recapService *usecase.RecapService,
	oddsService *usecase.OddsSyncService,
	revealService *usecase.RevealService,
	collector *usecase.CollectorService,
	scheduleSync *usecase.ScheduleSyncService,
	backfill *usecase.BackfillService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		gameService:   gameService,
		socialService: socialService,
		recapService:  recapService,
		oddsService:   oddsService,
		revealService: revealService,
		collector:     collector,
		scheduleSync:  scheduleSync,
		backfill:      backfill,
		logger:        logger,
		validator:     validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) ListGames(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListGames")
	defer span.End()

	rangeParam := strings.TrimSpace(r.URL.Query().Get("range"))
	if rangeParam == "" {
		rangeParam = string(game.RangeCurrent)
	}
	gameRange, ok := game.ParseRange(rangeParam)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: unknown range %q", usecase.ErrInvalidInput, rangeParam))
		return
	}

	games, err := h.gameService.ListByRange(ctx, gameRange)
	if err != nil {
		h.logger.WarnContext(ctx, "list games failed", "range", rangeParam, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]gameDTO, 0, len(games))
	for _, g := range games {
		items = append(items, gameToDTO(ctx, g))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetGame(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetGame")
	defer span.End()

	gameID, err := pathGameID(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	item, err := h.gameService.GetByID(ctx, gameID)
	if err != nil {
		h.logger.WarnContext(ctx, "get game failed", "game_id", gameID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, gameToDTO(ctx, item))
}

func (h *Handler) GetGamePBP(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetGamePBP")
	defer span.End()

	gameID, err := pathGameID(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	periods, err := h.gameService.GetPBP(ctx, gameID)
	if err != nil {
		h.logger.WarnContext(ctx, "get pbp failed", "game_id", gameID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, gamePBPDTO{
		GameID:  gameID,
		Periods: periods,
	})
}

func (h *Handler) ListGameSocial(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListGameSocial")
	defer span.End()

	gameID, err := pathGameID(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	level, err := querySocialRevealFilter(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	posts, err := h.socialService.ListByGame(ctx, gameID, level)
	if err != nil {
		h.logger.WarnContext(ctx, "list game social failed", "game_id", gameID, "reveal", level, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]socialPostDTO, 0, len(posts))
	for _, p := range posts {
		items = append(items, socialPostToDTO(ctx, p))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetGameRecap(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetGameRecap")
	defer span.End()

	gameID, err := pathGameID(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	level, err := queryRevealLevel(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	summary, err := h.recapService.Summary(ctx, gameID, level)
	if err != nil {
		h.logger.WarnContext(ctx, "get recap failed", "game_id", gameID, "reveal", level, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, summary)
}

func (h *Handler) GetGameRecapAvailability(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetGameRecapAvailability")
	defer span.End()

	gameID, err := pathGameID(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	availability, err := h.recapService.Availability(ctx, gameID)
	if err != nil {
		h.logger.WarnContext(ctx, "get recap availability failed", "game_id", gameID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, availability)
}

func (h *Handler) ListGameOdds(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListGameOdds")
	defer span.End()

	gameID, err := pathGameID(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	snapshots, err := h.oddsService.ListByGame(ctx, gameID)
	if err != nil {
		h.logger.WarnContext(ctx, "list game odds failed", "game_id", gameID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]oddsSnapshotDTO, 0, len(snapshots))
	for _, snap := range snapshots {
		items = append(items, oddsSnapshotToDTO(ctx, snap))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) ListSocialAccounts(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListSocialAccounts")
	defer span.End()

	entries, err := h.socialService.ListAccounts(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "list social accounts failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]socialAccountDTO, 0, len(entries))
	for _, entry := range entries {
		items = append(items, socialAccountToDTO(ctx, entry))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func pathGameID(r *http.Request) (int64, error) {
	raw := strings.TrimSpace(r.PathValue("gameID"))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid game id %q", usecase.ErrInvalidInput, raw)
	}
	return id, nil
}

// queryRevealLevel defaults to pre: the spoiler-safe surface is the one a
// caller gets unless it asks for more.
// querySocialRevealFilter parses the optional reveal filter on the social
// listing. Absent means unfiltered: every post comes back carrying its
// reveal level, and the caller decides what to show.
func querySocialRevealFilter(r *http.Request) (social.RevealLevel, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("reveal"))
	if raw == "" {
		return "", nil
	}
	level, ok := social.ParseRevealLevel(raw)
	if !ok {
		return "", fmt.Errorf("%w: unknown reveal level %q", usecase.ErrInvalidInput, raw)
	}
	return level, nil
}

func queryRevealLevel(r *http.Request) (social.RevealLevel, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("reveal"))
	if raw == "" {
		return social.RevealPre, nil
	}
	level, ok := social.ParseRevealLevel(raw)
	if !ok {
		return "", fmt.Errorf("%w: unknown reveal level %q", usecase.ErrInvalidInput, raw)
	}
	return level, nil
}

type gameDTO struct {
	ID            int64      `json:"id"`
	LeagueCode    string     `json:"leagueCode"`
	Season        int        `json:"season"`
	SeasonType    string     `json:"seasonType,omitempty"`
	HomeTeam      string     `json:"homeTeam"`
	AwayTeam      string     `json:"awayTeam"`
	HomeScore     *int       `json:"homeScore,omitempty"`
	AwayScore     *int       `json:"awayScore,omitempty"`
	Venue         string     `json:"venue,omitempty"`
	Status        string     `json:"status"`
	StartTime     time.Time  `json:"startTime"`
	EndTime       *time.Time `json:"endTime,omitempty"`
	HasPBP        bool       `json:"hasPbp"`
	HasSocial     bool       `json:"hasSocial"`
	LastUpdatedAt time.Time  `json:"lastUpdatedAt"`
}

type gamePBPDTO struct {
	GameID  int64        `json:"gameId"`
	Periods []pbp.Period `json:"periods"`
}

type socialPostDTO struct {
	ID           int64     `json:"id"`
	Platform     string    `json:"platform"`
	ExternalID   string    `json:"externalId"`
	Handle       string    `json:"handle"`
	GameID       int64     `json:"gameId,omitempty"`
	LeagueCode   string    `json:"leagueCode,omitempty"`
	PostedAt     time.Time `json:"postedAt"`
	Text         string    `json:"text"`
	MediaURL     string    `json:"mediaUrl,omitempty"`
	MediaType    string    `json:"mediaType,omitempty"`
	HasVideo     bool      `json:"hasVideo"`
	RevealLevel  string    `json:"revealLevel"`
	RevealReason string    `json:"revealReason,omitempty"`
}

type socialAccountDTO struct {
	ID               int64  `json:"id"`
	Platform         string `json:"platform"`
	Handle           string `json:"handle"`
	TeamAbbreviation string `json:"teamAbbreviation,omitempty"`
	LeagueCode       string `json:"leagueCode"`
	IsActive         bool   `json:"isActive"`
}

type oddsSnapshotDTO struct {
	GameID     int64     `json:"gameId"`
	Book       string    `json:"book"`
	MarketType string    `json:"marketType"`
	HomeLine   *float64  `json:"homeLine,omitempty"`
	AwayLine   *float64  `json:"awayLine,omitempty"`
	Total      *float64  `json:"total,omitempty"`
	CapturedAt time.Time `json:"capturedAt"`
}

func gameToDTO(ctx context.Context, v game.Game) gameDTO {
	_, span := startSpan(ctx, "httpapi.gameToDTO")
	defer span.End()

	return gameDTO{
		ID:            v.ID,
		LeagueCode:    v.LeagueCode,
		Season:        v.Season,
		SeasonType:    v.SeasonType,
		HomeTeam:      v.HomeTeam,
		AwayTeam:      v.AwayTeam,
		HomeScore:     v.HomeScore,
		AwayScore:     v.AwayScore,
		Venue:         v.Venue,
		Status:        string(v.Status),
		StartTime:     v.StartTime,
		EndTime:       v.EndTime,
		HasPBP:        v.HasPBP,
		HasSocial:     v.HasSocial,
		LastUpdatedAt: v.LastUpdatedAt,
	}
}

func socialPostToDTO(ctx context.Context, v social.Post) socialPostDTO {
	_, span := startSpan(ctx, "httpapi.socialPostToDTO")
	defer span.End()

	return socialPostDTO{
		ID:           v.ID,
		Platform:     v.Platform,
		ExternalID:   v.ExternalID,
		Handle:       v.Handle,
		GameID:       v.GameID,
		LeagueCode:   v.LeagueCode,
		PostedAt:     v.PostedAt,
		Text:         v.Text,
		MediaURL:     v.MediaURL,
		MediaType:    v.MediaType,
		HasVideo:     v.HasVideo,
		RevealLevel:  string(v.RevealLevel),
		RevealReason: v.RevealReason,
	}
}

func socialAccountToDTO(ctx context.Context, v account.RegistryEntry) socialAccountDTO {
	_, span := startSpan(ctx, "httpapi.socialAccountToDTO")
	defer span.End()

	return socialAccountDTO{
		ID:               v.ID,
		Platform:         v.Platform,
		Handle:           v.Handle,
		TeamAbbreviation: v.TeamAbbreviation,
		LeagueCode:       v.LeagueCode,
		IsActive:         v.IsActive,
	}
}

func oddsSnapshotToDTO(ctx context.Context, v odds.Snapshot) oddsSnapshotDTO {
	_, span := startSpan(ctx, "httpapi.oddsSnapshotToDTO")
	defer span.End()

	return oddsSnapshotDTO{
		GameID:     v.GameID,
		Book:       v.Book,
		MarketType: v.MarketType,
		HomeLine:   v.HomeLine,
		AwayLine:   v.AwayLine,
		Total:      v.Total,
		CapturedAt: v.CapturedAt,
	}
}
