package ranking

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/gokatarajesh/lgs-tracker/internal/db/repository"
	httperrors "github.com/gokatarajesh/lgs-tracker/pkg/http/errors"
)

type rankReader interface {
	Top(ctx context.Context, window string, limit int) ([]Entry, error)
	Rank(ctx context.Context, window, userID string) (Entry, bool, error)
}

type snapshotReader interface {
	Latest(ctx context.Context, window string) (repository.RankingSnapshot, error)
}

// HTTPHandler exposes REST endpoints for ranking queries.
type HTTPHandler struct {
	svc       rankReader
	snapshots snapshotReader
	logger    zerolog.Logger
}

// NewHTTPHandler constructs a ranking HTTP handler. Either dependency may be nil.
func NewHTTPHandler(svc rankReader, snapshots snapshotReader, logger zerolog.Logger) *HTTPHandler {
	return &HTTPHandler{
		svc:       svc,
		snapshots: snapshots,
		logger:    logger.With().Str("component", "ranking_http").Logger(),
	}
}

// HandleGet responds with the current ranking for a window.
// Route: GET /v1/rankings/{window}?limit=10
// When the caller sends X-User-ID their own position is included as "me".
func (h *HTTPHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	window := r.PathValue("window")
	if !IsValidWindow(window) {
		httperrors.RespondNotFound(w, httperrors.ErrCodeUnknownWindow, "unknown ranking window")
		return
	}

	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	ctx := r.Context()
	var (
		top    []Entry
		source = "redis"
	)

	if h.svc != nil {
		if entries, err := h.svc.Top(ctx, window, limit); err == nil {
			top = entries
		} else {
			h.logger.Warn().Err(err).Str("window", window).Msg("redis ranking fetch failed")
		}
	}

	if len(top) == 0 {
		source = "snapshot"
		top = h.snapshotFallback(ctx, window, limit)
	}
	if top == nil {
		top = []Entry{}
	}

	resp := map[string]interface{}{
		"window":      window,
		"top":         top,
		"source":      source,
		"retrievedAt": time.Now().UTC().Format(time.RFC3339),
	}

	if userID := r.Header.Get("X-User-ID"); userID != "" && h.svc != nil {
		if me, ok, err := h.svc.Rank(ctx, window, userID); err != nil {
			h.logger.Warn().Err(err).Str("window", window).Msg("rank lookup failed")
		} else if ok {
			resp["me"] = me
		}
	}

	writeJSON(w, resp)
}

func (h *HTTPHandler) snapshotFallback(ctx context.Context, window string, limit int) []Entry {
	if h.snapshots == nil {
		return nil
	}
	snap, err := h.snapshots.Latest(ctx, window)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			h.logger.Warn().Err(err).Str("window", window).Msg("snapshot fetch failed")
		}
		return nil
	}

	var entries []Entry
	if err := json.Unmarshal(snap.Entries, &entries); err != nil {
		h.logger.Warn().Err(err).Msg("snapshot payload decode failed")
		return nil
	}
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}

func writeJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}
