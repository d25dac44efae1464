package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/okian/crease/internal/adapters/repository"
)

const defaultPageLimit = 50

// LeaderboardHandler serves contest standings and per-user ranks.
type LeaderboardHandler struct {
	deps     Dependencies
	maxLimit int
}

// NewLeaderboardHandler creates a leaderboard handler.
func NewLeaderboardHandler(deps Dependencies, maxLimit int) *LeaderboardHandler {
	return &LeaderboardHandler{deps: deps, maxLimit: maxLimit}
}

// HandleContestReads routes GET /contests/{id}/leaderboard and
// GET /contests/{id}/rank/{userID}.
func (h *LeaderboardHandler) HandleContestReads(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/contests/"), "/")
	switch {
	case len(parts) == 2 && parts[1] == "leaderboard" && parts[0] != "":
		h.handleLeaderboard(w, r, parts[0])
	case len(parts) == 3 && parts[1] == "rank" && parts[0] != "" && parts[2] != "":
		h.handleRank(w, r, parts[0], parts[2])
	default:
		http.NotFound(w, r)
	}
}

func (h *LeaderboardHandler) handleLeaderboard(w http.ResponseWriter, r *http.Request, contestID string) {
	limit, err := queryInt(r, "limit", defaultPageLimit)
	if err != nil || limit < 1 {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	if limit > h.maxLimit {
		writeError(w, http.StatusBadRequest, "limit_exceeded", ErrBadRequest)
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil || offset < 0 {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	entries, total, err := h.deps.Leaderboard(r.Context(), contestID, limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, leaderboardResponse{
		Entries: entries,
		Limit:   limit,
		Offset:  offset,
		Total:   total,
	})
}

func (h *LeaderboardHandler) handleRank(w http.ResponseWriter, r *http.Request, contestID, userID string) {
	entry, err := h.deps.UserRank(r.Context(), contestID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func queryInt(r *http.Request, key string, fallback int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}
