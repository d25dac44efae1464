package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/okian/crease/internal/adapters/mq/queue"
	"github.com/okian/crease/internal/telemetry"
)

// maxTelemetryBody bounds one feed payload.
const maxTelemetryBody = 1 << 20

// TelemetryHandler accepts match feed updates.
type TelemetryHandler struct {
	deps      Dependencies
	validator *telemetry.Validator
}

// NewTelemetryHandler creates a telemetry intake handler.
func NewTelemetryHandler(deps Dependencies, validator *telemetry.Validator) *TelemetryHandler {
	return &TelemetryHandler{deps: deps, validator: validator}
}

// HandlePostTelemetry handles POST /telemetry requests. The payload is
// schema-validated, normalized, and queued; the response acknowledges
// acceptance, not application, which happens on the match worker.
func (h *TelemetryHandler) HandlePostTelemetry(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxTelemetryBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("reading body: %w", err))
		return
	}

	if err := h.validator.Validate(body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_snapshot", err)
		return
	}

	var raw telemetry.RawSnapshot
	if err := json.Unmarshal(body, &raw); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	snap, anomalies := telemetry.Normalize(raw)
	ok := h.deps.Ingest(r.Context(), queue.Update{
		MatchID:   raw.MatchID,
		Snapshot:  snap,
		Anomalies: anomalies,
	})
	if !ok {
		writeError(w, http.StatusTooManyRequests, "backpressure", ErrBackpressure)
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted"})
}
