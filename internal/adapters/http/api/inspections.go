// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/okhan/motoval/internal/domain/model"
	"github.com/okhan/motoval/pkg/metrics"
)

// Year bounds for submitted vehicles. A year slightly in the future is
// accepted; depreciation clamps the age to zero.
const (
	minVehicleYear = 1900
	maxVehicleYear = 2100
)

// InspectionsHandler handles inspection submission and read requests.
type InspectionsHandler struct {
	deps     Dependencies
	maxLimit int
}

// NewInspectionsHandler creates a new inspections handler.
func NewInspectionsHandler(deps Dependencies, maxLimit int) *InspectionsHandler {
	return &InspectionsHandler{deps: deps, maxLimit: maxLimit}
}

// inspectionRequest mirrors the submission payload for POST /inspections.
type inspectionRequest struct {
	ReportID     string              `json:"report_id"`
	Brand        string              `json:"brand"`
	Model        string              `json:"model"`
	Year         int                 `json:"year"`
	Observations observationsPayload `json:"observations"`
}

// observationsPayload mirrors model.Observations with pointer categories so
// an omitted category object is distinguishable from an all-zero one.
type observationsPayload struct {
	Engine      *model.EngineObservation     `json:"engine"`
	Frame       *model.FrameObservation      `json:"frame"`
	Suspension  *model.SuspensionObservation `json:"suspension"`
	Brakes      *model.BrakeObservation      `json:"brakes"`
	Tires       *model.TireObservation       `json:"tires"`
	Electricals *model.ElectricalObservation `json:"electricals"`
	Body        *model.BodyObservation       `json:"body"`
	Documents   *model.DocumentObservation   `json:"documents"`
}

// missing returns the name of the first absent category object, or "".
func (p observationsPayload) missing() string {
	switch {
	case p.Engine == nil:
		return "engine"
	case p.Frame == nil:
		return "frame"
	case p.Suspension == nil:
		return "suspension"
	case p.Brakes == nil:
		return "brakes"
	case p.Tires == nil:
		return "tires"
	case p.Electricals == nil:
		return "electricals"
	case p.Body == nil:
		return "body"
	case p.Documents == nil:
		return "documents"
	}
	return ""
}

// observations converts a validated payload into the value form the engine
// consumes. Callers must run validate first; every category is non-nil after
// it passes.
func (p observationsPayload) observations() model.Observations {
	return model.Observations{
		Engine:      *p.Engine,
		Frame:       *p.Frame,
		Suspension:  *p.Suspension,
		Brakes:      *p.Brakes,
		Tires:       *p.Tires,
		Electricals: *p.Electricals,
		Body:        *p.Body,
		Documents:   *p.Documents,
	}
}

// validate rejects malformed payloads so the scorers only ever see clean
// input. All eight category objects must be present; enum levels, counts
// and percentages are all range-checked here, never inside the engine.
func (r inspectionRequest) validate() error {
	switch {
	case strings.TrimSpace(r.Brand) == "":
		return errors.New("missing brand")
	case strings.TrimSpace(r.Model) == "":
		return errors.New("missing model")
	case r.Year < minVehicleYear || r.Year > maxVehicleYear:
		return fmt.Errorf("year out of range [%d, %d]", minVehicleYear, maxVehicleYear)
	}
	if cat := r.Observations.missing(); cat != "" {
		return fmt.Errorf("missing observations.%s; all eight category objects are required", cat)
	}
	o := r.Observations
	if !validLevel(o.Engine.OilLeaks, model.OilLeakNone, model.OilLeakMinor, model.OilLeakMajor) {
		return errors.New("invalid engine.oil_leaks; must be none, minor or major")
	}
	if !validLevel(o.Engine.Smoke, model.SmokeNone, model.SmokeLight, model.SmokeHeavy) {
		return errors.New("invalid engine.smoke; must be none, light or heavy")
	}
	if !validLevel(o.Electricals.BatteryCondition, model.BatteryGood, model.BatteryFair, model.BatteryPoor) {
		return errors.New("invalid electricals.battery_condition; must be good, fair or poor")
	}
	if !validLevel(o.Body.FairingCondition, model.FairingExcellent, model.FairingGood, model.FairingFair, model.FairingPoor) {
		return errors.New("invalid body.fairing_condition; must be excellent, good, fair or poor")
	}
	if o.Brakes.PadRemaining < 0 || o.Brakes.PadRemaining > 100 {
		return errors.New("brakes.pad_remaining must be a percentage in [0, 100]")
	}
	if o.Tires.TreadRemaining < 0 || o.Tires.TreadRemaining > 100 {
		return errors.New("tires.tread_remaining must be a percentage in [0, 100]")
	}
	if o.Body.MinorScratches < 0 || o.Body.BigScratches < 0 || o.Body.SmallDents < 0 || o.Body.BigDents < 0 {
		return errors.New("body scratch and dent counts must not be negative")
	}
	return nil
}

func validLevel(level string, allowed ...string) bool {
	for _, a := range allowed {
		if level == a {
			return true
		}
	}
	return false
}

func (r inspectionRequest) submission() model.Submission {
	return model.Submission{
		ReportID: r.ReportID,
		Vehicle: model.Vehicle{
			Brand: strings.TrimSpace(r.Brand),
			Model: strings.TrimSpace(r.Model),
			Year:  r.Year,
		},
		Observations: r.Observations.observations(),
		ReceivedAt:   time.Now().UTC(),
	}
}

// HandleInspections routes POST /inspections and GET /inspections?limit=N.
func (h *InspectionsHandler) HandleInspections(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.handleSubmit(w, r)
	case http.MethodGet:
		h.handleList(w, r)
	default:
		http.NotFound(w, r)
	}
}

// handleSubmit accepts an inspection for asynchronous scoring. Duplicate
// report IDs acknowledge without re-scoring; valuations are never
// recomputed.
func (h *InspectionsHandler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	const op = "api.submit_inspection"
	var req inspectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		metrics.RecordSubmissionRejected()
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		metrics.RecordSubmissionRejected()
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if req.ReportID == "" {
		req.ReportID = uuid.NewString()
	}

	// Idempotency check - mark as seen first
	if h.deps.SeenAndRecord(r.Context(), req.ReportID) {
		metrics.RecordSubmissionDuplicate()
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", ReportID: req.ReportID, Duplicate: true})
		return
	}

	if ok := h.deps.Submit(r.Context(), req.submission()); !ok {
		// Roll back the seen mark so the client can retry.
		h.deps.Unrecord(r.Context(), req.ReportID)
		writeError(w, http.StatusTooManyRequests, "backpressure", NewKind(op, ErrBackpressure))
		return
	}
	metrics.RecordSubmissionReceived()
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", ReportID: req.ReportID, Duplicate: false})
}

// HandlePreview handles POST /inspections/preview: synchronous scoring and
// valuation with nothing persisted and no idempotency tracking.
func (h *InspectionsHandler) HandlePreview(w http.ResponseWriter, r *http.Request) {
	const op = "api.preview_inspection"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req inspectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	rec, err := h.deps.Preview(r.Context(), req.submission())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// HandleGetInspection handles GET /inspections/{report_id}.
func (h *InspectionsHandler) HandleGetInspection(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	reportID := strings.TrimPrefix(r.URL.Path, "/inspections/")
	if reportID == "" || strings.Contains(reportID, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	rec, err := h.deps.Inspection(r.Context(), reportID)
	if err != nil {
		if isNotFound(err) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// handleList handles GET /inspections?limit=N.
func (h *InspectionsHandler) handleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_inspections"
	limitStr := r.URL.Query().Get("limit")
	n, err := strconv.Atoi(limitStr)
	if err != nil || n < 1 {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	if n > h.maxLimit {
		writeError(w, http.StatusBadRequest, "limit_exceeded", NewKind(op, ErrBadRequest))
		return
	}
	recs, err := h.deps.Recent(r.Context(), n)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, recs)
}
