package productionplan

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/kilianp07/productionplan/core/events"
	"github.com/kilianp07/productionplan/core/logger"
	"github.com/kilianp07/productionplan/core/merit"
	"github.com/kilianp07/productionplan/core/model"
	"github.com/kilianp07/productionplan/core/monitoring"
	infralogger "github.com/kilianp07/productionplan/infra/logger"
	inframetrics "github.com/kilianp07/productionplan/infra/metrics"
	"github.com/kilianp07/productionplan/internal/eventbus"
)

// Response headers carrying the plan outcome next to the assignment array.
const (
	HeaderPlanID        = "X-Plan-Id"
	HeaderPlanStatus    = "X-Plan-Status"
	HeaderPlanShortfall = "X-Plan-Shortfall"
)

// Options tunes the handler.
type Options struct {
	// RejectUndersupply answers 422 when the plan is exhausted.
	RejectUndersupply bool
	// MaxBodyBytes caps the request body, zero means 1 MiB.
	MaxBodyBytes int64
}

// Handler serves POST /productionplan.
type Handler struct {
	solver    *merit.Solver
	validator *Validator
	bus       eventbus.EventBus
	log       logger.Logger
	opts      Options
	now       func() time.Time
}

// NewHandler returns a handler solving requests with solver and publishing
// plan events on bus. bus may be nil.
func NewHandler(solver *merit.Solver, bus eventbus.EventBus, log logger.Logger, opts Options) *Handler {
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 1 << 20
	}
	if log == nil {
		log = infralogger.NopLogger{}
	}
	return &Handler{
		solver:    solver,
		validator: NewValidator(),
		bus:       bus,
		log:       log,
		opts:      opts,
		now:       time.Now,
	}
}

type fieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

type errorBody struct {
	Error     string       `json:"error"`
	Fields    []fieldError `json:"fields,omitempty"`
	Shortfall *float64     `json:"shortfall,omitempty"`
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if v := recover(); v != nil {
			monitoring.CapturePanic(v, map[string]string{"handler": "productionplan"})
			h.log.Errorf("panic serving %s: %v", r.URL.Path, v)
			writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
		}
	}()
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	start := h.now()

	problem, err := h.validator.Decode(http.MaxBytesReader(w, r.Body, h.opts.MaxBodyBytes))
	if err != nil {
		h.reject(w, err)
		return
	}
	plan, err := h.solver.Solve(problem)
	if err != nil {
		h.reject(w, err)
		return
	}
	h.publish(events.PlanEvent{Plan: plan, Fuels: problem.Fuels, Duration: h.now().Sub(start), Time: start})

	w.Header().Set(HeaderPlanID, plan.ID)
	w.Header().Set(HeaderPlanStatus, plan.Status.String())
	w.Header().Set(HeaderPlanShortfall, strconv.FormatFloat(plan.Shortfall, 'f', -1, 64))
	if plan.Status == model.PlanExhausted {
		h.log.Warnf("plan %s exhausted: supplied %v of %v MW", plan.ID, plan.Supplied, plan.Load)
		if h.opts.RejectUndersupply {
			shortfall := plan.Shortfall
			writeJSON(w, http.StatusUnprocessableEntity, errorBody{
				Error:     "load cannot be met by the merit order",
				Shortfall: &shortfall,
			})
			return
		}
	}
	assignments := plan.Assignments
	if assignments == nil {
		assignments = []model.Assignment{}
	}
	writeJSON(w, http.StatusOK, assignments)
}

func (h *Handler) reject(w http.ResponseWriter, err error) {
	reason := inframetrics.RejectionReason(err)
	h.log.Infow("request rejected", map[string]any{"reason": reason, "error": err.Error()})
	h.publish(events.RejectionEvent{Reason: reason, Err: err, Time: h.now()})
	writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error(), Fields: fieldErrors(err)})
}

func (h *Handler) publish(ev eventbus.Event) {
	if h.bus != nil {
		h.bus.Publish(ev)
	}
}

// fieldErrors flattens the validation errors found in err.
func fieldErrors(err error) []fieldError {
	var out []fieldError
	var walk func(error)
	walk = func(e error) {
		var ve *merit.ValidationError
		if j, ok := e.(interface{ Unwrap() []error }); ok {
			for _, inner := range j.Unwrap() {
				walk(inner)
			}
			return
		}
		if errors.As(e, &ve) {
			out = append(out, fieldError{Field: ve.Field, Reason: ve.Reason})
		}
	}
	walk(err)
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// NewHealthHandler answers GET /healthz.
func NewHealthHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
}
