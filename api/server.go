// Package api exposes the planning engine over HTTP: trigger a pass,
// approve a payload, check health. Everything mutating goes through the
// approve endpoint; plan is read-only.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/railyard-ops/railyard/core/commit"
	coremetrics "github.com/railyard-ops/railyard/core/metrics"
	"github.com/railyard-ops/railyard/core/model"
	"github.com/railyard-ops/railyard/core/plan"
	"github.com/railyard-ops/railyard/infra/logger"
	"github.com/railyard-ops/railyard/internal/eventbus"
)

// Server wires the HTTP handlers to the planner and commit pipeline.
type Server struct {
	planner  *plan.Planner
	pipeline *commit.Pipeline
	sink     coremetrics.Sink
	bus      eventbus.EventBus
	log      logger.Logger
	now      func() time.Time
}

// New creates a Server. Sink and bus may be nil.
func New(planner *plan.Planner, pipeline *commit.Pipeline, sink coremetrics.Sink, bus eventbus.EventBus, log logger.Logger) *Server {
	if sink == nil {
		sink = coremetrics.NopSink{}
	}
	if log == nil {
		log = logger.New("api")
	}
	return &Server{
		planner:  planner,
		pipeline: pipeline,
		sink:     sink,
		bus:      bus,
		log:      log,
		now:      time.Now,
	}
}

// Router builds the HTTP routes.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/api/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/api/plan", s.handlePlan).Methods(http.MethodPost)
	r.HandleFunc("/api/approve", s.handleApprove).Methods(http.MethodPost)
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// proposalView is the wire form of a proposal. Kind-specific fields are
// omitted when empty.
type proposalView struct {
	ID          string               `json:"id"`
	Kind        model.ProposalKind   `json:"kind"`
	VehicleID   string               `json:"vehicle_id"`
	Movement    model.MovementRecord `json:"movement"`
	Valid       bool                 `json:"valid"`
	Errors      []string             `json:"errors,omitempty"`
	Suggestions map[string][]string  `json:"suggestions,omitempty"`

	WorkOrderID  string            `json:"work_order_id,omitempty"`
	Slots        []model.SlotRef   `json:"slots,omitempty"`
	Service      model.ServiceKind `json:"service,omitempty"`
	NewCheckDate string            `json:"new_check_date,omitempty"`
}

type planResponse struct {
	PassID       string                  `json:"pass_id"`
	TakenAt      time.Time               `json:"taken_at"`
	Proposals    []proposalView          `json:"proposals"`
	Payload      model.ApprovalPayload   `json:"payload"`
	Accruals     []model.BrandingAccrual `json:"accruals"`
	BranchErrors map[string]string       `json:"branch_errors,omitempty"`
}

func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	started := s.now()
	res, err := s.planner.RunFullPlanningPass(r.Context())
	if err != nil {
		s.log.Errorf("planning pass failed: %v", err)
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	ev := coremetrics.PassEvent{
		PassID:          res.PassID,
		ProposalsByKind: make(map[model.ProposalKind]int),
		DegradedBranch:  len(res.BranchErrors),
		Duration:        s.now().Sub(started),
		Time:            s.now(),
	}
	views := make([]proposalView, 0, len(res.Proposals))
	for _, p := range res.Proposals {
		ev.ProposalsByKind[p.Kind()]++
		if !p.Validation().Valid {
			ev.Invalid++
		}
		views = append(views, toView(p))
	}
	if err := s.sink.RecordPlanningPass(ev); err != nil {
		s.log.Warnf("record planning pass: %v", err)
	}
	if s.bus != nil {
		s.bus.Publish(ev)
	}

	writeJSON(w, http.StatusOK, planResponse{
		PassID:       res.PassID,
		TakenAt:      res.TakenAt,
		Proposals:    views,
		Payload:      res.Payload,
		Accruals:     res.Accruals,
		BranchErrors: res.BranchErrors,
	})
}

type approveRequest struct {
	PassID  string                `json:"pass_id"`
	Payload model.ApprovalPayload `json:"payload"`
}

func (s *Server) handleApprove(w http.ResponseWriter, r *http.Request) {
	var req approveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload: "+err.Error())
		return
	}
	result, err := s.pipeline.Apply(r.Context(), req.Payload)
	if err != nil {
		s.log.Errorf("commit failed: %v", err)
		// Partial counts still go back to the caller.
		writeJSON(w, http.StatusBadGateway, map[string]any{
			"error":  err.Error(),
			"result": result,
		})
		return
	}

	ev := coremetrics.CommitEvent{PassID: req.PassID, Result: result, Time: s.now()}
	if rec, ok := s.sink.(coremetrics.CommitRecorder); ok {
		if err := rec.RecordCommit(ev); err != nil {
			s.log.Warnf("record commit: %v", err)
		}
	}
	if s.bus != nil {
		s.bus.Publish(ev)
	}
	writeJSON(w, http.StatusOK, map[string]any{"result": result})
}

func toView(p model.Proposal) proposalView {
	v := proposalView{
		Kind:        p.Kind(),
		VehicleID:   p.VehicleID(),
		Movement:    p.Movement(),
		Valid:       p.Validation().Valid,
		Errors:      p.Validation().Errors,
		Suggestions: p.Validation().Suggestions,
	}
	switch t := p.(type) {
	case model.MaintenanceProposal:
		v.ID = t.ID
		v.WorkOrderID = t.WorkOrder.ID
	case model.CleaningProposal:
		v.ID = t.ID
		for _, s := range t.Slots {
			v.Slots = append(v.Slots, model.SlotRef{Date: s.Date, Start: s.Start, End: s.End})
		}
	case model.ServiceCheckProposal:
		v.ID = t.ID
		v.Service = t.Service
		v.NewCheckDate = t.NewCheckDate.Format("2006-01-02")
	case model.EntranceProposal:
		v.ID = t.ID
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
