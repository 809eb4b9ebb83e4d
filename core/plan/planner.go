package plan

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/railyard-ops/railyard/core/eligibility"
	"github.com/railyard-ops/railyard/core/geometry"
	"github.com/railyard-ops/railyard/core/location"
	"github.com/railyard-ops/railyard/core/logger"
	"github.com/railyard-ops/railyard/core/model"
	"github.com/railyard-ops/railyard/core/snapshot"
)

// CleanThresholds are the staleness limits, in days, beyond which a
// Clean vehicle is treated as needing another pass through the bay.
type CleanThresholds struct {
	LightDays int
	DeepDays  int
}

// DefaultCleanThresholds returns the operating policy limits.
func DefaultCleanThresholds() CleanThresholds {
	return CleanThresholds{LightDays: 3, DeepDays: 30}
}

func blocksFor(kind model.CleanKind) int {
	if kind == model.CleanDeep {
		return 12
	}
	return 1
}

// Config tunes a Planner. Zero values fall back to the defaults.
type Config struct {
	Depot   Depot
	Policy  eligibility.Policy
	Clean   CleanThresholds
	Stagger time.Duration
}

func (c *Config) setDefaults() {
	if c.Depot.Name == "" {
		c.Depot = DefaultDepot()
	}
	if c.Policy == "" {
		c.Policy = eligibility.PolicyBrandingThenMileage
	}
	if c.Clean == (CleanThresholds{}) {
		c.Clean = DefaultCleanThresholds()
	}
	if c.Stagger <= 0 {
		c.Stagger = 30 * time.Second
	}
}

// Planner runs read-only planning passes over store snapshots. Branches
// share one immutable snapshot, so they run concurrently without locks.
type Planner struct {
	cfg    Config
	loader *snapshot.Loader
	filter *eligibility.Filter
	log    logger.Logger

	// now is swappable for tests.
	now func() time.Time
}

// NewPlanner wires a Planner. A nil filter gets the default thresholds,
// a nil logger is silenced.
func NewPlanner(loader *snapshot.Loader, filter *eligibility.Filter, cfg Config, log logger.Logger) *Planner {
	cfg.setDefaults()
	if filter == nil {
		filter = eligibility.NewFilter()
	}
	if log == nil {
		log = logger.Nop{}
	}
	return &Planner{cfg: cfg, loader: loader, filter: filter, log: log, now: time.Now}
}

// passCtx bundles the per-pass derived state every branch needs.
type passCtx struct {
	snap    *snapshot.Snapshot
	geo     *geometry.Resolver
	builder *Builder
}

func (p *Planner) newPassCtx(snap *snapshot.Snapshot) *passCtx {
	geo := geometry.NewResolver(snap.Geometry)
	names := snap.KnownLocations().Names()
	names = append(names, p.cfg.Depot.StablingLocations()...)
	names = append(names,
		p.cfg.Depot.Entrance(),
		p.cfg.Depot.MaintenanceBay(),
		p.cfg.Depot.InspectionBay(),
		p.cfg.Depot.LightCleanBay(),
		p.cfg.Depot.DeepCleanBay(),
	)
	for _, e := range snap.Geometry {
		names = append(names, e.Source, e.Destination)
	}
	builder := NewBuilder(geo, NewValidator(location.NewVocabulary(names)), p.now)
	return &passCtx{snap: snap, geo: geo, builder: builder}
}

// sourceFor is the origin of a proposed movement: the vehicle's last
// known position, or the default stabling slot for a vehicle that has
// never appeared in the log.
func (p *Planner) sourceFor(snap *snapshot.Snapshot, vehicleID string) string {
	if loc := snap.CurrentLocation(vehicleID); loc != "" {
		return loc
	}
	return p.cfg.Depot.DefaultStabling()
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func (p *Planner) loadPassCtx(ctx context.Context) (*passCtx, error) {
	snap, err := p.loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	return p.newPassCtx(snap), nil
}

// ProposeEntrancePlan runs only the entrance branch against a fresh
// snapshot.
func (p *Planner) ProposeEntrancePlan(ctx context.Context) ([]model.Proposal, error) {
	pc, err := p.loadPassCtx(ctx)
	if err != nil {
		return nil, err
	}
	return p.planEntrance(pc)
}

// ProposeCleaningMovements runs only the cleaning branch, for one tier.
func (p *Planner) ProposeCleaningMovements(ctx context.Context, kind model.CleanKind) ([]model.Proposal, error) {
	pc, err := p.loadPassCtx(ctx)
	if err != nil {
		return nil, err
	}
	working := append([]model.CleaningSlot(nil), pc.snap.CleaningSlots...)
	return p.planCleaning(pc, kind, working), nil
}

// ProposeMaintenanceMovements runs only the maintenance branch.
func (p *Planner) ProposeMaintenanceMovements(ctx context.Context) ([]model.Proposal, error) {
	pc, err := p.loadPassCtx(ctx)
	if err != nil {
		return nil, err
	}
	return p.planMaintenance(pc)
}

// ProposeServiceCheckMovements runs only the service-check branch.
func (p *Planner) ProposeServiceCheckMovements(ctx context.Context) ([]model.Proposal, error) {
	pc, err := p.loadPassCtx(ctx)
	if err != nil {
		return nil, err
	}
	return p.planServiceChecks(pc)
}

// PassResult is everything one planning pass produced. Proposals carry
// their validation verdicts; Payload holds the effects of the valid
// ones, ready for approval. BranchErrors records planner branches that
// degraded instead of contributing.
type PassResult struct {
	PassID    string
	TakenAt   time.Time
	Proposals []model.Proposal
	Accruals  []model.BrandingAccrual
	Payload   model.ApprovalPayload

	BranchErrors map[string]string
}

// branchOrder fixes the order proposals are reported in, whatever order
// the branches finish in.
var branchOrder = []string{"entrance", "cleaning", "maintenance", "service"}

// RunFullPlanningPass loads a snapshot and runs every planner branch
// against it concurrently. A failed branch is logged and dropped; only
// a failed snapshot load aborts the pass.
func (p *Planner) RunFullPlanningPass(ctx context.Context) (*PassResult, error) {
	snap, err := p.loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	pc := p.newPassCtx(snap)

	res := &PassResult{
		PassID:       uuid.NewString(),
		TakenAt:      snap.TakenAt,
		BranchErrors: make(map[string]string),
	}

	var (
		mu       sync.Mutex
		byBranch = make(map[string][]model.Proposal)
		g        errgroup.Group
	)
	run := func(name string, fn func(*passCtx) ([]model.Proposal, error)) {
		g.Go(func() error {
			props, err := fn(pc)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				p.log.Errorf("planning branch %s degraded: %v", name, err)
				res.BranchErrors[name] = err.Error()
				return nil
			}
			byBranch[name] = props
			return nil
		})
	}
	run("entrance", p.planEntrance)
	run("cleaning", p.planCleaningBranch)
	run("maintenance", p.planMaintenance)
	run("service", p.planServiceChecks)
	g.Go(func() error {
		accruals := p.planBranding(pc)
		mu.Lock()
		res.Accruals = accruals
		mu.Unlock()
		return nil
	})
	_ = g.Wait()

	for _, name := range branchOrder {
		res.Proposals = append(res.Proposals, byBranch[name]...)
	}
	res.Payload = p.buildPayload(res.Proposals, res.Accruals)

	p.log.Infof("planning pass %s: %d proposals, %d accruals, %d degraded branches",
		res.PassID, len(res.Proposals), len(res.Accruals), len(res.BranchErrors))
	return res, nil
}

// buildPayload folds the valid proposals into one approval payload.
// Invalid proposals stay visible on the pass result but contribute no
// effects. Log start times are staggered so the records land in a
// stable, human-readable order.
func (p *Planner) buildPayload(proposals []model.Proposal, accruals []model.BrandingAccrual) model.ApprovalPayload {
	var out model.ApprovalPayload
	for _, prop := range proposals {
		if !prop.Validation().Valid {
			continue
		}
		out.Logs = append(out.Logs, prop.Movement())
		switch v := prop.(type) {
		case model.MaintenanceProposal:
			out.WorkOrdersToClose = append(out.WorkOrdersToClose, model.WorkOrderRef{
				ID:        v.WorkOrder.ID,
				VehicleID: v.WorkOrder.VehicleID,
			})
		case model.CleaningProposal:
			for _, s := range v.Slots {
				out.CleaningSlots = append(out.CleaningSlots, model.SlotRef{
					Date: s.Date, Start: s.Start, End: s.End,
				})
			}
		case model.ServiceCheckProposal:
			out.ServiceChecks = append(out.ServiceChecks, model.ServiceCheckUpdate{
				VehicleID: v.VehicleID(),
				Kind:      v.Service,
			})
		}
	}
	out.BrandingAccruals = append(out.BrandingAccruals, accruals...)
	StaggerLogs(out.Logs, p.now(), p.cfg.Stagger)
	return out
}

// StaggerLogs rebases each record's start time to base plus its index
// times step, preserving durations.
func StaggerLogs(logs []model.MovementRecord, base time.Time, step time.Duration) {
	for i := range logs {
		d := logs[i].End.Sub(logs[i].Start)
		logs[i].Start = base.Add(time.Duration(i) * step)
		logs[i].End = logs[i].Start.Add(d)
	}
}
