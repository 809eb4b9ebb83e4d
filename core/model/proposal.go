package model

import "time"

// ProposalKind tags the variants of the proposal sum type.
type ProposalKind string

const (
	ProposalMaintenance   ProposalKind = "maintenance"
	ProposalLightClean    ProposalKind = "light_clean"
	ProposalDeepClean     ProposalKind = "deep_clean"
	ProposalAServiceCheck ProposalKind = "a_service_check"
	ProposalBServiceCheck ProposalKind = "b_service_check"
	ProposalSwapIn        ProposalKind = "entrance_swap_in"
	ProposalSwapOut       ProposalKind = "entrance_swap_out"
	ProposalNightReturn   ProposalKind = "entrance_night_return"
)

// Validation is the outcome of checking a movement record. Failures are
// attached to the proposal for the approver to surface or discard; they
// never abort a planning pass.
type Validation struct {
	Valid       bool
	Errors      []string
	Suggestions map[string][]string // field name -> candidate locations
}

// Proposal is an unapproved candidate mutation produced by a planner.
// Each variant carries a movement record plus its kind-specific side
// payload. Proposals live only in memory: a pass is cancelled by simply
// discarding them.
type Proposal interface {
	Kind() ProposalKind
	VehicleID() string
	Movement() MovementRecord
	Validation() Validation
}

// ProposalInfo is the part shared by every proposal variant.
type ProposalInfo struct {
	ID      string
	Vehicle string
	Record  MovementRecord
	Checks  Validation
}

func (p ProposalInfo) VehicleID() string        { return p.Vehicle }
func (p ProposalInfo) Movement() MovementRecord { return p.Record }
func (p ProposalInfo) Validation() Validation   { return p.Checks }

// MaintenanceProposal moves a vehicle to a maintenance bay and closes
// the referenced work order on commit.
type MaintenanceProposal struct {
	ProposalInfo
	WorkOrder WorkOrder
}

func (MaintenanceProposal) Kind() ProposalKind { return ProposalMaintenance }

// CleaningProposal moves a vehicle to a cleaning bay and occupies the
// allocated slots on commit.
type CleaningProposal struct {
	ProposalInfo
	Tier  CleanKind
	Slots []CleaningSlot
}

func (p CleaningProposal) Kind() ProposalKind {
	if p.Tier == CleanDeep {
		return ProposalDeepClean
	}
	return ProposalLightClean
}

// ServiceCheckProposal moves a vehicle to an inspection bay and stamps
// the new check date on commit.
type ServiceCheckProposal struct {
	ProposalInfo
	Service      ServiceKind
	NewCheckDate time.Time
}

func (p ServiceCheckProposal) Kind() ProposalKind {
	if p.Service == ServiceB {
		return ProposalBServiceCheck
	}
	return ProposalAServiceCheck
}

// EntrancePhase distinguishes the entrance planner's movement variants.
type EntrancePhase string

const (
	EntranceSwapIn      EntrancePhase = "swap_in"
	EntranceSwapOut     EntrancePhase = "swap_out"
	EntranceNightReturn EntrancePhase = "night_return"
)

// EntranceProposal swaps a vehicle into or out of the ready area, or
// returns it to stabling at night. It carries no side payload beyond
// the movement itself.
type EntranceProposal struct {
	ProposalInfo
	Phase EntrancePhase
}

func (p EntranceProposal) Kind() ProposalKind {
	switch p.Phase {
	case EntranceSwapOut:
		return ProposalSwapOut
	case EntranceNightReturn:
		return ProposalNightReturn
	}
	return ProposalSwapIn
}
