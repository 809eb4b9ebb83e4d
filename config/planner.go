package config

import (
	"fmt"
	"time"

	"github.com/railyard-ops/railyard/core/eligibility"
	"github.com/railyard-ops/railyard/core/plan"
)

// PlannerConfig tunes the planning pass: depot layout, ranking policy
// and the maintenance policy thresholds.
type PlannerConfig struct {
	DepotName    string `json:"depot_name"`
	StablingBays int    `json:"stabling_bays"`
	SlotsPerBay  int    `json:"slots_per_bay"`
	EntranceCap  int    `json:"entrance_cap"`

	// Policy is "brandingThenMileage" or "mileageOnly".
	Policy string `json:"policy"`

	LightCleanDays  int `json:"light_clean_days"`
	DeepCleanDays   int `json:"deep_clean_days"`
	AServiceMaxDays int `json:"a_service_max_days"`
	BServiceMaxDays int `json:"b_service_max_days"`
	StaggerSeconds  int `json:"stagger_seconds"`
}

// SetDefaults applies the standard depot layout and policy limits.
func (c *PlannerConfig) SetDefaults() {
	d := plan.DefaultDepot()
	if c.DepotName == "" {
		c.DepotName = d.Name
	}
	if c.StablingBays <= 0 {
		c.StablingBays = d.StablingBays
	}
	if c.SlotsPerBay <= 0 {
		c.SlotsPerBay = d.SlotsPerBay
	}
	if c.EntranceCap <= 0 {
		c.EntranceCap = d.EntranceCap
	}
	if c.Policy == "" {
		c.Policy = string(eligibility.PolicyBrandingThenMileage)
	}
	ct := plan.DefaultCleanThresholds()
	if c.LightCleanDays <= 0 {
		c.LightCleanDays = ct.LightDays
	}
	if c.DeepCleanDays <= 0 {
		c.DeepCleanDays = ct.DeepDays
	}
	et := eligibility.DefaultThresholds()
	if c.AServiceMaxDays <= 0 {
		c.AServiceMaxDays = et.AServiceMaxDays
	}
	if c.BServiceMaxDays <= 0 {
		c.BServiceMaxDays = et.BServiceMaxDays
	}
	if c.StaggerSeconds <= 0 {
		c.StaggerSeconds = 30
	}
}

// Validate checks the ranking policy.
func (c PlannerConfig) Validate() error {
	switch eligibility.Policy(c.Policy) {
	case eligibility.PolicyBrandingThenMileage, eligibility.PolicyMileageOnly:
		return nil
	}
	return fmt.Errorf("unknown policy %q", c.Policy)
}

// Depot builds the depot layout.
func (c PlannerConfig) Depot() plan.Depot {
	return plan.Depot{
		Name:         c.DepotName,
		StablingBays: c.StablingBays,
		SlotsPerBay:  c.SlotsPerBay,
		EntranceCap:  c.EntranceCap,
	}
}

// PlanConfig builds the planner tuning block.
func (c PlannerConfig) PlanConfig() plan.Config {
	return plan.Config{
		Depot:   c.Depot(),
		Policy:  eligibility.Policy(c.Policy),
		Clean:   plan.CleanThresholds{LightDays: c.LightCleanDays, DeepDays: c.DeepCleanDays},
		Stagger: time.Duration(c.StaggerSeconds) * time.Second,
	}
}

// Thresholds builds the eligibility thresholds.
func (c PlannerConfig) Thresholds() eligibility.Thresholds {
	return eligibility.Thresholds{
		AServiceMaxDays: c.AServiceMaxDays,
		BServiceMaxDays: c.BServiceMaxDays,
	}
}
