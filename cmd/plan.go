package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/railyard-ops/railyard/config"
	"github.com/railyard-ops/railyard/core/eligibility"
	"github.com/railyard-ops/railyard/core/plan"
	"github.com/railyard-ops/railyard/core/snapshot"
	"github.com/railyard-ops/railyard/infra/logger"
	infrastore "github.com/railyard-ops/railyard/infra/store"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Run one planning pass and print the result without committing",
	RunE:  runPlan,
}

func init() {
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	st, err := infrastore.NewHTTPStore(cfg.Store, nil)
	if err != nil {
		return err
	}
	loader, err := snapshot.NewLoader(st, nil, snapshot.DefaultTTLs(), logger.New("snapshot"))
	if err != nil {
		return err
	}
	filter := &eligibility.Filter{Thresholds: cfg.Planner.Thresholds()}
	planner := plan.NewPlanner(loader, filter, cfg.Planner.PlanConfig(), logger.New("planner"))

	res, err := planner.RunFullPlanningPass(context.Background())
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]any{
		"pass_id":       res.PassID,
		"taken_at":      res.TakenAt,
		"proposals":     len(res.Proposals),
		"payload":       res.Payload,
		"accruals":      res.Accruals,
		"branch_errors": res.BranchErrors,
	})
}
