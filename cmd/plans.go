package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/stagewatch/stagewatch/config"
	"github.com/stagewatch/stagewatch/infra/logger"
	"github.com/stagewatch/stagewatch/planning"
)

var plansCmd = &cobra.Command{
	Use:   "plans",
	Short: "Plan related commands",
}

var plansLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "Fetch and list upcoming plans",
	RunE:  runPlansLs,
}

func init() {
	plansCmd.AddCommand(plansLsCmd)
	rootCmd.AddCommand(plansCmd)
}

func runPlansLs(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	client := planning.NewClient(cfg.Planning, cfg.Schedule.LeadHoursByType(), cfg.Schedule.DefaultLeadHours, logger.New("plans-ls"))
	ids := make([]string, 0, len(cfg.Schedule.ServiceTypes))
	for _, st := range cfg.Schedule.ServiceTypes {
		ids = append(ids, st.ServiceTypeID)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	plans, err := client.FetchUpcomingPlans(ctx, ids, cfg.Schedule.WindowDays)
	if err != nil {
		return err
	}
	loc := cfg.Schedule.Location()
	for _, p := range plans {
		fmt.Printf("%s  %s  %s  (%d people)\n", p.PlanID, p.ServiceTime.In(loc).Format(time.RFC3339), p.Title, len(p.Assignments))
	}
	return nil
}
