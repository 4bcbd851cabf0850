package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/diunito/Oasis/internal/config"
	"github.com/diunito/Oasis/internal/dockerx"
	"github.com/diunito/Oasis/internal/topology"
	"github.com/diunito/Oasis/internal/ui"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show deployment health and player endpoints",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	fmt.Println(ui.Bold("Oasis status"))

	if err := dockerx.Ping(ctx); err != nil {
		ui.StatusErr("docker", err.Error(), "is the daemon running and the socket accessible?")
		return err
	}
	ui.StatusOK("docker", "daemon reachable")

	if !config.Exists(config.DefaultPath) {
		ui.StatusErr("config", config.DefaultPath+" not found", "create a deployment with 'oasis start'")
		return nil
	}
	cfg, err := config.Load(config.DefaultPath)
	if err != nil {
		ui.StatusErr("config", err.Error(), "")
		return err
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		for _, e := range errs {
			ui.StatusErr("config", e.Error(), e.Suggestion)
		}
		return nil
	}
	playing := len(cfg.Teams)
	if cfg.NopTeam() != nil {
		playing--
	}
	ui.StatusOK("config", fmt.Sprintf("%d playing teams, %ds ticks", playing, cfg.TickSeconds))

	running, err := dockerx.GameserverRunning(ctx)
	if err != nil {
		return err
	}
	if running {
		ui.StatusOK("gameserver", "running")
	} else {
		ui.StatusErr("gameserver", "not running", "bring the deployment up with 'oasis start'")
	}

	topo, err := topology.Build(cfg)
	if err != nil {
		reportCompileError(err)
		return err
	}
	if len(topo.Endpoints) == 0 {
		return nil
	}

	fmt.Println()
	fmt.Println(ui.Bold("Endpoints"))
	for _, ep := range topo.Endpoints {
		label := ep.Service
		if ep.TeamID >= 0 {
			label = fmt.Sprintf("team %d vpn", ep.TeamID)
		}
		fmt.Printf("  %-14s %s %s\n", label, ep.Address, ui.Dim(ep.Protocol))
	}
	return nil
}
