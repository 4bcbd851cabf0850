package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/diunito/Oasis/internal/config"
	"github.com/diunito/Oasis/internal/dockerx"
	"github.com/diunito/Oasis/internal/topology"
	"github.com/diunito/Oasis/internal/ui"
)

var restartLogs bool

var restartCmd = &cobra.Command{
	Use:   "restart",
	Short: "Restart the running deployment in place",
	Long: `Renders the current config and restarts every container of the project.
Images are not rebuilt; use 'oasis stop' then 'oasis start' to apply
image changes. Refuses to run when the deployment is down.`,
	RunE: runRestart,
}

func init() {
	rootCmd.AddCommand(restartCmd)

	restartCmd.Flags().BoolVar(&restartLogs, "logs", false, "follow compose logs after restarting")
}

func runRestart(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if err := dockerx.Ping(ctx); err != nil {
		fmt.Fprint(os.Stderr, ui.FormatError("Docker unavailable", err.Error(), "is the daemon running and the socket accessible?"))
		return err
	}
	if !config.Exists(config.DefaultPath) {
		fmt.Fprint(os.Stderr, ui.FormatError("Nothing to restart", config.DefaultPath+" not found", "create a deployment with 'oasis start'"))
		return errors.New("no stored config")
	}
	cfg, err := config.Load(config.DefaultPath)
	if err != nil {
		return err
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprint(os.Stderr, ui.FormatError("Invalid "+e.Field, e.Message, e.Suggestion))
		}
		return fmt.Errorf("%s is invalid", config.DefaultPath)
	}

	running, err := dockerx.GameserverRunning(ctx)
	if err != nil {
		return err
	}
	if !running {
		fmt.Fprint(os.Stderr, ui.FormatError("Nothing to restart", "the gameserver container is not running", "bring the deployment up with 'oasis start'"))
		return errors.New("deployment not running")
	}

	artifact, err := topology.Compile(cfg)
	if err != nil {
		reportCompileError(err)
		return err
	}
	if err := os.WriteFile(composeFileName, []byte(artifact), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", composeFileName, err)
	}
	if !cfg.Debug {
		defer os.Remove(composeFileName)
	}

	ui.Step("Restarting the deployment...")
	if err := dockerx.Compose(composeFileName, "restart"); err != nil {
		return fmt.Errorf("compose restart: %w", err)
	}
	ui.Success("Deployment restarted")

	if restartLogs {
		return dockerx.Compose("", "logs", "-f")
	}
	return nil
}
