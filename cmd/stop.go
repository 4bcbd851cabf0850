package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/diunito/Oasis/internal/dockerx"
	"github.com/diunito/Oasis/internal/ui"
)

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the deployment",
	Long:  "Takes the whole compose project down. VM disks and the database volume survive a stop.",
	RunE:  runStop,
}

func init() {
	rootCmd.AddCommand(stopCmd)
}

func runStop(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if err := dockerx.Ping(ctx); err != nil {
		fmt.Fprint(os.Stderr, ui.FormatError("Docker unavailable", err.Error(), "is the daemon running and the socket accessible?"))
		return err
	}
	running, err := dockerx.GameserverRunning(ctx)
	if err != nil {
		return err
	}
	if !running {
		fmt.Fprint(os.Stderr, ui.FormatError("Nothing to stop", "the gameserver container is not running", "start a deployment with 'oasis start'"))
		return errors.New("deployment not running")
	}
	return composeDown()
}

// composeDown stops every container of the project, by project name so no
// rendered compose file is needed.
func composeDown() error {
	ui.Step("Stopping the deployment...")
	if err := dockerx.Compose("", "down", "--remove-orphans"); err != nil {
		return fmt.Errorf("compose down: %w", err)
	}
	ui.Success("Deployment stopped")
	return nil
}
