package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/diunito/Oasis/internal/config"
	"github.com/diunito/Oasis/internal/dockerx"
	"github.com/diunito/Oasis/internal/topology"
	"github.com/diunito/Oasis/internal/ui"
)

var composeCmd = &cobra.Command{
	Use:   "compose [compose args...]",
	Short: "Run docker compose against the compiled topology",
	Long: `Compiles config.json and forwards the arguments to docker compose with
the rendered file, e.g. 'oasis compose ps' or 'oasis compose logs router'.`,
	DisableFlagParsing: true,
	RunE:               runCompose,
}

func init() {
	rootCmd.AddCommand(composeCmd)
}

func runCompose(cmd *cobra.Command, args []string) error {
	if !config.Exists(config.DefaultPath) {
		fmt.Fprint(os.Stderr, ui.FormatError("No config", config.DefaultPath+" not found", "create one with 'oasis start --config-only'"))
		return fmt.Errorf("%s not found", config.DefaultPath)
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

	return dockerx.Compose(composeFileName, args...)
}
