package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/diunito/Oasis/internal/config"
	"github.com/diunito/Oasis/internal/dockerx"
	"github.com/diunito/Oasis/internal/topology"
	"github.com/diunito/Oasis/internal/ui"
)

var (
	clearAll              bool
	clearConfigFile       bool
	clearPrebuildCont     bool
	clearPrebuilderImg    bool
	clearPrebuiltImg      bool
	clearWireguardData    bool
	clearCheckersData     bool
	clearGameserverVolume bool
)

// clearSelection is what a clear run will remove.
type clearSelection struct {
	configFile       bool
	prebuildCont     bool
	prebuilderImg    bool
	prebuiltImg      bool
	wireguardData    bool
	checkersData     bool
	gameserverVolume bool
}

func (s clearSelection) empty() bool {
	return s == clearSelection{}
}

// everythingSelection selects all stored data; the config file only when
// withConfig is set. Running clear with no flags removes everything except
// the config, so a fresh start reuses the same teams and tokens.
func everythingSelection(withConfig bool) clearSelection {
	return clearSelection{
		configFile:       withConfig,
		prebuildCont:     true,
		prebuilderImg:    true,
		prebuiltImg:      true,
		wireguardData:    true,
		checkersData:     true,
		gameserverVolume: true,
	}
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove stored competition data",
	Long: `Removes what a deployment leaves behind: the VM base image chain,
WireGuard profiles, checker state and the database volume. With no flags
everything except ` + config.DefaultPath + ` is removed, after confirmation;
flags select individual pieces. Refuses to run while the deployment is up.`,
	RunE: runClear,
}

func init() {
	rootCmd.AddCommand(clearCmd)

	f := clearCmd.Flags()
	f.BoolVarP(&clearAll, "all", "A", false, "remove everything, config included (asks for confirmation)")
	f.BoolVar(&clearConfigFile, "config-file", false, "remove "+config.DefaultPath)
	f.BoolVarP(&clearPrebuildCont, "prebuild-container", "P", false, "remove the prebuild container")
	f.BoolVarP(&clearPrebuilderImg, "prebuilder-image", "B", false, "remove the prebuilder image")
	f.BoolVarP(&clearPrebuiltImg, "prebuilt-image", "I", false, "remove the VM base image")
	f.BoolVarP(&clearWireguardData, "wireguard", "W", false, "remove generated WireGuard profiles")
	f.BoolVarP(&clearCheckersData, "checkers-data", "C", false, "remove stored checker flag ids")
	f.BoolVarP(&clearGameserverVolume, "gameserver-data", "G", false, "remove the database volume (scores, flags)")
}

func runClear(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if err := dockerx.Ping(ctx); err != nil {
		fmt.Fprint(os.Stderr, ui.FormatError("Docker unavailable", err.Error(), "is the daemon running and the socket accessible?"))
		return err
	}
	running, err := dockerx.GameserverRunning(ctx)
	if err != nil {
		return err
	}
	if running {
		fmt.Fprint(os.Stderr, ui.FormatError("Deployment is running", "refusing to remove data under a live deployment", "stop it first with 'oasis stop'"))
		return errors.New("deployment running")
	}

	sel := clearSelection{
		configFile:       clearConfigFile,
		prebuildCont:     clearPrebuildCont,
		prebuilderImg:    clearPrebuilderImg,
		prebuiltImg:      clearPrebuiltImg,
		wireguardData:    clearWireguardData,
		checkersData:     clearCheckersData,
		gameserverVolume: clearGameserverVolume,
	}
	switch {
	case clearAll:
		ok, err := confirm("Remove ALL Oasis data?",
			"VM base images, WireGuard profiles, checker state, the database volume AND "+config.DefaultPath+". This cannot be undone.")
		if err != nil || !ok {
			return err
		}
		sel = everythingSelection(true)
	case sel.empty():
		ok, err := confirm("Remove all data except "+config.DefaultPath+"?",
			"VM base images, WireGuard profiles, checker state and the database volume. This cannot be undone.")
		if err != nil || !ok {
			return err
		}
		sel = everythingSelection(false)
	}

	return clearData(ctx, sel)
}

func confirm(title, description string) (bool, error) {
	confirmed := false
	form := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(title).
			Description(description).
			Value(&confirmed),
	))
	if err := form.Run(); err != nil {
		return false, err
	}
	return confirmed, nil
}

func clearData(ctx context.Context, sel clearSelection) error {
	var failed []error

	if sel.configFile {
		if err := os.Remove(config.DefaultPath); err != nil && !os.IsNotExist(err) {
			failed = append(failed, err)
		} else {
			ui.Success("Removed " + config.DefaultPath)
		}
	}
	if sel.prebuildCont {
		if err := dockerx.RemoveContainer(ctx, dockerx.PrebuildContainer); err != nil {
			failed = append(failed, err)
		} else {
			ui.Success("Removed container " + dockerx.PrebuildContainer)
		}
	}
	if sel.prebuilderImg {
		if err := dockerx.RemoveImage(ctx, dockerx.PrebuilderImage); err != nil {
			failed = append(failed, err)
		} else {
			ui.Success("Removed image " + dockerx.PrebuilderImage)
		}
	}
	if sel.prebuiltImg {
		if err := dockerx.RemoveImage(ctx, dockerx.PrebuiltImage); err != nil {
			failed = append(failed, err)
		} else {
			ui.Success("Removed image " + dockerx.PrebuiltImage)
		}
	}
	if sel.wireguardData {
		if err := removeGlob("./wireguard/conf*"); err != nil {
			failed = append(failed, err)
		} else {
			ui.Success("Removed WireGuard profiles")
		}
	}
	if sel.checkersData {
		if err := removeGlob("./game_server/checkers/*/flag_ids"); err != nil {
			failed = append(failed, err)
		} else {
			ui.Success("Removed checker flag ids")
		}
	}
	if sel.gameserverVolume {
		// compose namespaces project volumes as <project>_<name>
		volume := topology.ProjectName + "_" + topology.DatabaseVolume
		if err := dockerx.RemoveVolume(ctx, volume); err != nil {
			failed = append(failed, err)
		} else {
			ui.Success("Removed volume " + volume)
		}
	}

	for _, err := range failed {
		fmt.Fprint(os.Stderr, ui.FormatError("Clear failed", err.Error(), ""))
	}
	if len(failed) > 0 {
		return fmt.Errorf("%d removal(s) failed", len(failed))
	}
	return nil
}

func removeGlob(pattern string) error {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return err
	}
	for _, m := range matches {
		if err := os.RemoveAll(m); err != nil {
			return err
		}
	}
	return nil
}
