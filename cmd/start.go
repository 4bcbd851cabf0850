package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/diunito/Oasis/internal/config"
	"github.com/diunito/Oasis/internal/dockerx"
	"github.com/diunito/Oasis/internal/topology"
	"github.com/diunito/Oasis/internal/ui"
	"github.com/diunito/Oasis/internal/wizard"
)

// composeFileName is where the rendered artifact is written before handing
// it to docker compose. Removed after use unless the config enables debug.
const composeFileName = "oasis-compose-tmp-file.yml"

var (
	startToken      string
	startStartTime  string
	startEndTime    string
	startPrivileged bool
	startExpose     bool
	startDiskLimit  bool
	startConfigOnly bool
	startYes        bool
	startLogs       bool
	startDebug      bool
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Collect the config and bring the deployment up",
	Long: `Builds config.json if missing (interactively, or from flags with --yes),
compiles it into a compose file and starts every container.

A config.json already on disk is reused as-is; flags only apply when the
config is created.`,
	RunE: runStart,
}

func init() {
	rootCmd.AddCommand(startCmd)

	f := startCmd.Flags()
	f.Int("number-of-teams", 4, "playing teams to provision")
	f.Bool("enable-nop-team", false, "add a passive baseline team as id 0")
	f.Int("wireguard-start-port", 51000, "first VPN port, team i publishes start+i")
	f.Int("wireguard-profiles", 30, "VPN profiles generated per team")
	f.String("server-addr", "", "public address players connect to")
	f.String("dns", "1.1.1.1", "DNS server pushed to VPN clients")
	f.Int("tick-time", 120, "tick duration in seconds")
	f.Int("flag-expire-ticks", 5, "ticks before a flag expires")
	f.Int("initial-service-score", 5000, "starting score per service")
	f.Int("max-flags-per-request", 3000, "flags accepted per submission")
	f.Float64("submission-timeout", 0.03, "seconds enforced between submissions")
	f.String("network-limit-bandwidth", "20mbit", "tc rate applied per team")
	f.String("max-vm-cpus", "1", "CPU limit per team VM")
	f.String("max-vm-mem", "2G", "memory limit per team VM")
	f.String("max-disk-size", "30G", "disk quota per team VM")
	f.String("gameserver-port", "127.0.0.1:8888", "HOST:PORT to publish the scoreboard on")

	for flag, key := range map[string]string{
		"number-of-teams":         "number_of_teams",
		"enable-nop-team":         "enable_nop_team",
		"wireguard-start-port":    "wireguard_start_port",
		"wireguard-profiles":      "wireguard_profiles",
		"server-addr":             "server_addr",
		"dns":                     "dns",
		"tick-time":               "tick_time",
		"flag-expire-ticks":       "flag_expire_ticks",
		"initial-service-score":   "initial_service_score",
		"max-flags-per-request":   "max_flags_per_request",
		"submission-timeout":      "submission_timeout",
		"network-limit-bandwidth": "network_limit_bandwidth",
		"max-vm-cpus":             "max_vm_cpus",
		"max-vm-mem":              "max_vm_mem",
		"max-disk-size":           "max_disk_size",
		"gameserver-port":         "gameserver_port",
	} {
		_ = viper.BindPFlag(key, f.Lookup(flag))
	}

	f.StringVar(&startToken, "gameserver-token", "", "gameserver API token (empty generates one)")
	f.StringVar(&startStartTime, "start-time", "", "competition start, RFC 3339 (empty for manual start)")
	f.StringVar(&startEndTime, "end-time", "", "competition end, RFC 3339")
	f.BoolVarP(&startPrivileged, "privileged", "P", false, "run team VMs privileged instead of under sysbox")
	f.BoolVarP(&startExpose, "expose-gameserver", "E", false, "publish the scoreboard on gameserver-port")
	f.BoolVarP(&startDiskLimit, "disk-limit", "D", true, "enforce per-VM disk quotas (needs XFS with quotas)")
	f.BoolVarP(&startConfigOnly, "config-only", "C", false, "write config.json and exit without starting")
	f.BoolVarP(&startYes, "yes", "y", false, "accept defaults and flags, skip the wizard")
	f.BoolVar(&startLogs, "logs", false, "follow compose logs after starting")
	f.BoolVar(&startDebug, "debug", false, "keep the rendered compose file and enable debug mode")
}

func runStart(cmd *cobra.Command, args []string) error {
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
		fmt.Fprint(os.Stderr, ui.FormatError("Deployment already running", "", "use 'oasis restart' to apply changes, or 'oasis stop' first"))
		return errors.New("deployment already running")
	}

	cfg, err := loadOrCollect()
	if err != nil {
		return err
	}

	if startConfigOnly {
		return nil
	}
	if err := startDeployment(ctx, cfg); err != nil {
		return err
	}
	if startLogs {
		return dockerx.Compose("", "logs", "-f")
	}
	return nil
}

// loadOrCollect returns the config to deploy: the persisted one when
// present, otherwise a fresh one collected from defaults, flags and the
// wizard, persisted before returning.
func loadOrCollect() (*config.Config, error) {
	if config.Exists(config.DefaultPath) {
		cfg, err := config.Load(config.DefaultPath)
		if err != nil {
			fmt.Fprint(os.Stderr, ui.FormatError("Failed to load "+config.DefaultPath, err.Error(), "fix or remove the file and rerun"))
			return nil, err
		}
		if errs := cfg.Validate(); len(errs) > 0 {
			for _, e := range errs {
				fmt.Fprint(os.Stderr, ui.FormatError("Invalid "+e.Field, e.Message, e.Suggestion))
			}
			return nil, fmt.Errorf("%s is invalid", config.DefaultPath)
		}
		ui.Success("Using existing " + config.DefaultPath)
		return cfg, nil
	}

	defaults, err := config.LoadDefaults()
	if err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	a := wizard.FromDefaults(defaults)
	a.StartTime = startStartTime
	a.EndTime = startEndTime
	a.GameserverToken = startToken
	a.DiskLimit = startDiskLimit
	if startYes {
		a.ExposeGameserver = startExpose
		a.UseSysbox = !startPrivileged
	} else {
		if startExpose {
			a.ExposeGameserver = true
		}
		if startPrivileged {
			a.UseSysbox = false
		}
		if err := wizard.Run(a); err != nil {
			return nil, err
		}
	}

	cfg, err := wizard.Build(a)
	if err != nil {
		reportCompileError(err)
		return nil, err
	}
	cfg.Debug = startDebug

	if err := cfg.Save(config.DefaultPath); err != nil {
		return nil, err
	}
	ui.Success("Wrote " + config.DefaultPath)
	return cfg, nil
}

// startDeployment runs the full bring-up for an already validated config:
// isolation runtime check, VM base image chain, compile, compose up.
func startDeployment(ctx context.Context, cfg *config.Config) error {
	if !cfg.Privileged {
		ok, err := dockerx.RuntimeAvailable(ctx, topology.SysboxRuntime)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprint(os.Stderr, ui.FormatError(
				"sysbox runtime not available",
				"team VMs run under "+topology.SysboxRuntime+" unless the config says otherwise",
				"install sysbox, or rerun with --privileged (weaker isolation, not for production)"))
			return fmt.Errorf("runtime %s not registered with the daemon", topology.SysboxRuntime)
		}
	}

	if len(cfg.Teams) > 0 {
		if err := ensureVMBaseImage(ctx, cfg.Privileged); err != nil {
			return err
		}
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

	ui.Step("Starting the deployment, the first run builds every image...")
	if err := dockerx.Compose(composeFileName, "up", "-d", "--build", "--remove-orphans"); err != nil {
		return fmt.Errorf("compose up: %w", err)
	}
	ui.Success("Deployment is up")
	fmt.Println(ui.Hint("run 'oasis status' for the team endpoints"))
	return nil
}

// ensureVMBaseImage builds the VM base image when missing: build the
// prebuilder image, run it once in a named container under the deployment's
// isolation runtime, commit the result.
func ensureVMBaseImage(ctx context.Context, privileged bool) error {
	exists, err := dockerx.ImageExists(ctx, dockerx.PrebuiltImage)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	ui.Step("Building the VM base image, this happens once...")
	if err := dockerx.BuildImage(dockerx.PrebuilderImage, "./vm/Dockerfile.prebuilder", "./vm"); err != nil {
		return fmt.Errorf("building prebuilder image: %w", err)
	}
	defer dockerx.KillContainer(dockerx.PrebuildContainer)
	if err := dockerx.RemoveContainer(ctx, dockerx.PrebuildContainer); err != nil {
		return err
	}
	if err := dockerx.RunPrebuilder(privileged); err != nil {
		return fmt.Errorf("running prebuilder: %w", err)
	}
	if err := dockerx.CommitPrebuilt(); err != nil {
		return fmt.Errorf("committing VM base image: %w", err)
	}
	return dockerx.RemoveContainer(ctx, dockerx.PrebuildContainer)
}

// reportCompileError prints compiler and validation failures with their
// suggestion when one is attached.
func reportCompileError(err error) {
	var verr *config.ValidationError
	if errors.As(err, &verr) {
		fmt.Fprint(os.Stderr, ui.FormatError("Invalid "+verr.Field, verr.Message, verr.Suggestion))
		return
	}
	fmt.Fprint(os.Stderr, ui.FormatError("Cannot compile the topology", err.Error(), ""))
}
