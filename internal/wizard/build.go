package wizard

import (
	"fmt"

	"github.com/diunito/Oasis/internal/config"
	"github.com/diunito/Oasis/internal/util"
)

// Build assembles a validated Config from wizard answers, generating the
// team list and missing secrets.
func Build(a *Answers) (*config.Config, error) {
	cfg := &config.Config{
		VPNStartPort:        a.VPNStartPort,
		VPNProfilesPerTeam:  a.VPNProfilesPerTeam,
		ServerAddr:          a.ServerAddr,
		DNS:                 a.DNS,
		TickSeconds:         a.TickSeconds,
		FlagExpireTicks:     a.FlagExpireTicks,
		InitialServiceScore: a.InitialServiceScore,
		MaxFlagsPerRequest:  a.MaxFlagsPerRequest,
		SubmissionRateLimit: a.SubmissionRateLimit,
		BandwidthLimit:      a.BandwidthLimit,
		MaxVMCPUs:           a.MaxVMCPUs,
		MaxVMMemory:         a.MaxVMMemory,
		GameserverToken:     a.GameserverToken,
		Privileged:          !a.UseSysbox,
		StartTime:           a.StartTime,
		EndTime:             a.EndTime,
		Teams:               GenerateTeams(a.NumberOfTeams, a.EnableNopTeam, a.VPNStartPort),
	}
	if a.DiskLimit {
		cfg.MaxVMDiskSize = a.MaxVMDiskSize
	}
	if a.ExposeGameserver {
		cfg.GameserverExposed = a.GameserverEndpoint
	}
	if cfg.GameserverToken == "" {
		cfg.GameserverToken = util.Token(tokenBytes)
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("collected config is invalid: %w", errs[0])
	}
	return cfg, nil
}
