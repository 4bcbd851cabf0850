// Package wizard collects the competition parameters interactively and
// turns the answers into a validated config.
package wizard

import (
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/diunito/Oasis/internal/config"
	"github.com/diunito/Oasis/internal/netalloc"
)

// Answers holds every user response. Numeric fields are kept as entered;
// Build parses and assembles them into a Config.
type Answers struct {
	NumberOfTeams int
	EnableNopTeam bool

	VPNStartPort       int
	VPNProfilesPerTeam int
	ServerAddr         string
	DNS                string

	StartTime string
	EndTime   string

	TickSeconds         int
	FlagExpireTicks     int
	InitialServiceScore int
	MaxFlagsPerRequest  int
	SubmissionRateLimit float64

	BandwidthLimit string
	MaxVMCPUs      string
	MaxVMMemory    string
	DiskLimit      bool
	MaxVMDiskSize  string

	ExposeGameserver   bool
	GameserverEndpoint string
	GameserverToken    string

	UseSysbox bool
}

// FromDefaults pre-fills answers from the defaults layer. Disk limits,
// scoreboard exposure and sysbox start enabled; callers flip them from
// flags or the form.
func FromDefaults(defaults *config.Defaults) *Answers {
	return &Answers{
		NumberOfTeams:       defaults.NumberOfTeams,
		EnableNopTeam:       defaults.EnableNopTeam,
		VPNStartPort:        defaults.VPNStartPort,
		VPNProfilesPerTeam:  defaults.VPNProfilesPerTeam,
		ServerAddr:          defaults.ServerAddr,
		DNS:                 defaults.DNS,
		TickSeconds:         defaults.TickSeconds,
		FlagExpireTicks:     defaults.FlagExpireTicks,
		InitialServiceScore: defaults.InitialServiceScore,
		MaxFlagsPerRequest:  defaults.MaxFlagsPerRequest,
		SubmissionRateLimit: defaults.SubmissionRateLimit,
		BandwidthLimit:      defaults.BandwidthLimit,
		MaxVMCPUs:           defaults.MaxVMCPUs,
		MaxVMMemory:         defaults.MaxVMMemory,
		DiskLimit:           true,
		MaxVMDiskSize:       defaults.MaxVMDiskSize,
		ExposeGameserver:    true,
		GameserverEndpoint:  defaults.GameserverEndpoint,
		UseSysbox:           true,
	}
}

// Run executes the interactive wizard over pre-filled answers, updating
// them in place.
func Run(a *Answers) error {
	teams := strconv.Itoa(a.NumberOfTeams)
	startPort := strconv.Itoa(a.VPNStartPort)
	profiles := strconv.Itoa(a.VPNProfilesPerTeam)
	tick := strconv.Itoa(a.TickSeconds)
	expire := strconv.Itoa(a.FlagExpireTicks)
	score := strconv.Itoa(a.InitialServiceScore)
	maxFlags := strconv.Itoa(a.MaxFlagsPerRequest)
	rateLimit := strconv.FormatFloat(a.SubmissionRateLimit, 'f', -1, 64)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Number of teams").
				Description(fmt.Sprintf("Playing teams, 0 to %d.", netalloc.MaxTeamID-1)).
				Validate(intInRange(0, netalloc.MaxTeamID-1)).
				Value(&teams),
			huh.NewConfirm().
				Title("Enable nop team?").
				Description("A passive team used as scoring baseline, no player access.").
				Value(&a.EnableNopTeam),
			huh.NewInput().
				Title("WireGuard start port").
				Description("Each team publishes start+id.").
				Validate(intInRange(1, 65535)).
				Value(&startPort),
			huh.NewInput().
				Title("WireGuard profiles per team").
				Validate(intInRange(1, 1000)).
				Value(&profiles),
			huh.NewInput().
				Title("Server address").
				Description("Public address players use to reach the VPN.").
				Validate(required("server address")).
				Value(&a.ServerAddr),
			huh.NewInput().
				Title("DNS server").
				Value(&a.DNS),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Start time").
				Description("RFC 3339, e.g. 2026-09-01T10:00:00+02:00. Empty for manual start.").
				Validate(optionalRFC3339).
				Value(&a.StartTime),
			huh.NewInput().
				Title("End time").
				Description("RFC 3339. Empty for no scheduled end.").
				Validate(optionalRFC3339).
				Value(&a.EndTime),
			huh.NewInput().
				Title("Tick duration (seconds)").
				Validate(intInRange(1, 86400)).
				Value(&tick),
			huh.NewInput().
				Title("Flag expiry (ticks)").
				Validate(intInRange(1, 10000)).
				Value(&expire),
			huh.NewInput().
				Title("Initial service score").
				Validate(intInRange(0, 1<<30)).
				Value(&score),
			huh.NewInput().
				Title("Max flags per submission").
				Validate(intInRange(1, 1<<20)).
				Value(&maxFlags),
			huh.NewInput().
				Title("Submission rate limit (seconds)").
				Validate(nonNegativeFloat).
				Value(&rateLimit),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Bandwidth limit").
				Description("tc rate applied per team, e.g. 20mbit.").
				Validate(required("bandwidth limit")).
				Value(&a.BandwidthLimit),
			huh.NewInput().
				Title("Max VM CPUs").
				Value(&a.MaxVMCPUs),
			huh.NewInput().
				Title("Max VM memory").
				Value(&a.MaxVMMemory),
			huh.NewConfirm().
				Title("Enable disk limit?").
				Description("Requires an XFS filesystem with quotas enabled.").
				Value(&a.DiskLimit),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Expose the scoreboard externally?").
				Value(&a.ExposeGameserver),
			huh.NewInput().
				Title("Gameserver token").
				Description("Empty generates a random one.").
				Value(&a.GameserverToken),
			huh.NewConfirm().
				Title("Run VMs under sysbox?").
				Description("Hardened isolation against container escape. Answering no runs VMs privileged — do not use that in production.").
				Value(&a.UseSysbox),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}

	if a.DiskLimit {
		sizeForm := huh.NewForm(huh.NewGroup(
			huh.NewInput().Title("Max VM disk size").Value(&a.MaxVMDiskSize),
		))
		if err := sizeForm.Run(); err != nil {
			return err
		}
	}
	if a.ExposeGameserver {
		epForm := huh.NewForm(huh.NewGroup(
			huh.NewInput().
				Title("Scoreboard endpoint").
				Description("PORT or HOST:PORT to publish the scoreboard on.").
				Value(&a.GameserverEndpoint),
		))
		if err := epForm.Run(); err != nil {
			return err
		}
	}

	a.NumberOfTeams, _ = strconv.Atoi(teams)
	a.VPNStartPort, _ = strconv.Atoi(startPort)
	a.VPNProfilesPerTeam, _ = strconv.Atoi(profiles)
	a.TickSeconds, _ = strconv.Atoi(tick)
	a.FlagExpireTicks, _ = strconv.Atoi(expire)
	a.InitialServiceScore, _ = strconv.Atoi(score)
	a.MaxFlagsPerRequest, _ = strconv.Atoi(maxFlags)
	a.SubmissionRateLimit, _ = strconv.ParseFloat(rateLimit, 64)

	return nil
}

func intInRange(lo, hi int) func(string) error {
	return func(s string) error {
		v, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("enter a number")
		}
		if v < lo || v > hi {
			return fmt.Errorf("must be between %d and %d", lo, hi)
		}
		return nil
	}
}

func nonNegativeFloat(s string) error {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return fmt.Errorf("enter a non-negative number")
	}
	return nil
}

func required(what string) func(string) error {
	return func(s string) error {
		if s == "" {
			return fmt.Errorf("%s is required", what)
		}
		return nil
	}
}

func optionalRFC3339(s string) error {
	if s == "" {
		return nil
	}
	if _, err := time.Parse(time.RFC3339, s); err != nil {
		return fmt.Errorf("not an RFC 3339 timestamp")
	}
	return nil
}
