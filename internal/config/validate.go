package config

import (
	"fmt"
	"net"
	"strconv"
	"time"

	units "github.com/docker/go-units"

	"github.com/diunito/Oasis/internal/netalloc"
)

// ValidationError reports a malformed or out-of-range config field with a
// suggested fix.
type ValidationError struct {
	Field      string // dotted path, e.g. "teams[2].id"
	Message    string
	Suggestion string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks every config invariant and returns all violations.
// Address/port space exhaustion is not checked here; the compiler reports
// it as an AllocationError before emitting anything.
func (c *Config) Validate() []*ValidationError {
	var errs []*ValidationError
	fail := func(field, message, suggestion string) {
		errs = append(errs, &ValidationError{Field: field, Message: message, Suggestion: suggestion})
	}

	if c.VPNStartPort < 1 || c.VPNStartPort > 65535 {
		fail("wireguard_start_port",
			fmt.Sprintf("port %d out of range [1, 65535]", c.VPNStartPort),
			"pick an unprivileged base port such as 51000")
	}
	if c.VPNProfilesPerTeam < 1 {
		fail("wireguard_profiles", "must be a positive integer", "")
	}
	if c.ServerAddr == "" {
		fail("server_addr", "public server address is required",
			"set the address players will use to reach the VPN")
	}
	if c.DNS == "" {
		fail("dns", "DNS server is required", "1.1.1.1 is a reasonable default")
	}
	if c.TickSeconds < 1 {
		fail("tick_time", "tick duration must be at least one second", "")
	}
	if c.FlagExpireTicks < 1 {
		fail("flag_expire_ticks", "flags must live for at least one tick", "")
	}
	if c.SubmissionRateLimit < 0 {
		fail("submission_timeout", "rate limit cannot be negative", "")
	}
	if c.BandwidthLimit == "" {
		fail("network_limit_bandwidth", "bandwidth limit is required",
			"use a tc rate such as 20mbit")
	}

	if _, err := strconv.ParseFloat(c.MaxVMCPUs, 64); err != nil {
		fail("max_vm_cpus", fmt.Sprintf("%q is not a CPU count", c.MaxVMCPUs), "")
	}
	if _, err := units.RAMInBytes(c.MaxVMMemory); err != nil {
		fail("max_vm_mem", fmt.Sprintf("%q is not a memory size", c.MaxVMMemory),
			"use a size such as 2G")
	}
	if c.MaxVMDiskSize != "" {
		if _, err := units.RAMInBytes(c.MaxVMDiskSize); err != nil {
			fail("max_disk_size", fmt.Sprintf("%q is not a disk size", c.MaxVMDiskSize),
				"use a size such as 30G")
		}
	}

	start, end := time.Time{}, time.Time{}
	if c.StartTime != "" {
		var err error
		if start, err = time.Parse(time.RFC3339, c.StartTime); err != nil {
			fail("start_time", fmt.Sprintf("%q is not RFC 3339", c.StartTime),
				"use a timestamp such as 2026-09-01T10:00:00+02:00")
		}
	}
	if c.EndTime != "" {
		var err error
		if end, err = time.Parse(time.RFC3339, c.EndTime); err != nil {
			fail("end_time", fmt.Sprintf("%q is not RFC 3339", c.EndTime), "")
		}
	}
	if !start.IsZero() && !end.IsZero() && !start.Before(end) {
		fail("end_time", "end time must be after start time", "")
	}

	if c.GameserverExposed != "" {
		if err := checkExposedEndpoint(c.GameserverExposed); err != nil {
			fail("gameserver_exposed_port", err.Error(), "use PORT or HOST:PORT")
		}
	}

	errs = append(errs, c.validateTeams()...)
	return errs
}

func (c *Config) validateTeams() []*ValidationError {
	var errs []*ValidationError
	fail := func(field, message, suggestion string) {
		errs = append(errs, &ValidationError{Field: field, Message: message, Suggestion: suggestion})
	}

	if len(c.Teams) >= netalloc.MaxTeamID {
		fail("teams", fmt.Sprintf("%d teams exceed the %d-team ceiling",
			len(c.Teams), netalloc.MaxTeamID), "")
		return errs
	}

	nops := 0
	for i, team := range c.Teams {
		field := fmt.Sprintf("teams[%d]", i)
		if team.ID != i {
			fail(field+".id",
				fmt.Sprintf("id %d at position %d; ids must be dense from 0", team.ID, i), "")
		}
		if team.Nop {
			nops++
			if team.ID != 0 {
				fail(field+".nop", "the nop team must have id 0", "")
			}
		}
		if team.Token == "" {
			fail(field+".token", "team secret token is required", "")
		}
		if want := c.VPNStartPort + team.ID; team.VPNPort != want {
			fail(field+".wireguard_port",
				fmt.Sprintf("port %d does not match start+id (%d)", team.VPNPort, want),
				"regenerate the team list after changing the start port")
		}
	}
	if nops > 1 {
		fail("teams", fmt.Sprintf("%d nop teams configured, at most one allowed", nops), "")
	}
	return errs
}

func checkExposedEndpoint(s string) error {
	portStr := s
	if _, p, err := net.SplitHostPort(s); err == nil {
		portStr = p
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("%q is not a valid port or host:port", s)
	}
	return nil
}
