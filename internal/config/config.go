// Package config holds the competition configuration: global network and
// scoring parameters plus the ordered team list. A Config is built once per
// run — from the stored file or from the wizard — and is immutable from the
// compiler's point of view.
package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// DefaultPath is the persisted config location. The gameserver container
// mounts this exact file, so both the path and the JSON field names below
// are part of its contract.
const DefaultPath = "config.json"

// PinEntry ties a player PIN to one of the team's VPN profiles. The
// gameserver writes these back into config.json; the compiler never reads
// them, but they must survive a load/save cycle.
type PinEntry struct {
	Pin     string `json:"pin"`
	Profile int    `json:"profile"`
}

// Team is one isolated competitive unit.
type Team struct {
	ID      int        `json:"id"`
	Name    string     `json:"name"`
	Token   string     `json:"token"`
	VPNPort int        `json:"wireguard_port"`
	Nop     bool       `json:"nop"`
	Image   string     `json:"image"`
	Pins    []PinEntry `json:"pins"`
}

// Config is the validated input of the topology compiler.
type Config struct {
	VPNStartPort        int     `json:"wireguard_start_port"`
	VPNProfilesPerTeam  int     `json:"wireguard_profiles"`
	ServerAddr          string  `json:"server_addr"`
	DNS                 string  `json:"dns"`
	TickSeconds         int     `json:"tick_time"`
	FlagExpireTicks     int     `json:"flag_expire_ticks"`
	InitialServiceScore int     `json:"initial_service_score"`
	MaxFlagsPerRequest  int     `json:"max_flags_per_request"`
	SubmissionRateLimit float64 `json:"submission_timeout"`
	BandwidthLimit      string  `json:"network_limit_bandwidth"`
	MaxVMCPUs           string  `json:"max_vm_cpus"`
	MaxVMMemory         string  `json:"max_vm_mem"`
	MaxVMDiskSize       string  `json:"max_disk_size,omitempty"`
	GameserverToken     string  `json:"gameserver_token"`
	GameserverExposed   string  `json:"gameserver_exposed_port,omitempty"`
	Privileged          bool    `json:"unsafe_privileged"`
	StartTime           string  `json:"start_time,omitempty"`
	EndTime             string  `json:"end_time,omitempty"`
	Debug               bool    `json:"debug"`
	PinDataAdded        bool    `json:"pin_data_added"`
	Teams               []Team  `json:"teams"`
}

// NopTeam returns the nop team, or nil if the config has none.
func (c *Config) NopTeam() *Team {
	for i := range c.Teams {
		if c.Teams[i].Nop {
			return &c.Teams[i]
		}
	}
	return nil
}

// Load reads and decodes a persisted config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("decoding config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config with stable formatting.
func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "    ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Exists reports whether a config file is present at path.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
