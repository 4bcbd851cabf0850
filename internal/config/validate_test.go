package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig(teams int) *Config {
	cfg := &Config{
		VPNStartPort:        51000,
		VPNProfilesPerTeam:  30,
		ServerAddr:          "ctf.example.org",
		DNS:                 "1.1.1.1",
		TickSeconds:         120,
		FlagExpireTicks:     5,
		InitialServiceScore: 5000,
		MaxFlagsPerRequest:  3000,
		SubmissionRateLimit: 0.03,
		BandwidthLimit:      "20mbit",
		MaxVMCPUs:           "1",
		MaxVMMemory:         "2G",
		GameserverToken:     "deadbeef",
	}
	for i := 0; i < teams; i++ {
		cfg.Teams = append(cfg.Teams, Team{
			ID:      i,
			Name:    fmt.Sprintf("Team %d", i),
			Token:   fmt.Sprintf("token-%d", i),
			VPNPort: cfg.VPNStartPort + i,
		})
	}
	return cfg
}

func TestValidateAccepts(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"baseline", func(c *Config) {}},
		{"zero teams", func(c *Config) { c.Teams = nil }},
		{"nop team at zero", func(c *Config) { c.Teams[0].Nop = true }},
		{"disk limit", func(c *Config) { c.MaxVMDiskSize = "30G" }},
		{"exposed port only", func(c *Config) { c.GameserverExposed = "8888" }},
		{"exposed host and port", func(c *Config) { c.GameserverExposed = "127.0.0.1:8888" }},
		{"time window", func(c *Config) {
			c.StartTime = "2026-09-01T10:00:00+02:00"
			c.EndTime = "2026-09-01T18:00:00+02:00"
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(4)
			tt.mutate(cfg)
			assert.Empty(t, cfg.Validate())
		})
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"zero start port", func(c *Config) {
			c.VPNStartPort = 0
			for i := range c.Teams {
				c.Teams[i].VPNPort = i
			}
		}, "wireguard_start_port"},
		{"missing server addr", func(c *Config) { c.ServerAddr = "" }, "server_addr"},
		{"id gap", func(c *Config) { c.Teams[2].ID = 5 }, "teams[2].id"},
		{"nop not at zero", func(c *Config) { c.Teams[1].Nop = true }, "teams[1].nop"},
		{"duplicate nop", func(c *Config) {
			c.Teams[0].Nop = true
			c.Teams[1].Nop = true
		}, "teams"},
		{"port drift", func(c *Config) { c.Teams[3].VPNPort = 51999 }, "teams[3].wireguard_port"},
		{"missing token", func(c *Config) { c.Teams[1].Token = "" }, "teams[1].token"},
		{"bad memory size", func(c *Config) { c.MaxVMMemory = "lots" }, "max_vm_mem"},
		{"bad disk size", func(c *Config) { c.MaxVMDiskSize = "huge" }, "max_disk_size"},
		{"bad cpus", func(c *Config) { c.MaxVMCPUs = "fast" }, "max_vm_cpus"},
		{"bad start time", func(c *Config) { c.StartTime = "tomorrow" }, "start_time"},
		{"inverted window", func(c *Config) {
			c.StartTime = "2026-09-01T18:00:00Z"
			c.EndTime = "2026-09-01T10:00:00Z"
		}, "end_time"},
		{"bad exposed endpoint", func(c *Config) { c.GameserverExposed = "localhost:http" }, "gameserver_exposed_port"},
		{"zero tick", func(c *Config) { c.TickSeconds = 0 }, "tick_time"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(4)
			tt.mutate(cfg)
			errs := cfg.Validate()
			require.NotEmpty(t, errs)

			fields := make([]string, len(errs))
			for i, e := range errs {
				fields[i] = e.Field
			}
			assert.Contains(t, fields, tt.field)
		})
	}
}

func TestValidateTeamCeiling(t *testing.T) {
	cfg := validConfig(250)
	errs := cfg.Validate()
	require.NotEmpty(t, errs)
	assert.Equal(t, "teams", errs[0].Field)
}

func TestNopTeam(t *testing.T) {
	cfg := validConfig(3)
	assert.Nil(t, cfg.NopTeam())

	cfg.Teams[0].Nop = true
	nop := cfg.NopTeam()
	require.NotNil(t, nop)
	assert.Equal(t, 0, nop.ID)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	cfg := validConfig(2)
	cfg.Teams[0].Nop = true
	cfg.MaxVMDiskSize = "30G"
	cfg.GameserverExposed = "127.0.0.1:8888"

	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, cfg.Save(path))
	assert.True(t, Exists(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
	assert.Empty(t, loaded.Validate())
}

func TestSaveLoadPreservesPinData(t *testing.T) {
	cfg := validConfig(2)
	cfg.PinDataAdded = true
	cfg.Teams[0].Pins = []PinEntry{}
	cfg.Teams[1].Pins = []PinEntry{
		{Pin: "123456", Profile: 0},
		{Pin: "654321", Profile: 3},
	}

	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, cfg.Save(path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"pin_data_added": true`)
	assert.Contains(t, string(raw), `"pins": []`, "pin-less teams keep an empty list, not null")

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.True(t, loaded.PinDataAdded)
	assert.Equal(t, cfg.Teams[1].Pins, loaded.Teams[1].Pins)
	assert.Empty(t, loaded.Validate(), "pin data does not affect validity")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
	assert.False(t, Exists(filepath.Join(t.TempDir(), "nope.json")))
}
