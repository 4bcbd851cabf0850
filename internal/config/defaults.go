package config

import "github.com/spf13/viper"

// Defaults are the pre-filled answers offered by the wizard and the start
// flags. An optional oasis.yml (or OASIS_* environment variables, both read
// by viper in cmd) overrides them.
type Defaults struct {
	NumberOfTeams       int     `mapstructure:"number_of_teams"`
	EnableNopTeam       bool    `mapstructure:"enable_nop_team"`
	VPNStartPort        int     `mapstructure:"wireguard_start_port"`
	VPNProfilesPerTeam  int     `mapstructure:"wireguard_profiles"`
	ServerAddr          string  `mapstructure:"server_addr"`
	DNS                 string  `mapstructure:"dns"`
	TickSeconds         int     `mapstructure:"tick_time"`
	FlagExpireTicks     int     `mapstructure:"flag_expire_ticks"`
	InitialServiceScore int     `mapstructure:"initial_service_score"`
	MaxFlagsPerRequest  int     `mapstructure:"max_flags_per_request"`
	SubmissionRateLimit float64 `mapstructure:"submission_timeout"`
	BandwidthLimit      string  `mapstructure:"network_limit_bandwidth"`
	MaxVMCPUs           string  `mapstructure:"max_vm_cpus"`
	MaxVMMemory         string  `mapstructure:"max_vm_mem"`
	MaxVMDiskSize       string  `mapstructure:"max_disk_size"`
	GameserverEndpoint  string  `mapstructure:"gameserver_port"`
}

// LoadDefaults returns the built-in defaults with any viper-provided
// overrides applied.
func LoadDefaults() (*Defaults, error) {
	d := &Defaults{
		NumberOfTeams:       4,
		VPNStartPort:        51000,
		VPNProfilesPerTeam:  30,
		DNS:                 "1.1.1.1",
		TickSeconds:         120,
		FlagExpireTicks:     5,
		InitialServiceScore: 5000,
		MaxFlagsPerRequest:  3000,
		SubmissionRateLimit: 0.03, // 30 req/s
		BandwidthLimit:      "20mbit",
		MaxVMCPUs:           "1",
		MaxVMMemory:         "2G",
		MaxVMDiskSize:       "30G",
		GameserverEndpoint:  "127.0.0.1:8888",
	}
	if err := viper.Unmarshal(d); err != nil {
		return nil, err
	}
	return d, nil
}
