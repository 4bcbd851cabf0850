package topology

import (
	"fmt"
	"os"
	"runtime"

	"github.com/diunito/Oasis/internal/config"
	"github.com/diunito/Oasis/internal/netalloc"
)

// SysboxRuntime is the hardened isolation runtime used for team VMs unless
// privileged mode is explicitly requested.
const SysboxRuntime = "sysbox-runc"

// vpnListenPort is the fixed in-container WireGuard port; the per-team
// external port is published onto it.
const vpnListenPort = 51820

// vpnAllowedSubnets are the ranges a connected player may reach. The router
// still filters per-team traffic inside them.
const vpnAllowedSubnets = "10.10.0.0/16, 10.60.0.0/16, 10.80.0.0/16"

// Build compiles the config into a topology. It fails fast: the config is
// validated and every address/port allocation is checked before the first
// network or service is emitted.
func Build(cfg *config.Config) (*Topology, error) {
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, errs[0]
	}

	type teamAlloc struct {
		team    config.Team
		vm      netalloc.Subnet
		players netalloc.Subnet // zero value for the nop team
		port    int
	}

	allocs := make([]teamAlloc, 0, len(cfg.Teams))
	for _, team := range cfg.Teams {
		a := teamAlloc{team: team}
		var err error
		if a.vm, err = netalloc.VM(team.ID); err != nil {
			return nil, err
		}
		if !team.Nop {
			if a.players, err = netalloc.Players(team.ID); err != nil {
				return nil, err
			}
			if a.port, err = netalloc.VPNPort(cfg.VPNStartPort, team.ID); err != nil {
				return nil, err
			}
		}
		allocs = append(allocs, a)
	}

	t := New()
	game := netalloc.Gameserver()

	// Stage 1: always-present networks.
	t.AddNetwork(&NetworkSpec{Name: ExternalNetwork})
	t.AddNetwork(&NetworkSpec{Name: InternalNetwork})
	t.AddNetwork(&NetworkSpec{
		Name:     GameserverNetwork,
		Driver:   "macvlan",
		Internal: true,
		Subnet:   game.CIDR,
		Gateway:  game.Gateway,
	})

	// Stage 2: per-team networks.
	for _, a := range allocs {
		t.AddNetwork(&NetworkSpec{
			Name:     TeamNetwork(a.team.ID),
			Driver:   "macvlan",
			Internal: true,
			Subnet:   a.vm.CIDR,
			Gateway:  a.vm.Gateway,
		})
	}
	for _, a := range allocs {
		if a.team.Nop {
			continue
		}
		t.AddNetwork(&NetworkSpec{
			Name:    PlayersNetwork(a.team.ID),
			Driver:  "bridge",
			Subnet:  a.players.CIDR,
			Gateway: a.players.Gateway,
		})
	}

	// Stage 3: the router, attached to every segment. Priority 10 keeps it
	// below each segment's own gateway; externalnet at priority 1 is its
	// default route.
	router := &ServiceSpec{
		Name:     RouterService,
		Hostname: RouterService,
		DNS:      []string{cfg.DNS},
		Build:    &BuildSpec{Context: "./router"},
		Restart:  "unless-stopped",
		CapAdd:   []string{"NET_ADMIN", "SYS_MODULE", "SYS_ADMIN"},
		Sysctls: []string{
			"net.ipv4.ip_forward=1",
			"net.ipv4.tcp_timestamps=0",
			"net.ipv4.conf.all.rp_filter=1",
			"net.ipv6.conf.all.forwarding=0",
		},
		Environment: []EnvVar{
			{Key: "NTEAM", Value: len(cfg.Teams)},
			{Key: "RATE_NET", Value: cfg.BandwidthLimit},
		},
		Volumes: []string{SocketVolume + ":/unixsk"},
	}
	for _, a := range allocs {
		router.Networks = append(router.Networks, Attachment{
			Network:  TeamNetwork(a.team.ID),
			IPv4:     a.vm.Router,
			Priority: 10,
		})
	}
	router.Networks = append(router.Networks,
		Attachment{Network: GameserverNetwork, IPv4: game.Router, Priority: 10},
		Attachment{Network: ExternalNetwork, Priority: 1},
	)
	for _, a := range allocs {
		if a.team.Nop {
			continue
		}
		router.Networks = append(router.Networks, Attachment{
			Network:  PlayersNetwork(a.team.ID),
			IPv4:     a.players.Router,
			Priority: 10,
		})
	}
	t.AddService(router)

	// Stage 4: the database, internal network only. Credentials are scoped
	// to this deployment, which never leaves the internal segment.
	t.AddService(&ServiceSpec{
		Name:     DatabaseService,
		Hostname: "oasis-database",
		DNS:      []string{cfg.DNS},
		Image:    "postgres:17",
		Restart:  "unless-stopped",
		Environment: []EnvVar{
			{Key: "POSTGRES_USER", Value: ProjectName},
			{Key: "POSTGRES_PASSWORD", Value: ProjectName},
			{Key: "POSTGRES_DB", Value: ProjectName},
		},
		Volumes:  []string{DatabaseVolume + ":/var/lib/postgresql/data"},
		Networks: []Attachment{{Network: InternalNetwork}},
	})

	// Stage 5: the gameserver. It is not ready until every team target
	// exists, so it depends on all of them besides router and database.
	gameserver := &ServiceSpec{
		Name:          GameserverService,
		Hostname:      GameserverService,
		DNS:           []string{cfg.DNS},
		Build:         &BuildSpec{Context: "./game_server"},
		Restart:       "unless-stopped",
		ContainerName: GameserverContainer,
		CapAdd:        []string{"NET_ADMIN"},
		DependsOn:     []string{RouterService, DatabaseService},
		Networks: []Attachment{
			{Network: InternalNetwork, Priority: 1},
			{Network: GameserverNetwork, IPv4: game.Host, Priority: 10},
		},
		Volumes: []string{
			"./game_server/checkers:/app/checkers:z",
			SocketVolume + ":/unixsk",
			fmt.Sprintf("./%s:/app/%s:z", config.DefaultPath, config.DefaultPath),
		},
	}
	for _, a := range allocs {
		gameserver.DependsOn = append(gameserver.DependsOn, TeamService(a.team.ID))
	}
	if cfg.GameserverExposed != "" {
		gameserver.Ports = []string{cfg.GameserverExposed + ":80"}
	}
	t.AddService(gameserver)

	// Stage 6: team VMs. Privileged mode trades the hardened runtime for
	// host compatibility; it is an explicit operator choice, never a
	// fallback.
	for _, a := range allocs {
		vm := &ServiceSpec{
			Name:     TeamService(a.team.ID),
			Hostname: TeamService(a.team.ID),
			DNS:      []string{cfg.DNS},
			Restart:  "unless-stopped",
			Networks: []Attachment{{Network: TeamNetwork(a.team.ID), IPv4: a.vm.Host}},
			Limits: &Resources{
				CPUs:     cfg.MaxVMCPUs,
				Memory:   cfg.MaxVMMemory,
				DiskSize: cfg.MaxVMDiskSize,
			},
		}
		if a.team.Image != "" {
			vm.Image = a.team.Image
		} else {
			vm.Build = &BuildSpec{
				Context: "./vm",
				Args:    map[string]string{"TOKEN": a.team.Token},
			}
		}
		if cfg.Privileged {
			vm.Privileged = true
		} else {
			vm.Runtime = SysboxRuntime
		}
		t.AddService(vm)
	}

	// Stage 7: VPN endpoints for non-nop teams.
	for _, a := range allocs {
		if a.team.Nop {
			continue
		}
		t.AddService(&ServiceSpec{
			Name:     VPNService(a.team.ID),
			Hostname: VPNService(a.team.ID),
			DNS:      []string{cfg.DNS},
			Build:    &BuildSpec{Context: "./wireguard"},
			Restart:  "unless-stopped",
			CapAdd:   []string{"NET_ADMIN", "SYS_MODULE"},
			Sysctls: []string{
				"net.ipv4.ip_forward=1",
				"net.ipv4.conf.all.src_valid_mark=1",
			},
			Volumes:  []string{fmt.Sprintf("./wireguard/conf%d:/config:z", a.team.ID)},
			Networks: []Attachment{{Network: PlayersNetwork(a.team.ID), IPv4: a.players.Host}},
			Ports:    []string{fmt.Sprintf("%d:%d/udp", a.port, vpnListenPort)},
			Environment: []EnvVar{
				{Key: "PUID", Value: hostUID()},
				{Key: "PGID", Value: hostGID()},
				{Key: "TZ", Value: "Etc/UTC"},
				{Key: "PEERS", Value: cfg.VPNProfilesPerTeam},
				{Key: "PEERDNS", Value: cfg.DNS},
				{Key: "ALLOWEDIPS", Value: vpnAllowedSubnets},
				{Key: "SERVERURL", Value: cfg.ServerAddr},
				{Key: "SERVERPORT", Value: a.port},
				{Key: "INTERNAL_SUBNET", Value: a.players.CIDR},
			},
		})
	}

	t.Volumes = []string{SocketVolume, DatabaseVolume}

	for _, a := range allocs {
		if a.team.Nop {
			continue
		}
		t.Endpoints = append(t.Endpoints, Endpoint{
			Service:  VPNService(a.team.ID),
			TeamID:   a.team.ID,
			Address:  fmt.Sprintf("%s:%d", cfg.ServerAddr, a.port),
			Protocol: "udp",
		})
	}
	if cfg.GameserverExposed != "" {
		t.Endpoints = append(t.Endpoints, Endpoint{
			Service:  GameserverService,
			TeamID:   -1,
			Address:  cfg.GameserverExposed,
			Protocol: "http",
		})
	}

	return t, nil
}

// hostUID and hostGID feed the VPN container's file ownership. The VPN
// image writes peer configs onto a bind mount, so they must match the
// invoking user on Linux; elsewhere the runtime handles ownership.
func hostUID() int {
	if runtime.GOOS == "linux" {
		return os.Getuid()
	}
	return 0
}

func hostGID() int {
	if runtime.GOOS == "linux" {
		return os.Getgid()
	}
	return 0
}
