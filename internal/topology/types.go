// Package topology compiles a validated competition config into the full
// network and service graph, and encodes that graph as a document tree for
// the orchestration runtime. A compile is pure: the topology is rebuilt
// from scratch every time and identical input yields byte-identical output.
package topology

import "fmt"

// Deployment-wide names. The runtime layer and the compose project both
// refer to these, so they live with the topology rather than the CLI.
const (
	ProjectName         = "oasis"
	GameserverContainer = "oasis_gameserver"

	RouterService     = "router"
	DatabaseService   = "database"
	GameserverService = "gameserver"

	ExternalNetwork   = "externalnet"
	InternalNetwork   = "internalnet"
	GameserverNetwork = "gameserver"

	SocketVolume   = "unixsk"
	DatabaseVolume = "oasis-postgres-db"
)

// TeamService returns the VM service name of team id.
func TeamService(id int) string { return fmt.Sprintf("team%d", id) }

// VPNService returns the VPN endpoint service name of team id.
func VPNService(id int) string { return fmt.Sprintf("wireguard%d", id) }

// TeamNetwork returns the VM network name of team id.
func TeamNetwork(id int) string { return fmt.Sprintf("vm-team%d", id) }

// PlayersNetwork returns the player network name of team id.
func PlayersNetwork(id int) string { return fmt.Sprintf("players%d", id) }

// NetworkSpec describes one network segment. An empty Driver leaves the
// choice to the runtime (plain bridged segment with no fixed addressing).
type NetworkSpec struct {
	Name     string
	Driver   string // "macvlan", "bridge", or ""
	Internal bool   // no outbound host connectivity
	Subnet   string // /24 CIDR, empty when the runtime assigns one
	Gateway  string
}

// Attachment connects a service to a network, optionally at a fixed
// address and with a routing priority relative to the segment's gateway.
type Attachment struct {
	Network  string
	IPv4     string
	Priority int
}

// BuildSpec points a service at a local build context.
type BuildSpec struct {
	Context string
	Args    map[string]string
}

// EnvVar is one environment binding; order is preserved in the rendered
// artifact.
type EnvVar struct {
	Key   string
	Value any
}

// Resources are the enforced ceilings of a VM service.
type Resources struct {
	CPUs     string
	Memory   string
	DiskSize string // storage_opt size, empty when disk limits are off
}

// ServiceSpec describes one service of the deployment.
type ServiceSpec struct {
	Name          string
	Hostname      string
	DNS           []string
	Image         string
	Build         *BuildSpec
	ContainerName string
	Restart       string
	Privileged    bool
	Runtime       string // container runtime, e.g. sysbox-runc
	CapAdd        []string
	Sysctls       []string
	Environment   []EnvVar
	Volumes       []string
	Networks      []Attachment
	Ports         []string
	DependsOn     []string
	Limits        *Resources
}

// Endpoint is an externally reachable address derived from the topology,
// exported so a status collaborator does not re-derive the allocation
// scheme.
type Endpoint struct {
	Service  string
	TeamID   int // -1 for shared endpoints
	Address  string
	Protocol string // "udp" or "http"
}

// Topology is the compiler output: every network and service of one
// deployment, with explicit orderings for deterministic rendering.
type Topology struct {
	Networks     map[string]*NetworkSpec
	NetworkOrder []string
	Services     map[string]*ServiceSpec
	ServiceOrder []string
	Volumes      []string
	Endpoints    []Endpoint
}

// New creates an empty topology.
func New() *Topology {
	return &Topology{
		Networks: make(map[string]*NetworkSpec),
		Services: make(map[string]*ServiceSpec),
	}
}

// AddNetwork registers a network, keeping insertion order.
func (t *Topology) AddNetwork(n *NetworkSpec) {
	if _, ok := t.Networks[n.Name]; !ok {
		t.NetworkOrder = append(t.NetworkOrder, n.Name)
	}
	t.Networks[n.Name] = n
}

// AddService registers a service, keeping insertion order.
func (t *Topology) AddService(s *ServiceSpec) {
	if _, ok := t.Services[s.Name]; !ok {
		t.ServiceOrder = append(t.ServiceOrder, s.Name)
	}
	t.Services[s.Name] = s
}

// Check verifies internal consistency: every dependency edge points at an
// emitted service and every attachment at an emitted network.
func (t *Topology) Check() error {
	for _, name := range t.ServiceOrder {
		svc := t.Services[name]
		for _, dep := range svc.DependsOn {
			if _, ok := t.Services[dep]; !ok {
				return fmt.Errorf("service %s depends on unknown service %s", name, dep)
			}
		}
		for _, att := range svc.Networks {
			if _, ok := t.Networks[att.Network]; !ok {
				return fmt.Errorf("service %s attached to unknown network %s", name, att.Network)
			}
		}
	}
	return nil
}
