// Package netalloc derives per-team network addresses and VPN ports.
//
// Every assignment is a pure function of the team id, with the id encoded
// in the third octet of the subnet. There is no shared counter: two teams
// can never collide, and allocation does not depend on ordering.
package netalloc

import "fmt"

// MaxTeamID is the first invalid team id. Ids at or above it would push the
// third octet into reserved space, and it doubles as the global team-count
// ceiling.
const MaxTeamID = 250

const (
	vmPrefix     = "10.60"
	playerPrefix = "10.80"
	gamePrefix   = "10.10"
)

// Subnet is the address assignment for one network class of one team.
type Subnet struct {
	CIDR    string // canonical /24
	Gateway string // .254
	Router  string // router attachment, .250
	Host    string // the class' fixed host: VM at .1, VPN endpoint at .128
}

// AllocationError reports exhausted address or port space for a team.
type AllocationError struct {
	TeamID   int
	Resource string // "address" or "port"
	Message  string
}

func (e *AllocationError) Error() string {
	return fmt.Sprintf("team %d: %s allocation: %s", e.TeamID, e.Resource, e.Message)
}

// CheckTeamID rejects ids outside [0, MaxTeamID).
func CheckTeamID(id int) error {
	if id < 0 || id >= MaxTeamID {
		return &AllocationError{
			TeamID:   id,
			Resource: "address",
			Message:  fmt.Sprintf("team id must be in [0, %d)", MaxTeamID),
		}
	}
	return nil
}

// VM returns the addressing of team id's VM network, 10.60.id.0/24.
func VM(id int) (Subnet, error) {
	if err := CheckTeamID(id); err != nil {
		return Subnet{}, err
	}
	return class(vmPrefix, id, 1), nil
}

// Players returns the addressing of team id's player/VPN network,
// 10.80.id.0/24. The fixed host is the VPN endpoint at .128.
func Players(id int) (Subnet, error) {
	if err := CheckTeamID(id); err != nil {
		return Subnet{}, err
	}
	return class(playerPrefix, id, 128), nil
}

// Gameserver returns the addressing of the shared gameserver network,
// 10.10.0.0/24. It is a single instance, not keyed by team.
func Gameserver() Subnet {
	return class(gamePrefix, 0, 1)
}

// VPNPort returns the external VPN port of team id: start + id.
// Contiguous ids make the linear scheme collision-free by construction.
func VPNPort(start, id int) (int, error) {
	if err := CheckTeamID(id); err != nil {
		return 0, err
	}
	port := start + id
	if port > 65535 {
		return 0, &AllocationError{
			TeamID:   id,
			Resource: "port",
			Message:  fmt.Sprintf("port %d exceeds 65535 (start %d)", port, start),
		}
	}
	return port, nil
}

func class(prefix string, id, host int) Subnet {
	return Subnet{
		CIDR:    fmt.Sprintf("%s.%d.0/24", prefix, id),
		Gateway: fmt.Sprintf("%s.%d.254", prefix, id),
		Router:  fmt.Sprintf("%s.%d.250", prefix, id),
		Host:    fmt.Sprintf("%s.%d.%d", prefix, id, host),
	}
}
