package wizard

import (
	"fmt"

	"github.com/diunito/Oasis/internal/config"
	"github.com/diunito/Oasis/internal/util"
)

// tokenBytes sizes each team's secret token (hex-encoded to twice this).
const tokenBytes = 32

// GenerateTeams creates the dense team list for n playing teams. When nop
// is set an extra passive team is prepended as id 0, shifting the playing
// teams to ids 1..n. Ports follow the linear start+id scheme for every
// team, nop included, so the stored config stays self-consistent.
func GenerateTeams(n int, nop bool, startPort int) []config.Team {
	total := n
	if nop {
		total++
	}
	teams := make([]config.Team, 0, total)
	for i := 0; i < total; i++ {
		team := config.Team{
			ID:      i,
			Name:    fmt.Sprintf("Team %d", i),
			Token:   util.Token(tokenBytes),
			VPNPort: startPort + i,
			Pins:    []config.PinEntry{},
		}
		if i == 0 && nop {
			team.Name = "Nop Team"
			team.Nop = true
		}
		teams = append(teams, team)
	}
	return teams
}
