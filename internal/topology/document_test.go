package topology

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	composecli "github.com/compose-spec/compose-go/v2/cli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDocumentServiceOrder(t *testing.T) {
	cfg := testConfig(2, true)
	out, err := Compile(cfg)
	require.NoError(t, err)

	var root yaml.Node
	require.NoError(t, yaml.Unmarshal([]byte(out), &root))
	doc := root.Content[0]

	assert.Equal(t, []string{"services", "volumes", "networks"}, yamlKeys(doc))

	services := yamlValue(doc, "services")
	assert.Equal(t,
		[]string{"router", "database", "gameserver", "team0", "team1", "wireguard1"},
		yamlKeys(services))

	networks := yamlValue(doc, "networks")
	assert.Equal(t,
		[]string{"externalnet", "internalnet", "gameserver", "vm-team0", "vm-team1", "players1"},
		yamlKeys(networks))
}

func TestDocumentAttachmentShapes(t *testing.T) {
	topo, err := Build(testConfig(1, false))
	require.NoError(t, err)

	out, err := topo.Render()
	require.NoError(t, err)

	// Plain attachments stay empty, addressed ones carry priority + address.
	assert.Contains(t, out, "internalnet: \n")
	assert.Contains(t, out, "priority: 10")
	assert.Contains(t, out, "ipv4_address: 10.60.0.250")
	assert.Contains(t, out, "ipv4_address: 10.60.0.1")
	assert.Contains(t, out, "ipv4_address: 10.80.0.128")
}

func TestDocumentVMLimitsRendered(t *testing.T) {
	cfg := testConfig(1, false)
	cfg.MaxVMDiskSize = "30G"

	out, err := Compile(cfg)
	require.NoError(t, err)

	assert.Contains(t, out, "cpus: \"1\"")
	assert.Contains(t, out, "memory: 2G")
	assert.Contains(t, out, "storage_opt:")
	assert.Contains(t, out, "size: 30G")
	assert.Contains(t, out, "runtime: sysbox-runc")
	assert.NotContains(t, out, "privileged")
}

func TestDocumentPrivilegedRendered(t *testing.T) {
	cfg := testConfig(1, false)
	cfg.Privileged = true

	out, err := Compile(cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "privileged: true")
	assert.NotContains(t, out, "runtime: sysbox-runc")
}

// The rendered artifact must load as a valid compose project.
func TestCompileLoadsAsComposeProject(t *testing.T) {
	cfg := testConfig(3, true)
	cfg.MaxVMDiskSize = "30G"
	cfg.GameserverExposed = "127.0.0.1:8888"

	out, err := Compile(cfg)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "docker-compose.yml")
	require.NoError(t, os.WriteFile(path, []byte(out), 0644))

	opts, err := composecli.NewProjectOptions(
		[]string{path},
		composecli.WithName(ProjectName),
		composecli.WithInterpolation(false),
	)
	require.NoError(t, err)

	project, err := composecli.ProjectFromOptions(context.Background(), opts)
	require.NoError(t, err)

	assert.Len(t, project.Services, 3+3+2) // router, database, gameserver, 3 VMs, 2 VPNs
	assert.Len(t, project.Networks, 3+3+2)
	assert.Contains(t, project.Volumes, SocketVolume)
	assert.Contains(t, project.Volumes, DatabaseVolume)

	gs, err := project.GetService(GameserverService)
	require.NoError(t, err)
	assert.Equal(t, GameserverContainer, gs.ContainerName)
	assert.Len(t, gs.DependsOn, 5)
}

func yamlKeys(n *yaml.Node) []string {
	if n == nil || n.Kind != yaml.MappingNode {
		return nil
	}
	var keys []string
	for i := 0; i < len(n.Content); i += 2 {
		keys = append(keys, n.Content[i].Value)
	}
	return keys
}

func yamlValue(n *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return n.Content[i+1]
		}
	}
	return nil
}
