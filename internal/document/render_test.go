package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestRenderScalars(t *testing.T) {
	tests := []struct {
		name     string
		node     *Node
		expected string
	}{
		{
			"flat mapping",
			Mapping().SetScalar("hostname", "router").SetScalar("restart", "unless-stopped"),
			"hostname: router\nrestart: unless-stopped\n",
		},
		{
			"nested mapping",
			Mapping().Set("environment", Mapping().SetScalar("NTEAM", 4).SetScalar("RATE_NET", "20mbit")),
			"environment:\n    NTEAM: 4\n    RATE_NET: 20mbit\n",
		},
		{
			"sequence of scalars",
			Mapping().Set("cap_add", Sequence(Scalar("NET_ADMIN"), Scalar("SYS_MODULE"))),
			"cap_add:\n    - NET_ADMIN\n    - SYS_MODULE\n",
		},
		{
			"bool and float",
			Mapping().SetScalar("privileged", true).SetScalar("timeout", 0.03),
			"privileged: true\ntimeout: 0.03\n",
		},
		{
			"empty scalar value",
			Mapping().SetScalar("internalnet", ""),
			"internalnet: \n",
		},
		{
			"bare scalar",
			Scalar("hello"),
			"hello\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Render(tt.node)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestRenderSequenceOfMappings(t *testing.T) {
	node := Mapping().Set("ipam", Mapping().
		SetScalar("driver", "default").
		Set("config", Sequence(
			Mapping().
				SetScalar("subnet", "10.60.0.0/24").
				SetScalar("gateway", "10.60.0.254"),
		)))

	got, err := Render(node)
	require.NoError(t, err)

	expected := "ipam:\n" +
		"    driver: default\n" +
		"    config:\n" +
		"        - subnet: 10.60.0.0/24\n" +
		"          gateway: 10.60.0.254\n"
	assert.Equal(t, expected, got)
}

func TestRenderEmptyMappingBlock(t *testing.T) {
	node := Mapping().
		Set("networks", Mapping().
			Set("externalnet", Mapping()).
			SetScalar("internalnet", ""))

	got, err := Render(node)
	require.NoError(t, err)
	assert.Equal(t, "networks:\n    externalnet:\n    internalnet: \n", got)

	var decoded map[string]map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(got), &decoded))
	assert.Contains(t, decoded["networks"], "externalnet")
	assert.Nil(t, decoded["networks"]["externalnet"])
}

func TestRenderCustomIndent(t *testing.T) {
	node := Mapping().Set("a", Mapping().SetScalar("b", 1))
	got, err := (&Renderer{Indent: 2}).Render(node)
	require.NoError(t, err)
	assert.Equal(t, "a:\n  b: 1\n", got)
}

func TestRenderUnrepresentableScalar(t *testing.T) {
	node := Mapping().SetScalar("bad", struct{ X int }{1})
	_, err := Render(node)
	var serr *SerializationError
	require.ErrorAs(t, err, &serr)
}

func TestSetReplacesExistingKey(t *testing.T) {
	node := Mapping().SetScalar("key", "old").SetScalar("key", "new")
	assert.Equal(t, 1, node.Len())
	got, err := Render(node)
	require.NoError(t, err)
	assert.Equal(t, "key: new\n", got)
}

// Rendering a sequence of mappings that contains an empty mapping must
// round-trip through a YAML decoder with key order and nesting preserved.
func TestRenderRoundTrip(t *testing.T) {
	node := Mapping().
		Set("services", Mapping().
			Set("router", Mapping().
				SetScalar("hostname", "router").
				Set("networks", Mapping().
					Set("externalnet", Mapping()).
					Set("gameserver", Mapping().
						SetScalar("priority", 10).
						SetScalar("ipv4_address", "10.10.0.250")))).
			Set("database", Mapping().
				SetScalar("image", "postgres:17"))).
		Set("volumes", Sequence(
			Mapping().SetScalar("name", "unixsk").Set("opts", Mapping()),
			Mapping().SetScalar("name", "db").SetScalar("external", true),
		))

	got, err := Render(node)
	require.NoError(t, err)

	var root yaml.Node
	require.NoError(t, yaml.Unmarshal([]byte(got), &root))
	require.Len(t, root.Content, 1)

	doc := root.Content[0]
	require.Equal(t, yaml.MappingNode, doc.Kind)
	assert.Equal(t, []string{"services", "volumes"}, mappingKeys(doc))

	services := mappingValue(doc, "services")
	require.NotNil(t, services)
	assert.Equal(t, []string{"router", "database"}, mappingKeys(services))

	networks := mappingValue(mappingValue(services, "router"), "networks")
	require.NotNil(t, networks)
	assert.Equal(t, []string{"externalnet", "gameserver"}, mappingKeys(networks))

	volumes := mappingValue(doc, "volumes")
	require.Equal(t, yaml.SequenceNode, volumes.Kind)
	require.Len(t, volumes.Content, 2)
	assert.Equal(t, []string{"name", "opts"}, mappingKeys(volumes.Content[0]))
	assert.Equal(t, []string{"name", "external"}, mappingKeys(volumes.Content[1]))
}

func mappingKeys(n *yaml.Node) []string {
	if n == nil || n.Kind != yaml.MappingNode {
		return nil
	}
	var keys []string
	for i := 0; i < len(n.Content); i += 2 {
		keys = append(keys, n.Content[i].Value)
	}
	return keys
}

func mappingValue(n *yaml.Node, key string) *yaml.Node {
	if n == nil || n.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return n.Content[i+1]
		}
	}
	return nil
}
