package topology

import (
	"sort"
	"strconv"

	"github.com/diunito/Oasis/internal/config"
	"github.com/diunito/Oasis/internal/document"
)

// Compile builds the topology for cfg and renders it in one step.
func Compile(cfg *config.Config) (string, error) {
	t, err := Build(cfg)
	if err != nil {
		return "", err
	}
	return t.Render()
}

// Render encodes the topology as a document tree and renders it.
func (t *Topology) Render() (string, error) {
	return document.Render(t.Document())
}

// Document encodes the topology as a schema-free document tree in the
// shape the orchestration runtime consumes: services, volumes, networks.
// Encoding follows the explicit orderings, so the result is deterministic.
func (t *Topology) Document() *document.Node {
	services := document.Mapping()
	for _, name := range t.ServiceOrder {
		services.Set(name, encodeService(t.Services[name]))
	}

	volumes := document.Mapping()
	for _, name := range t.Volumes {
		volumes.SetScalar(name, "")
	}

	networks := document.Mapping()
	for _, name := range t.NetworkOrder {
		networks.Set(name, encodeNetwork(t.Networks[name]))
	}

	return document.Mapping().
		Set("services", services).
		Set("volumes", volumes).
		Set("networks", networks)
}

func encodeService(s *ServiceSpec) *document.Node {
	n := document.Mapping()
	n.SetScalar("hostname", s.Hostname)

	if len(s.DNS) > 0 {
		dns := document.Sequence()
		for _, d := range s.DNS {
			dns.Append(document.Scalar(d))
		}
		n.Set("dns", dns)
	}

	switch {
	case s.Image != "":
		n.SetScalar("image", s.Image)
	case s.Build != nil && len(s.Build.Args) == 0:
		n.SetScalar("build", s.Build.Context)
	case s.Build != nil:
		args := document.Mapping()
		for _, key := range sortedKeys(s.Build.Args) {
			args.SetScalar(key, s.Build.Args[key])
		}
		n.Set("build", document.Mapping().
			SetScalar("context", s.Build.Context).
			Set("args", args))
	}

	if s.ContainerName != "" {
		n.SetScalar("container_name", s.ContainerName)
	}
	if s.Restart != "" {
		n.SetScalar("restart", s.Restart)
	}
	if s.Privileged {
		n.SetScalar("privileged", true)
	}
	if s.Runtime != "" {
		n.SetScalar("runtime", s.Runtime)
	}
	if s.Limits != nil && s.Limits.DiskSize != "" {
		n.Set("storage_opt", document.Mapping().SetScalar("size", s.Limits.DiskSize))
	}

	if len(s.CapAdd) > 0 {
		n.Set("cap_add", scalarSequence(s.CapAdd))
	}
	if len(s.Sysctls) > 0 {
		n.Set("sysctls", scalarSequence(s.Sysctls))
	}

	if len(s.Environment) > 0 {
		env := document.Mapping()
		for _, v := range s.Environment {
			env.SetScalar(v.Key, v.Value)
		}
		n.Set("environment", env)
	}

	if len(s.Volumes) > 0 {
		n.Set("volumes", scalarSequence(s.Volumes))
	}

	if len(s.Networks) > 0 {
		nets := document.Mapping()
		for _, att := range s.Networks {
			nets.Set(att.Network, encodeAttachment(att))
		}
		n.Set("networks", nets)
	}

	if len(s.Ports) > 0 {
		n.Set("ports", scalarSequence(s.Ports))
	}
	if len(s.DependsOn) > 0 {
		n.Set("depends_on", scalarSequence(s.DependsOn))
	}

	if s.Limits != nil && (s.Limits.CPUs != "" || s.Limits.Memory != "") {
		limits := document.Mapping()
		if s.Limits.CPUs != "" {
			limits.SetScalar("cpus", strconv.Quote(s.Limits.CPUs))
		}
		if s.Limits.Memory != "" {
			limits.SetScalar("memory", s.Limits.Memory)
		}
		n.Set("deploy", document.Mapping().
			Set("resources", document.Mapping().
				Set("limits", limits)))
	}

	return n
}

// encodeAttachment renders a plain attachment as an empty value and an
// addressed or prioritized one as a mapping.
func encodeAttachment(att Attachment) *document.Node {
	if att.Priority == 0 && att.IPv4 == "" {
		return document.Scalar("")
	}
	n := document.Mapping()
	if att.Priority != 0 {
		n.SetScalar("priority", att.Priority)
	}
	if att.IPv4 != "" {
		n.SetScalar("ipv4_address", att.IPv4)
	}
	return n
}

// encodeNetwork renders an unconfigured segment as an empty value and a
// configured one with driver/isolation/ipam settings.
func encodeNetwork(spec *NetworkSpec) *document.Node {
	if spec.Driver == "" && !spec.Internal && spec.Subnet == "" {
		return document.Scalar("")
	}
	n := document.Mapping()
	if spec.Internal {
		n.SetScalar("internal", true)
	}
	if spec.Driver != "" {
		n.SetScalar("driver", spec.Driver)
	}
	if spec.Subnet != "" {
		n.Set("ipam", document.Mapping().
			SetScalar("driver", "default").
			Set("config", document.Sequence(
				document.Mapping().
					SetScalar("subnet", spec.Subnet).
					SetScalar("gateway", spec.Gateway),
			)))
	}
	return n
}

func scalarSequence(values []string) *document.Node {
	seq := document.Sequence()
	for _, v := range values {
		seq.Append(document.Scalar(v))
	}
	return seq
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
