package dockerx

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/diunito/Oasis/internal/topology"
)

// findExecutable wraps exec.LookPath for testability.
var findExecutable = exec.LookPath

// execCommand wraps exec.Command for testability.
var execCommand = exec.Command

// composeArgs resolves the compose entry point: the docker CLI plugin when
// available, the legacy docker-compose binary otherwise.
func composeArgs() (string, []string, error) {
	if docker, err := findExecutable("docker"); err == nil {
		probe := execCommand(docker, "compose", "version")
		probe.Stdout, probe.Stderr = nil, nil
		if probe.Run() == nil {
			return docker, []string{"compose"}, nil
		}
	}
	if legacy, err := findExecutable("docker-compose"); err == nil {
		return legacy, nil, nil
	}
	return "", nil, fmt.Errorf("docker compose not found, install the compose plugin or docker-compose")
}

// Compose runs a docker compose command against the rendered artifact,
// scoped to the deployment's project name, with terminal passthrough.
// An empty composeFile runs against the project only (e.g. "logs -f").
func Compose(composeFile string, args ...string) error {
	bin, base, err := composeArgs()
	if err != nil {
		return err
	}

	full := append([]string{}, base...)
	full = append(full, "-p", topology.ProjectName)
	if composeFile != "" {
		full = append(full, "-f", composeFile)
	}
	full = append(full, args...)

	cmd := execCommand(bin, full...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// BuildImage builds a local image from a context directory.
func BuildImage(tag, dockerfile, contextDir string) error {
	docker, err := findExecutable("docker")
	if err != nil {
		return err
	}
	cmd := execCommand(docker, "build", "-t", tag, "-f", dockerfile, contextDir)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// RunPrebuilder executes the prebuilder image interactively in a named
// container, under the isolation runtime the deployment will use. The
// resulting container is committed as the VM base image.
func RunPrebuilder(privileged bool) error {
	docker, err := findExecutable("docker")
	if err != nil {
		return err
	}
	isolation := "--runtime=" + topology.SysboxRuntime
	if privileged {
		isolation = "--privileged"
	}
	cmd := execCommand(docker, "run", "-it", isolation, "--name", PrebuildContainer, PrebuilderImage)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// CommitPrebuilt saves the prebuilder container as the VM base image.
func CommitPrebuilt() error {
	docker, err := findExecutable("docker")
	if err != nil {
		return err
	}
	cmd := execCommand(docker, "commit", PrebuildContainer, PrebuiltImage+":latest")
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// KillContainer best-effort kills a container, ignoring failures for
// containers that are not running.
func KillContainer(name string) {
	docker, err := findExecutable("docker")
	if err != nil {
		return
	}
	cmd := execCommand(docker, "kill", name)
	_ = cmd.Run()
}
