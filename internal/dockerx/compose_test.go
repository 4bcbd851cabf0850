package dockerx

import (
	"errors"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeExec reroutes command construction to a recorder; every recorded
// command runs as a no-op.
func fakeExec(t *testing.T, missing ...string) *[][]string {
	t.Helper()
	var calls [][]string

	origFind, origExec := findExecutable, execCommand
	t.Cleanup(func() { findExecutable, execCommand = origFind, origExec })

	findExecutable = func(name string) (string, error) {
		for _, m := range missing {
			if name == m {
				return "", errors.New(name + " not found")
			}
		}
		return "/usr/bin/" + name, nil
	}
	execCommand = func(name string, args ...string) *exec.Cmd {
		calls = append(calls, append([]string{name}, args...))
		return exec.Command("true")
	}
	return &calls
}

func TestComposeCommandLine(t *testing.T) {
	calls := fakeExec(t)

	require.NoError(t, Compose("oasis-compose-tmp-file.yml", "restart"))

	require.Len(t, *calls, 2, "plugin probe then the compose run")
	assert.Equal(t, []string{"/usr/bin/docker", "compose", "version"}, (*calls)[0])
	assert.Equal(t,
		[]string{"/usr/bin/docker", "compose", "-p", "oasis", "-f", "oasis-compose-tmp-file.yml", "restart"},
		(*calls)[1])
}

func TestComposeProjectOnly(t *testing.T) {
	calls := fakeExec(t)

	require.NoError(t, Compose("", "down", "--remove-orphans"))

	last := (*calls)[len(*calls)-1]
	assert.Equal(t, []string{"/usr/bin/docker", "compose", "-p", "oasis", "down", "--remove-orphans"}, last)
}

func TestComposeLegacyFallback(t *testing.T) {
	calls := fakeExec(t, "docker")

	require.NoError(t, Compose("", "ps"))

	require.Len(t, *calls, 1)
	assert.Equal(t, []string{"/usr/bin/docker-compose", "-p", "oasis", "ps"}, (*calls)[0])
}

func TestComposeMissingEntirely(t *testing.T) {
	fakeExec(t, "docker", "docker-compose")

	err := Compose("", "ps")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "compose not found")
}
