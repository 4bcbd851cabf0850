package dockerx

import (
	"context"
	"fmt"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/errdefs"

	"github.com/diunito/Oasis/internal/topology"
)

// Image names of the VM base-image build chain. The prebuilder image runs
// once in a throwaway container which is then committed as the base image
// every team VM builds from.
const (
	PrebuilderImage   = "oasis-prebuilder"
	PrebuildContainer = "oasis-prebuilded"
	PrebuiltImage     = "oasis-vm-base"
)

// Ping reports whether the Docker daemon is reachable.
func Ping(ctx context.Context) error {
	cli, err := Client()
	if err != nil {
		return err
	}
	if _, err := cli.Ping(ctx); err != nil {
		return fmt.Errorf("docker daemon not reachable: %w", err)
	}
	return nil
}

// ContainerRunning reports whether a container with exactly this name is
// running.
func ContainerRunning(ctx context.Context, name string) (bool, error) {
	cli, err := Client()
	if err != nil {
		return false, err
	}
	containers, err := cli.ContainerList(ctx, container.ListOptions{
		Filters: filters.NewArgs(filters.Arg("name", "^/"+name+"$")),
	})
	if err != nil {
		return false, fmt.Errorf("listing containers: %w", err)
	}
	return len(containers) > 0, nil
}

// GameserverRunning reports whether the deployment's gameserver container
// is up, which is the liveness signal for the whole deployment.
func GameserverRunning(ctx context.Context) (bool, error) {
	return ContainerRunning(ctx, topology.GameserverContainer)
}

// ImageExists reports whether an image with the given reference is present.
func ImageExists(ctx context.Context, ref string) (bool, error) {
	cli, err := Client()
	if err != nil {
		return false, err
	}
	images, err := cli.ImageList(ctx, image.ListOptions{
		Filters: filters.NewArgs(filters.Arg("reference", ref)),
	})
	if err != nil {
		return false, fmt.Errorf("listing images: %w", err)
	}
	return len(images) > 0, nil
}

// RemoveImage deletes an image; missing images are not an error.
func RemoveImage(ctx context.Context, ref string) error {
	cli, err := Client()
	if err != nil {
		return err
	}
	if _, err := cli.ImageRemove(ctx, ref, image.RemoveOptions{Force: true}); err != nil && !errdefs.IsNotFound(err) {
		return fmt.Errorf("removing image %s: %w", ref, err)
	}
	return nil
}

// RemoveContainer deletes a container; missing containers are not an error.
func RemoveContainer(ctx context.Context, name string) error {
	cli, err := Client()
	if err != nil {
		return err
	}
	err = cli.ContainerRemove(ctx, name, container.RemoveOptions{Force: true})
	if err != nil && !errdefs.IsNotFound(err) {
		return fmt.Errorf("removing container %s: %w", name, err)
	}
	return nil
}

// RemoveVolume force-deletes a named volume; missing volumes are not an
// error.
func RemoveVolume(ctx context.Context, name string) error {
	cli, err := Client()
	if err != nil {
		return err
	}
	if err := cli.VolumeRemove(ctx, name, true); err != nil && !errdefs.IsNotFound(err) {
		return fmt.Errorf("removing volume %s: %w", name, err)
	}
	return nil
}

// RuntimeAvailable reports whether the daemon has the named container
// runtime registered. Used to verify sysbox before compiling a
// non-privileged deployment.
func RuntimeAvailable(ctx context.Context, name string) (bool, error) {
	cli, err := Client()
	if err != nil {
		return false, err
	}
	info, err := cli.Info(ctx)
	if err != nil {
		return false, fmt.Errorf("querying daemon info: %w", err)
	}
	_, ok := info.Runtimes[name]
	return ok, nil
}
