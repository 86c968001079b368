// Package orchestrator provisions the per-VPS swipe executor containers
// through the Docker SDK. The executors themselves report back to the
// controller over HTTP; this package only manages their lifecycle.
package orchestrator

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"swipefleet/internal/store"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
)

// Orchestrator manages executor containers on the orchestration platform.
type Orchestrator struct {
	client *client.Client
	logger *slog.Logger
}

// Handle represents a provisioned executor container.
type Handle struct {
	client      *client.Client
	ContainerID string
}

// New creates an orchestrator from the standard Docker environment
// variables (DOCKER_HOST, etc.).
func New(logger *slog.Logger) (*Orchestrator, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to create docker client: %w", err)
	}
	return &Orchestrator{client: cli, logger: logger.With("component", "orchestrator")}, nil
}

// ProvisionOptions describes the executor container to start for a VPS.
type ProvisionOptions struct {
	Image         string
	ControllerURL string
	Env           map[string]string
}

// Provision pulls the executor image if needed and starts a container
// pinned to the VPS. The executor learns its target host and the
// controller callback endpoint through the environment.
func (o *Orchestrator) Provision(ctx context.Context, vps *store.VPS, opts ProvisionOptions) (*Handle, error) {
	if _, _, err := o.client.ImageInspectWithRaw(ctx, opts.Image); err != nil {
		reader, err := o.client.ImagePull(ctx, opts.Image, image.PullOptions{})
		if err != nil {
			return nil, fmt.Errorf("failed to pull image %s: %w", opts.Image, err)
		}
		defer reader.Close()
		io.Copy(io.Discard, reader)
	}

	env := []string{
		fmt.Sprintf("VPS_ID=%s", vps.ID),
		fmt.Sprintf("VPS_ADDRESS=%s", vps.Address),
		fmt.Sprintf("CONTROLLER_URL=%s", opts.ControllerURL),
	}
	for k, v := range opts.Env {
		env = append(env, fmt.Sprintf("%s=%s", k, v))
	}

	containerConfig := &container.Config{
		Image: opts.Image,
		Env:   env,
		Tty:   true,
	}
	created, err := o.client.ContainerCreate(ctx, containerConfig, nil, nil, nil, "swipefleet-"+vps.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to create executor container: %w", err)
	}

	if err := o.client.ContainerStart(ctx, created.ID, container.StartOptions{}); err != nil {
		return nil, fmt.Errorf("failed to start executor container: %w", err)
	}

	o.logger.Info("executor provisioned", "vps_id", vps.ID, "container_id", created.ID)
	return &Handle{client: o.client, ContainerID: created.ID}, nil
}

// Wait blocks until the executor container exits.
func (h *Handle) Wait(ctx context.Context) (int, error) {
	statusCh, errCh := h.client.ContainerWait(ctx, h.ContainerID, container.WaitConditionNotRunning)

	select {
	case err := <-errCh:
		return -1, err
	case status := <-statusCh:
		if status.Error != nil {
			return int(status.StatusCode), fmt.Errorf("%s", status.Error.Message)
		}
		return int(status.StatusCode), nil
	case <-ctx.Done():
		return -1, ctx.Err()
	}
}

// Stop terminates the executor container with a short grace period.
func (h *Handle) Stop(ctx context.Context) error {
	timeOut := 5
	return h.client.ContainerStop(ctx, h.ContainerID, container.StopOptions{Timeout: &timeOut})
}

// Logs follows the executor's stdout/stderr.
func (h *Handle) Logs(ctx context.Context) (io.ReadCloser, error) {
	return h.client.ContainerLogs(ctx, h.ContainerID, container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
		Follow:     true,
	})
}
