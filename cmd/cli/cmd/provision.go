package cmd

import (
	"fmt"
	"io"
	"os"

	"swipefleet/internal/logger"
	"swipefleet/internal/orchestrator"
	"swipefleet/internal/store"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var vpsProvisionCmd = &cobra.Command{
	Use:   "provision [vps_id_or_name]",
	Short: "Start an executor container for a registered VPS",
	Long: `Provision starts the swipe executor container for a registered VPS
on the local Docker daemon (or the one pointed to by DOCKER_HOST).
The executor receives the VPS identity and the controller callback
URL through its environment.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client, err := clientFromConfig()
		if err != nil {
			cmd.Println(err)
			return
		}

		vps, err := resolveVPS(client, args[0])
		if err != nil {
			cmd.Printf("Failed to resolve vps: %v\n", err)
			return
		}

		orch, err := orchestrator.New(logger.New())
		if err != nil {
			cmd.Printf("Failed to connect to docker: %v\n", err)
			return
		}

		image, _ := cmd.Flags().GetString("image")
		follow, _ := cmd.Flags().GetBool("follow")

		ctx := cmd.Context()
		handle, err := orch.Provision(ctx, vps, orchestrator.ProvisionOptions{
			Image:         image,
			ControllerURL: viper.GetString("url"),
		})
		if err != nil {
			cmd.Printf("Failed to provision executor: %v\n", err)
			return
		}
		cmd.Printf("Executor provisioned for %s\nContainer: %s\n", vps.Name, handle.ContainerID)

		if !follow {
			return
		}
		logs, err := handle.Logs(ctx)
		if err != nil {
			cmd.Printf("Failed to attach logs: %v\n", err)
			return
		}
		defer logs.Close()
		go io.Copy(os.Stdout, logs)

		code, err := handle.Wait(ctx)
		if err != nil {
			cmd.Printf("Executor wait failed: %v\n", err)
			return
		}
		cmd.Printf("Executor exited with code %d\n", code)
	},
}

// resolveVPS looks the argument up against the registered fleet,
// matching by ID first and falling back to the unique name.
func resolveVPS(client *FleetClient, idOrName string) (*store.VPS, error) {
	hosts, err := client.ListVPS()
	if err != nil {
		return nil, err
	}
	for _, v := range hosts {
		if v.ID == idOrName || v.Name == idOrName {
			id, err := uuid.Parse(v.ID)
			if err != nil {
				return nil, fmt.Errorf("controller returned malformed vps id %q: %w", v.ID, err)
			}
			return &store.VPS{ID: id, Name: v.Name, Address: v.Address}, nil
		}
	}
	return nil, fmt.Errorf("no vps matches %q", idOrName)
}

func init() {
	vpsProvisionCmd.Flags().String("image", "swipefleet/executor:latest", "Executor container image")
	vpsProvisionCmd.Flags().Bool("follow", false, "Stream executor logs and wait for exit")

	vpsCmd.AddCommand(vpsProvisionCmd)
}
