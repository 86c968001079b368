package cmd

import (
	"errors"

	"swipefleet/pkg/api"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run [account_id]",
	Short: "Request a new job for an account",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client, err := clientFromConfig()
		if err != nil {
			cmd.Println(err)
			return
		}

		jobType, _ := cmd.Flags().GetString("type")
		vpsID, _ := cmd.Flags().GetString("vps")

		req := api.RequestJobRequest{Type: jobType}
		if vpsID != "" {
			req.VPSID = &vpsID
		}

		job, err := client.RequestJob(args[0], req)
		if err != nil {
			var apiErr *APIError
			if errors.As(err, &apiErr) && len(apiErr.ConflictingJobIDs) > 0 {
				cmd.Printf("Account is busy. Unfinished jobs:\n")
				for _, id := range apiErr.ConflictingJobIDs {
					cmd.Printf("  %s\n", id)
				}
				return
			}
			cmd.Printf("Failed to request job: %v\n", err)
			return
		}

		cmd.Printf("Job admitted!\nID: %s\nType: %s\nStatus: %s\n", job.ID, job.Type, job.Status)
		if job.VPSID != nil {
			cmd.Printf("VPS: %s\n", *job.VPSID)
		}
	},
}

func init() {
	runCmd.Flags().String("type", "", "Job type: swipe (default) or status_check")
	runCmd.Flags().String("vps", "", "Pin the job to a specific VPS by ID")
	rootCmd.AddCommand(runCmd)
}
