package cmd

import (
	"time"

	"swipefleet/pkg/api"

	"github.com/spf13/cobra"
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Inspect and cancel jobs",
}

var jobsStatusCmd = &cobra.Command{
	Use:   "status [job_id]",
	Short: "Show the current state of a job",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client, err := clientFromConfig()
		if err != nil {
			cmd.Println(err)
			return
		}

		job, err := client.GetJob(args[0])
		if err != nil {
			cmd.Printf("Failed to fetch job: %v\n", err)
			return
		}
		printJob(cmd, job)
	},
}

var jobsCancelCmd = &cobra.Command{
	Use:   "cancel [job_id]",
	Short: "Cancel a job (no-op if already finished)",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client, err := clientFromConfig()
		if err != nil {
			cmd.Println(err)
			return
		}

		job, err := client.CancelJob(args[0])
		if err != nil {
			cmd.Printf("Failed to cancel job: %v\n", err)
			return
		}
		cmd.Printf("Job %s is %s.\n", job.ID, job.Status)
	},
}

func printJob(cmd *cobra.Command, job *api.JobResponse) {
	cmd.Println("Job Details")
	cmd.Println("──────────────────────────────")
	cmd.Printf("ID:         %s\n", job.ID)
	cmd.Printf("Account:    %s\n", job.AccountID)
	cmd.Printf("Type:       %s\n", job.Type)
	cmd.Printf("Status:     %s\n", job.Status)
	cmd.Printf("Created by: %s\n", job.CreatedBy)
	cmd.Printf("Swipes:     %d\n", job.Swipes)
	if job.VPSID != nil {
		cmd.Printf("VPS:        %s\n", *job.VPSID)
	}
	if job.Error != nil {
		cmd.Printf("Error:      %s\n", *job.Error)
	}
	cmd.Printf("Created:    %s\n", formatTime(&job.CreatedAt))
	cmd.Printf("Started:    %s\n", formatTime(job.StartedAt))
	cmd.Printf("Finished:   %s\n", formatTime(job.FinishedAt))
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

func init() {
	jobsCmd.AddCommand(jobsStatusCmd)
	jobsCmd.AddCommand(jobsCancelCmd)
	rootCmd.AddCommand(jobsCmd)
}
