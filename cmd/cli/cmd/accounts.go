package cmd

import (
	"net/url"
	"strings"

	"swipefleet/pkg/api"

	"github.com/spf13/cobra"
)

var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "Manage fleet accounts",
}

var accountsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Register a new account",
	Run: func(cmd *cobra.Command, args []string) {
		client, err := clientFromConfig()
		if err != nil {
			cmd.Println(err)
			return
		}

		username, _ := cmd.Flags().GetString("username")
		token, _ := cmd.Flags().GetString("token")
		schedule, _ := cmd.Flags().GetString("schedule")
		warmUp, _ := cmd.Flags().GetBool("warm-up")
		gold, _ := cmd.Flags().GetBool("gold")
		proxy, _ := cmd.Flags().GetBool("proxy")

		req := api.CreateAccountRequest{
			Username:    username,
			AuthToken:   token,
			WarmUp:      warmUp,
			Gold:        gold,
			ProxyActive: proxy,
		}
		if schedule != "" {
			req.ScheduleID = &schedule
		}

		account, err := client.CreateAccount(req)
		if err != nil {
			cmd.Printf("Failed to create account: %v\n", err)
			return
		}
		cmd.Printf("Account registered!\nID: %s\nUsername: %s\nStatus: %s\n",
			account.ID, account.Username, account.Status)
	},
}

var accountsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List accounts, optionally filtered",
	Run: func(cmd *cobra.Command, args []string) {
		client, err := clientFromConfig()
		if err != nil {
			cmd.Println(err)
			return
		}

		q := url.Values{}
		for _, flag := range []string{"class", "alive", "gold", "warm-up", "proxy-active", "scheduled"} {
			if v, _ := cmd.Flags().GetString(flag); v != "" {
				q.Set(strings.ReplaceAll(flag, "-", "_"), v)
			}
		}

		accounts, err := client.ListAccounts(q.Encode())
		if err != nil {
			cmd.Printf("Failed to list accounts: %v\n", err)
			return
		}

		if len(accounts) == 0 {
			cmd.Println("No accounts found.")
			return
		}
		cmd.Printf("%-36s  %-20s  %-16s  %-5s  %s\n", "ID", "USERNAME", "STATUS", "GOLD", "SWIPES")
		for _, a := range accounts {
			gold := "-"
			if a.Gold {
				gold = "yes"
			}
			cmd.Printf("%-36s  %-20s  %-16s  %-5s  %d\n", a.ID, a.Username, a.Status, gold, a.TotalSwipes)
		}
	},
}

var accountsRmCmd = &cobra.Command{
	Use:   "rm [account_id]",
	Short: "Destroy an account, cancelling its unfinished jobs",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client, err := clientFromConfig()
		if err != nil {
			cmd.Println(err)
			return
		}

		if err := client.DeleteAccount(args[0]); err != nil {
			cmd.Printf("Failed to destroy account: %v\n", err)
			return
		}
		cmd.Printf("Account %s destroyed.\n", args[0])
	},
}

var accountsStatusCmd = &cobra.Command{
	Use:   "status [account_id] [status]",
	Short: "Override an account's health status",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		client, err := clientFromConfig()
		if err != nil {
			cmd.Println(err)
			return
		}

		account, err := client.SetStatus(args[0], args[1])
		if err != nil {
			cmd.Printf("Failed to set status: %v\n", err)
			return
		}
		cmd.Printf("Account %s is now %s.\n", account.ID, account.Status)
	},
}

var accountsPreviousCmd = &cobra.Command{
	Use:   "previous [account_id]",
	Short: "Show the last status that was not a VPS error",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client, err := clientFromConfig()
		if err != nil {
			cmd.Println(err)
			return
		}

		resp, err := client.PreviousStatus(args[0])
		if err != nil {
			cmd.Printf("Failed to fetch previous status: %v\n", err)
			return
		}
		cmd.Println(resp.Status)
	},
}

var accountsProfileCmd = &cobra.Command{
	Use:   "profile [account_id]",
	Short: "Show the account's automation-profile metadata",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client, err := clientFromConfig()
		if err != nil {
			cmd.Println(err)
			return
		}

		profile, err := client.Profile(args[0])
		if err != nil {
			cmd.Printf("Failed to fetch profile: %v\n", err)
			return
		}

		cmd.Printf("Profile ID: %s\nName: %s\n", profile.ProfileID, profile.Name)
		if profile.Proxy != "" {
			cmd.Printf("Proxy: %s\n", profile.Proxy)
		}
		for k, v := range profile.Fields {
			cmd.Printf("%s: %s\n", k, v)
		}
	},
}

var accountsHistoryCmd = &cobra.Command{
	Use:   "history [account_id]",
	Short: "Show the account's status transitions, newest first",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client, err := clientFromConfig()
		if err != nil {
			cmd.Println(err)
			return
		}

		transitions, err := client.Transitions(args[0])
		if err != nil {
			cmd.Printf("Failed to fetch history: %v\n", err)
			return
		}

		if len(transitions) == 0 {
			cmd.Println("No status changes recorded.")
			return
		}
		for _, tr := range transitions {
			cmd.Printf("%s  %s -> %s\n", tr.CreatedAt.Format("2006-01-02 15:04:05"), tr.BeforeStatus, tr.AfterStatus)
		}
	},
}

func init() {
	accountsAddCmd.Flags().String("username", "", "Account username (required)")
	accountsAddCmd.Flags().String("token", "", "Account auth token (required)")
	accountsAddCmd.Flags().String("schedule", "", "Schedule ID binding the account to a VPS")
	accountsAddCmd.Flags().Bool("warm-up", false, "Mark the account as warming up")
	accountsAddCmd.Flags().Bool("gold", false, "Mark the account as gold tier")
	accountsAddCmd.Flags().Bool("proxy", false, "Mark the account's proxy as healthy")
	accountsAddCmd.MarkFlagRequired("username")
	accountsAddCmd.MarkFlagRequired("token")

	accountsListCmd.Flags().String("class", "", "Filter by activity class (swipeable, banned, attention, transient)")
	accountsListCmd.Flags().String("alive", "", "Filter by liveness (true/false)")
	accountsListCmd.Flags().String("gold", "", "Filter by gold tier (true/false)")
	accountsListCmd.Flags().String("warm-up", "", "Filter by warm-up flag (true/false)")
	accountsListCmd.Flags().String("proxy-active", "", "Filter by proxy health (true/false)")
	accountsListCmd.Flags().String("scheduled", "", "Filter by schedule binding (true/false)")

	accountsCmd.AddCommand(accountsAddCmd)
	accountsCmd.AddCommand(accountsListCmd)
	accountsCmd.AddCommand(accountsRmCmd)
	accountsCmd.AddCommand(accountsStatusCmd)
	accountsCmd.AddCommand(accountsPreviousCmd)
	accountsCmd.AddCommand(accountsProfileCmd)
	accountsCmd.AddCommand(accountsHistoryCmd)
	rootCmd.AddCommand(accountsCmd)
}
