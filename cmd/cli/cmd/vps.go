package cmd

import (
	"swipefleet/pkg/api"

	"github.com/spf13/cobra"
)

var vpsCmd = &cobra.Command{
	Use:   "vps",
	Short: "Manage VPS execution hosts",
}

var vpsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Register a new VPS",
	Run: func(cmd *cobra.Command, args []string) {
		client, err := clientFromConfig()
		if err != nil {
			cmd.Println(err)
			return
		}

		name, _ := cmd.Flags().GetString("name")
		address, _ := cmd.Flags().GetString("address")
		owner, _ := cmd.Flags().GetString("owner")
		schedule, _ := cmd.Flags().GetString("schedule")

		req := api.CreateVPSRequest{
			Name:    name,
			Address: address,
			OwnerID: owner,
		}
		if schedule != "" {
			req.ScheduleID = &schedule
		}

		vps, err := client.CreateVPS(req)
		if err != nil {
			cmd.Printf("Failed to create vps: %v\n", err)
			return
		}
		cmd.Printf("VPS registered!\nID: %s\nName: %s\nAddress: %s\n", vps.ID, vps.Name, vps.Address)
	},
}

var vpsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List VPS hosts",
	Run: func(cmd *cobra.Command, args []string) {
		client, err := clientFromConfig()
		if err != nil {
			cmd.Println(err)
			return
		}

		hosts, err := client.ListVPS()
		if err != nil {
			cmd.Printf("Failed to list vps: %v\n", err)
			return
		}

		if len(hosts) == 0 {
			cmd.Println("No VPS hosts found.")
			return
		}
		cmd.Printf("%-36s  %-20s  %-16s  %s\n", "ID", "NAME", "ADDRESS", "SCHEDULE")
		for _, v := range hosts {
			schedule := "-"
			if v.ScheduleID != nil {
				schedule = *v.ScheduleID
			}
			cmd.Printf("%-36s  %-20s  %-16s  %s\n", v.ID, v.Name, v.Address, schedule)
		}
	},
}

var vpsRmCmd = &cobra.Command{
	Use:   "rm [vps_id]",
	Short: "Destroy a VPS, cancelling jobs bound to it",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client, err := clientFromConfig()
		if err != nil {
			cmd.Println(err)
			return
		}

		if err := client.DeleteVPS(args[0]); err != nil {
			cmd.Printf("Failed to destroy vps: %v\n", err)
			return
		}
		cmd.Printf("VPS %s destroyed.\n", args[0])
	},
}

var vpsLocateCmd = &cobra.Command{
	Use:   "locate [vps_id]",
	Short: "Resolve a VPS address to its geographic location",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client, err := clientFromConfig()
		if err != nil {
			cmd.Println(err)
			return
		}

		loc, err := client.VPSLocation(args[0])
		if err != nil {
			cmd.Printf("Failed to locate vps: %v\n", err)
			return
		}

		cmd.Printf("Address: %s\nCountry: %s\n", loc.Address, loc.Country)
		if loc.City != "" {
			cmd.Printf("City: %s\n", loc.City)
		}
		if loc.Lat != 0 || loc.Lon != 0 {
			cmd.Printf("Coordinates: %.4f, %.4f\n", loc.Lat, loc.Lon)
		}
	},
}

func init() {
	vpsAddCmd.Flags().String("name", "", "Unique VPS name (required)")
	vpsAddCmd.Flags().String("address", "", "Network address (required)")
	vpsAddCmd.Flags().String("owner", "", "Owner ID (required)")
	vpsAddCmd.Flags().String("schedule", "", "Schedule ID served by this VPS")
	vpsAddCmd.MarkFlagRequired("name")
	vpsAddCmd.MarkFlagRequired("address")
	vpsAddCmd.MarkFlagRequired("owner")

	vpsCmd.AddCommand(vpsAddCmd)
	vpsCmd.AddCommand(vpsListCmd)
	vpsCmd.AddCommand(vpsRmCmd)
	vpsCmd.AddCommand(vpsLocateCmd)
	rootCmd.AddCommand(vpsCmd)
}
