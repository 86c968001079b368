package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "fleetctl",
	Short: "Fleetctl is a command line tool for operating the swipefleet platform",
	Long: `fleetctl is the command-line interface for the swipefleet account and
job coordination platform.

Swipefleet schedules swipe jobs for a fleet of automation accounts onto
VPS execution hosts, enforcing one unfinished job per account and
tracking each account's health status over time.

Common workflows:

  Register an account:
    fleetctl accounts add --username "ada_01" --token "s3cret" --proxy

  Request a job for an account:
    fleetctl run <account-id>
    fleetctl run <account-id> --type status_check

  Inspect a job:
    fleetctl jobs status <job-id>

  Override an account's health status:
    fleetctl accounts status <account-id> banned

  Review the status history:
    fleetctl accounts history <account-id>

Configuration:
  Set the API endpoint and credentials via environment variables or a config file:
    SWIPEFLEET_URL      API endpoint (default: http://localhost:7171)
    SWIPEFLEET_KEY      Operator API key for authentication`,
}

func Execute() error {
	return rootCmd.Execute()
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		// Search config in home directory with name ".fleetctl"
		viper.AddConfigPath(home)
		viper.SetConfigName(".fleetctl")
		viper.SetConfigType("yaml")
	}

	// Read environment variables that match "SWIPEFLEET_VARNAME"
	viper.SetEnvPrefix("SWIPEFLEET")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.fleetctl.yaml)")

	rootCmd.PersistentFlags().String("url", "http://localhost:7171", "Swipefleet Controller URL")
	viper.BindPFlag("url", rootCmd.PersistentFlags().Lookup("url"))

	rootCmd.PersistentFlags().StringP("key", "k", "", "Operator API key for authentication")
	viper.BindPFlag("key", rootCmd.PersistentFlags().Lookup("key"))
}
