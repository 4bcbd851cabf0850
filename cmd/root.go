package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "oasis",
	Short: "Provision attack-defense CTF networks on Docker",
	Long: `oasis compiles a competition config into a full attack-defense network:
one vulnerable VM and one WireGuard endpoint per team, a router enforcing
the game's traffic rules, and a gameserver with its database.

Everything runs as a single Docker Compose project named "oasis".`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "defaults file (default: oasis.yml)")
}

// initConfig loads the optional defaults layer: oasis.yml plus OASIS_*
// environment variables. The competition config itself lives in
// config.json and is not touched here.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("oasis")
		viper.SetConfigType("yml")
		viper.AddConfigPath(".")
	}

	viper.SetEnvPrefix("OASIS")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintf(os.Stderr, "Error reading defaults: %v\n", err)
		}
	}
}
