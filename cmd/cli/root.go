package main

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "cartctl",
	Short: "cartctl is the command-line client for the cartpilot service.",
	Long: `A CLI for submitting grocery lists to cartpilot, following cart jobs as they
run, and administering subscription tiers.`,
	SilenceUsage: true,
}

func init() { //nolint:gochecknoinits // Cobra's init function for command registration
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("server", "http://localhost:3001", "cartpilot API base URL")
	rootCmd.PersistentFlags().StringP("token", "t", "", "bearer token identifying the user")
	rootCmd.PersistentFlags().Duration("timeout", 15*time.Second, "HTTP request timeout")

	for _, name := range []string{"server", "token", "timeout"} {
		if err := viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name)); err != nil {
			slog.Error("Error binding flag", "flag", name, "error", err)
			os.Exit(1)
		}
	}
}

// initConfig reads ENV variables such as CARTCTL_TOKEN.
func initConfig() {
	viper.SetEnvPrefix("CARTCTL")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func newClientFromFlags() *apiClient {
	return newAPIClient(viper.GetString("server"), viper.GetString("token"), viper.GetDuration("timeout"))
}
