package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmerrifield20/invoicehub/pkg/client"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is overridden via -ldflags "-X main.version=...".
var version = "dev"

var (
	serverURL    string
	cfgFile      string
	outputFormat string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "invoicectl",
	Short: "invoicehub command-line client",
	Long: `invoicectl talks to an invoicehub server.

Log in once with 'invoicectl login'; the access token is saved to
~/.invoicehub/config.yaml and reused by later commands.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cfgFile != "" {
			viper.SetConfigFile(cfgFile)
		} else {
			viper.SetConfigFile(defaultConfigPath())
		}
		viper.SetEnvPrefix("INVOICEHUB")
		viper.AutomaticEnv()
		_ = viper.ReadInConfig()

		if serverURL == "" {
			serverURL = viper.GetString("server_url")
		}
		if serverURL == "" {
			serverURL = "http://localhost:8080"
		}
		if outputFormat != "text" && outputFormat != "json" {
			return fmt.Errorf("unknown output format %q (text or json)", outputFormat)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.invoicehub/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "invoicehub server URL (default http://localhost:8080)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "text", "Output format: text or json")

	rootCmd.AddCommand(loginCmd, registerCmd, whoamiCmd, invoicesCmd, personsCmd, versionCmd)
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "invoicehub.yaml"
	}
	return filepath.Join(home, ".invoicehub", "config.yaml")
}

// newClient returns a client carrying the saved token, if any.
func newClient() (*client.Client, error) {
	var opts []client.Option
	if tok := viper.GetString("token"); tok != "" {
		opts = append(opts, client.WithBearerToken(tok))
	}
	return client.New(serverURL, opts...)
}

// ── version ──────────────────────────────────────────────────────────────────

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the invoicectl version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "invoicectl %s\n", version)
	},
}
