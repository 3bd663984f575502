package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmerrifield20/invoicehub/pkg/client"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	loginEmail    string
	loginPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in with email and password and save the access token",
	Long: `login authenticates against the server and stores the returned token.

The password is read from --password, or from stdin when the flag is omitted:

  echo "$PASSWORD" | invoicectl login --email alice@example.com`,
	RunE: runLogin,
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "Account email (required)")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "Account password (read from stdin when empty)")
	_ = loginCmd.MarkFlagRequired("email")
}

func runLogin(cmd *cobra.Command, args []string) error {
	password := loginPassword
	if password == "" {
		var err error
		if password, err = readPassword(cmd.InOrStdin(), cmd.ErrOrStderr()); err != nil {
			return err
		}
	}

	c, err := client.New(serverURL)
	if err != nil {
		return err
	}
	session, err := c.Login(context.Background(), loginEmail, password)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}

	if err := saveToken(session.Token); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%s)\n", session.Email, session.Role)
	return nil
}

func readPassword(in io.Reader, prompt io.Writer) (string, error) {
	fmt.Fprint(prompt, "Password: ")
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("read password: %w", err)
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", fmt.Errorf("password is required")
	}
	return line, nil
}

// saveToken writes the token and server URL to the active config file.
func saveToken(token string) error {
	path := viper.ConfigFileUsed()
	if path == "" {
		path = defaultConfigPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	viper.Set("token", token)
	viper.Set("server_url", serverURL)
	if err := viper.WriteConfigAs(path); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	return os.Chmod(path, 0o600)
}

// ── register ─────────────────────────────────────────────────────────────────

var regReq client.RegisterRequest

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a local account",
	RunE: func(cmd *cobra.Command, args []string) error {
		if regReq.Password == "" {
			var err error
			if regReq.Password, err = readPassword(cmd.InOrStdin(), cmd.ErrOrStderr()); err != nil {
				return err
			}
		}
		c, err := client.New(serverURL)
		if err != nil {
			return err
		}
		if err := c.Register(context.Background(), regReq); err != nil {
			return fmt.Errorf("register: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Registered %s. Run 'invoicectl login --email %s' next.\n", regReq.Email, regReq.Email)
		return nil
	},
}

func init() {
	registerCmd.Flags().StringVar(&regReq.Email, "email", "", "Account email (required)")
	registerCmd.Flags().StringVar(&regReq.Password, "password", "", "Password (read from stdin when empty)")
	registerCmd.Flags().StringVar(&regReq.FirstName, "first-name", "", "First name")
	registerCmd.Flags().StringVar(&regReq.LastName, "last-name", "", "Last name")
	registerCmd.Flags().StringVar(&regReq.Phone, "phone", "", "Phone number")
	_ = registerCmd.MarkFlagRequired("email")
}

// ── whoami ───────────────────────────────────────────────────────────────────

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the account the saved token belongs to",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		a, err := c.Me(context.Background())
		if err != nil {
			return fmt.Errorf("whoami: %w", err)
		}
		if outputFormat == "json" {
			return printJSON(cmd.OutOrStdout(), a)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s <%s> %s\n", a.FirstName, a.LastName, a.Email, a.Role)
		return nil
	},
}
