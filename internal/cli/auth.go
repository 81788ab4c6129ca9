package cli

import (
	"fmt"
	"net"
	"os"
	"os/exec"
	"runtime"
	"time"

	"github.com/dl-alexandre/dsync/internal/auth"
	"github.com/dl-alexandre/dsync/internal/config"
	"github.com/dl-alexandre/dsync/internal/utils"
	"github.com/spf13/cobra"
)

const authTimeout = 5 * time.Minute

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage authentication credentials",
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate with Google Drive",
	Long: `Authenticate with Google Drive via the browser OAuth flow.

Client credentials come from the DSYNC_CLIENT_ID and DSYNC_CLIENT_SECRET
environment variables.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configDir, err := config.GetConfigDir()
		if err != nil {
			return err
		}
		manager := auth.NewManager(configDir)
		if warning := manager.GetStorageWarning(); warning != "" {
			fmt.Fprintln(os.Stderr, warning)
		}
		if !setOAuthConfigFromEnv(manager) {
			return utils.NewAppError(utils.NewCLIError(utils.ErrCodeAuthRequired,
				"Set DSYNC_CLIENT_ID and DSYNC_CLIENT_SECRET before logging in.").Build())
		}

		listener, err := net.Listen("tcp", "localhost:8085")
		if err != nil {
			return fmt.Errorf("failed to start callback listener: %w", err)
		}
		defer listener.Close()

		flow, err := auth.NewOAuthFlow(manager.GetOAuthConfig(), listener, "")
		if err != nil {
			return err
		}
		flow.StartCallbackServer(cmd.Context())

		authURL := flow.GetAuthURL()
		fmt.Fprintf(os.Stderr, "Opening browser for authentication...\nIf it does not open, visit:\n%s\n", authURL)
		openBrowser(authURL)

		code, err := flow.WaitForCode(authTimeout)
		if err != nil {
			return err
		}
		creds, err := flow.ExchangeCode(cmd.Context(), code)
		if err != nil {
			return err
		}
		if err := manager.SaveCredentials(globalFlags.Profile, creds); err != nil {
			return err
		}

		writer := NewOutputWriter(globalFlags.OutputFormat, globalFlags.Quiet)
		return writer.WriteSuccess("auth login", map[string]string{
			"profile": globalFlags.Profile,
			"storage": manager.GetStorageBackend(),
		})
	},
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove stored credentials for the current profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		configDir, err := config.GetConfigDir()
		if err != nil {
			return err
		}
		manager := auth.NewManager(configDir)
		if err := manager.DeleteCredentials(globalFlags.Profile); err != nil {
			return err
		}

		writer := NewOutputWriter(globalFlags.OutputFormat, globalFlags.Quiet)
		return writer.WriteSuccess("auth logout", map[string]string{
			"profile": globalFlags.Profile,
		})
	},
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show credential status for the current profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		configDir, err := config.GetConfigDir()
		if err != nil {
			return err
		}
		manager := auth.NewManager(configDir)

		status := map[string]string{
			"profile": globalFlags.Profile,
			"storage": manager.GetStorageBackend(),
		}
		creds, err := manager.LoadCredentials(globalFlags.Profile)
		if err != nil {
			status["authenticated"] = "false"
		} else {
			status["authenticated"] = "true"
			status["expires"] = creds.ExpiryDate.Format(time.RFC3339)
		}

		writer := NewOutputWriter(globalFlags.OutputFormat, globalFlags.Quiet)
		return writer.WriteSuccess("auth status", status)
	},
}

func init() {
	authCmd.AddCommand(authLoginCmd, authLogoutCmd, authStatusCmd)
	rootCmd.AddCommand(authCmd)
}

// setOAuthConfigFromEnv wires client credentials from the environment.
// Returns false when they are not set.
func setOAuthConfigFromEnv(manager *auth.Manager) bool {
	clientID := os.Getenv(config.EnvPrefix + "CLIENT_ID")
	clientSecret := os.Getenv(config.EnvPrefix + "CLIENT_SECRET")
	if clientID == "" {
		return false
	}
	manager.SetOAuthConfig(clientID, clientSecret, utils.ScopesSync)
	return true
}

func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	_ = cmd.Start()
}
