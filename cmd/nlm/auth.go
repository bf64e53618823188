package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/anatolykoptev/go_notebooklm/internal/engine"
	"github.com/anatolykoptev/go_notebooklm/internal/engine/notebooks"
)

func authCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage Google authentication for browser automation",
	}
	cmd.AddCommand(authSetupCmd(), authStatusCmd(), authValidateCmd(), authClearCmd(), authReauthCmd())
	return cmd
}

func newAuthManager() (*notebooks.AuthManager, error) {
	return notebooks.NewAuthManager(engine.Cfg.DataDir)
}

func authSetupCmd() *cobra.Command {
	var headless bool
	var timeoutMin int

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Log in to Google and persist the browser session",
		Long: `Opens NotebookLM in a visible browser window and waits for you to
complete the Google login. Cookies and the browser profile are saved
so later operations can run headless.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			auth, err := newAuthManager()
			if err != nil {
				return err
			}
			if err := auth.Setup(headless, loginTimeout(timeoutMin)); err != nil {
				return err
			}
			fmt.Println("Authentication setup complete")
			return nil
		},
	}

	cmd.Flags().BoolVar(&headless, "headless", false, "run headless (only works when the profile is already valid)")
	cmd.Flags().IntVar(&timeoutMin, "timeout", 0, "login timeout in minutes (default from config)")
	return cmd
}

func authStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show stored authentication status",
		RunE: func(_ *cobra.Command, _ []string) error {
			auth, err := newAuthManager()
			if err != nil {
				return err
			}
			return printJSON(auth.Status())
		},
	}
}

func authValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Verify stored authentication still works",
		RunE: func(_ *cobra.Command, _ []string) error {
			auth, err := newAuthManager()
			if err != nil {
				return err
			}
			ok, err := auth.Validate()
			if err != nil {
				return err
			}
			if ok {
				fmt.Println("Authentication is valid")
			} else {
				fmt.Println("Authentication is invalid or expired. Run: nlm auth setup")
			}
			return nil
		},
	}
}

func authClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all stored authentication data",
		RunE: func(_ *cobra.Command, _ []string) error {
			auth, err := newAuthManager()
			if err != nil {
				return err
			}
			if err := auth.Clear(); err != nil {
				return err
			}
			fmt.Println("Authentication cleared")
			return nil
		},
	}
}

func authReauthCmd() *cobra.Command {
	var timeoutMin int

	cmd := &cobra.Command{
		Use:   "reauth",
		Short: "Clear stored authentication and log in again",
		RunE: func(_ *cobra.Command, _ []string) error {
			auth, err := newAuthManager()
			if err != nil {
				return err
			}
			if err := auth.Reauth(false, loginTimeout(timeoutMin)); err != nil {
				return err
			}
			fmt.Println("Re-authentication complete")
			return nil
		},
	}

	cmd.Flags().IntVar(&timeoutMin, "timeout", 0, "login timeout in minutes (default from config)")
	return cmd
}

func loginTimeout(minutes int) time.Duration {
	if minutes > 0 {
		return time.Duration(minutes) * time.Minute
	}
	return engine.Cfg.LoginTimeout
}
