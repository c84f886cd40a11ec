package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	authclient "github.com/goliatone/go-authclient"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-print"
	"github.com/spf13/cobra"
)

var (
	apiBase   string
	tokenPath string

	lgr *glog.BaseLogger
)

func main() {
	lgr = glog.NewLogger(
		glog.WithLoggerTypePretty(),
		glog.WithLevel(glog.Trace),
		glog.WithName("authctl"),
		glog.WithAddSource(false),
		glog.WithRichErrorHandler(errors.ToSlogAttributes),
	)

	root := &cobra.Command{
		Use:           "authctl",
		Short:         "Session client for the secrets vault backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	defaultToken := ""
	if dir, err := os.UserConfigDir(); err == nil {
		defaultToken = filepath.Join(dir, "authctl", "token.json")
	}

	root.PersistentFlags().StringVar(&apiBase, "api", envOr("AUTHCTL_API", "http://localhost:8080/api"), "backend API base URL")
	root.PersistentFlags().StringVar(&tokenPath, "token-file", envOr("AUTHCTL_TOKEN_FILE", defaultToken), "where the session token is persisted")

	root.AddCommand(
		newLoginCmd(),
		newLogoutCmd(),
		newMeCmd(),
		newRegisterCmd(),
		newTwoFactorCmd(),
		newSecretsCmd(),
		newForgotPasswordCmd(),
		newResetPasswordCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", authclient.UserMessage(err))
		os.Exit(1)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// newSession builds the machine and resurrects any persisted session.
func newSession(ctx context.Context) (*authclient.SessionStateMachine, error) {
	store, err := authclient.NewFileTokenStore(tokenPath)
	if err != nil {
		return nil, err
	}

	gateway := authclient.NewHTTPGateway(apiBase)

	machine := authclient.NewSessionStateMachine(
		store,
		gateway,
		authclient.WithStateMachineLogger(lgr.GetLogger("session")),
	)

	if err := machine.Bootstrap(ctx); err != nil {
		return nil, err
	}

	return machine, nil
}

func newLoginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate against the backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			machine, err := newSession(ctx)
			if err != nil {
				return err
			}

			if machine.CurrentStatus() == authclient.StatusAuthenticated {
				fmt.Println("Already logged in; run `authctl logout` first.")
				return nil
			}

			creds := authclient.Credentials{Email: email, Password: password}
			result, err := machine.Login(ctx, creds)
			if err != nil {
				return err
			}

			if result.RequiresTwoFactor {
				code, err := promptLine("Two-factor code: ")
				if err != nil {
					return err
				}
				if result, err = machine.SubmitTwoFactor(ctx, creds, code); err != nil {
					return err
				}
			}

			fmt.Printf("Logged in as %s\n", result.User.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("password")

	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Drop the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			machine, err := newSession(ctx)
			if err != nil {
				return err
			}

			if machine.CurrentStatus() != authclient.StatusAuthenticated {
				fmt.Println("Not logged in.")
				return nil
			}

			if err := machine.Logout(ctx); err != nil {
				return err
			}

			fmt.Println("Logged out.")
			return nil
		},
	}
}

func newMeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show the current account profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			machine, err := newSession(ctx)
			if err != nil {
				return err
			}

			if err := machine.RefreshUser(ctx); err != nil {
				return err
			}

			snapshot := machine.Snapshot()
			fmt.Println(print.MaybePrettyJSON(snapshot.User))
			return nil
		},
	}
}

func newRegisterCmd() *cobra.Command {
	msg := authclient.RegisterUserMessage{}

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a new account",
		RunE: func(cmd *cobra.Command, args []string) error {
			gateway := authclient.NewHTTPGateway(apiBase)
			handler := authclient.NewRegisterUserHandler(gateway)

			if err := handler.Execute(cmd.Context(), msg); err != nil {
				return err
			}

			fmt.Println("Registered. You can now log in.")
			return nil
		},
	}

	cmd.Flags().StringVar(&msg.FirstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&msg.LastName, "last-name", "", "last name")
	cmd.Flags().StringVar(&msg.Email, "email", "", "account email")
	cmd.Flags().StringVar(&msg.Password, "password", "", "account password")
	cmd.Flags().StringVar(&msg.PasswordConfirmation, "confirm-password", "", "password confirmation")
	cmd.Flags().StringVar(&msg.RecaptchaToken, "recaptcha-token", "", "captcha token from the registration page")

	return cmd
}

func newTwoFactorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "2fa",
		Short: "Manage two-factor authentication",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "setup",
			Short: "Start 2FA enrollment",
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx := cmd.Context()
				machine, err := newSession(ctx)
				if err != nil {
					return err
				}

				setup, err := machine.SetupTwoFactor(ctx)
				if err != nil {
					return err
				}

				fmt.Println("Secret key:", setup.SecretKey)
				fmt.Println("Backup codes:", strings.Join(setup.BackupCodes, " "))
				fmt.Println("Scan the QR code, then run `authctl 2fa verify --code <code>`.")
				return nil
			},
		},
		newTwoFactorCodeCmd("verify", "Confirm 2FA enrollment with a code",
			func(ctx context.Context, m *authclient.SessionStateMachine, code string) error {
				return m.VerifyTwoFactor(ctx, code)
			}),
		newTwoFactorCodeCmd("disable", "Turn 2FA off",
			func(ctx context.Context, m *authclient.SessionStateMachine, code string) error {
				return m.DisableTwoFactor(ctx, code)
			}),
	)

	return cmd
}

func newTwoFactorCodeCmd(use, short string, run func(context.Context, *authclient.SessionStateMachine, string) error) *cobra.Command {
	var code string

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			machine, err := newSession(ctx)
			if err != nil {
				return err
			}

			if err := run(ctx, machine, code); err != nil {
				return err
			}

			fmt.Println("Done.")
			return nil
		},
	}

	cmd.Flags().StringVar(&code, "code", "", "six digit authenticator code")
	cmd.MarkFlagRequired("code")

	return cmd
}

func newSecretsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "secrets",
		Short: "Read and write vault secrets",
	}

	cmd.AddCommand(newSecretsListCmd(), newSecretsPutCmd())
	return cmd
}

func newSecretsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all secrets for the current account",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			machine, err := newSession(ctx)
			if err != nil {
				return err
			}

			secrets := authclient.NewSecretsClient(apiBase, machine)
			entries, err := secrets.List(ctx)
			if err != nil {
				return err
			}

			fmt.Println(print.MaybePrettyJSON(entries))
			return nil
		},
	}
}

func newSecretsPutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "put",
		Short: "Store a new secret",
	}

	var userName, password, siteURL string
	credential := &cobra.Command{
		Use:   "credential",
		Short: "Store a site credential",
		RunE: func(cmd *cobra.Command, args []string) error {
			return putSecret(cmd.Context(), authclient.NewCredentialContent(userName, password, siteURL))
		},
	}
	credential.Flags().StringVar(&userName, "user", "", "site user name")
	credential.Flags().StringVar(&password, "password", "", "site password")
	credential.Flags().StringVar(&siteURL, "url", "", "site URL")

	var cardType, cardNumber, expiration, cvv string
	card := &cobra.Command{
		Use:   "card",
		Short: "Store a credit card",
		RunE: func(cmd *cobra.Command, args []string) error {
			return putSecret(cmd.Context(), authclient.NewCreditCardContent(cardType, cardNumber, expiration, cvv))
		},
	}
	card.Flags().StringVar(&cardType, "type", "", "card type")
	card.Flags().StringVar(&cardNumber, "number", "", "card number")
	card.Flags().StringVar(&expiration, "expiration", "", "expiration MM/YY")
	card.Flags().StringVar(&cvv, "cvv", "", "card CVV")

	var title, note string
	noteCmd := &cobra.Command{
		Use:   "note",
		Short: "Store a note",
		RunE: func(cmd *cobra.Command, args []string) error {
			return putSecret(cmd.Context(), authclient.NewNoteContent(title, note))
		},
	}
	noteCmd.Flags().StringVar(&title, "title", "", "note title")
	noteCmd.Flags().StringVar(&note, "content", "", "note content")

	cmd.AddCommand(credential, card, noteCmd)
	return cmd
}

func putSecret(ctx context.Context, content authclient.SecretContent) error {
	machine, err := newSession(ctx)
	if err != nil {
		return err
	}

	secrets := authclient.NewSecretsClient(apiBase, machine)
	if err := secrets.Put(ctx, content); err != nil {
		return err
	}

	fmt.Println("Secret stored.")
	return nil
}

func newForgotPasswordCmd() *cobra.Command {
	msg := authclient.PasswordResetInitializeMessage{}

	cmd := &cobra.Command{
		Use:   "forgot-password",
		Short: "Request a password reset email",
		RunE: func(cmd *cobra.Command, args []string) error {
			handler := authclient.NewPasswordResetInitializeHandler(authclient.NewHTTPGateway(apiBase))
			if err := handler.Execute(cmd.Context(), msg); err != nil {
				return err
			}

			fmt.Println("If the account exists, a reset email is on its way.")
			return nil
		},
	}

	cmd.Flags().StringVar(&msg.Email, "email", "", "account email")
	cmd.Flags().StringVar(&msg.RecaptchaToken, "recaptcha-token", "", "captcha token")
	cmd.MarkFlagRequired("email")

	return cmd
}

func newResetPasswordCmd() *cobra.Command {
	msg := authclient.PasswordResetFinalizeMessage{}

	cmd := &cobra.Command{
		Use:   "reset-password",
		Short: "Complete a password reset",
		RunE: func(cmd *cobra.Command, args []string) error {
			handler := authclient.NewPasswordResetFinalizeHandler(authclient.NewHTTPGateway(apiBase))
			if err := handler.Execute(cmd.Context(), msg); err != nil {
				return err
			}

			fmt.Println("Password updated. You can now log in.")
			return nil
		},
	}

	cmd.Flags().StringVar(&msg.Token, "token", "", "reset token from the email link")
	cmd.Flags().StringVar(&msg.NewPassword, "password", "", "new password")
	cmd.Flags().StringVar(&msg.ConfirmPassword, "confirm-password", "", "new password confirmation")
	cmd.MarkFlagRequired("token")

	return cmd
}

func promptLine(prompt string) (string, error) {
	fmt.Print(prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryOperation, "could not read input")
	}
	return strings.TrimSpace(line), nil
}
