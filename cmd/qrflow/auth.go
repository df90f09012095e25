package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/ltanh/qrflow/internal/auth"
	"github.com/ltanh/qrflow/internal/cli"
	"github.com/ltanh/qrflow/internal/common"
	"github.com/ltanh/qrflow/internal/config"
)

func authCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Account registration and password recovery",
	}

	cmd.AddCommand(authRegisterCmd())
	cmd.AddCommand(authResetCmd())

	return cmd
}

func authRegisterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a backend account",
		RunE:  runAuthRegister,
	}

	cmd.Flags().String("name", "", "Display name")
	cmd.Flags().String("email", "", "Account email")
	cmd.Flags().String("password", "", "Account password")
	cmd.Flags().String("password-confirm", "", "Password confirmation")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	_ = cmd.MarkFlagRequired("password-confirm")

	return cmd
}

func runAuthRegister(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	name, _ := cmd.Flags().GetString("name")
	email, _ := cmd.Flags().GetString("email")
	password, _ := cmd.Flags().GetString("password")
	passwordConfirm, _ := cmd.Flags().GetString("password-confirm")

	client, err := newAuthClient()
	if err != nil {
		return err
	}

	err = client.Register(ctx, auth.RegisterRequest{
		Name:            name,
		Email:           email,
		Password:        password,
		PasswordConfirm: passwordConfirm,
	})
	if err != nil {
		return renderAuthError(err)
	}

	fmt.Println(cli.FormatSuccess("account created, check your email to verify"))
	return nil
}

func authResetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset-password",
		Short: "Request a password reset email",
		RunE: func(cmd *cobra.Command, _ []string) error {
			email, _ := cmd.Flags().GetString("email")

			client, err := newAuthClient()
			if err != nil {
				return err
			}

			if err := client.RequestPasswordReset(cmd.Context(), email); err != nil {
				return renderAuthError(err)
			}

			fmt.Println(cli.FormatSuccess("reset email sent"))
			return nil
		},
	}

	cmd.Flags().String("email", "", "Account email")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func newAuthClient() (*auth.Client, error) {
	backendURL := config.BackendURL()
	if backendURL == "" {
		return nil, fmt.Errorf("backend.url is not configured")
	}
	connectivity := &healthzConnectivity{baseURL: backendURL}
	return auth.NewClient(backendURL, connectivity, config.Locale()), nil
}

// renderAuthError shows localized user messages on their own line; other
// errors propagate to the normal error path.
func renderAuthError(err error) error {
	var userErr *common.UserError
	if errors.As(err, &userErr) {
		fmt.Println(cli.FormatError(userErr.UserMessage))
	}
	var fieldErr *common.FieldError
	if errors.As(err, &fieldErr) {
		fmt.Println(cli.FormatError(fieldErr.Field + ": " + fieldErr.Message))
	}
	return err
}

// healthzConnectivity answers the offline precondition with a quick probe
// of the backend health endpoint.
type healthzConnectivity struct {
	baseURL string
}

func (c *healthzConnectivity) Online(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(probeCtx, http.MethodGet, c.baseURL+"/healthz", nil)
	if err != nil {
		return false
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false
	}
	_ = resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
