package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/miku-nicol/klassyz-hair-client/internal/api"
	"github.com/miku-nicol/klassyz-hair-client/pkg/validator"
)

func loginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login [email] [password]",
		Short: "Sign in and store the session token",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			if err := a.manager.Login(a.ctx(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Println("Signed in.")
			return nil
		},
	}
}

func registerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		RunE: func(cmd *cobra.Command, args []string) error {
			input := api.RegisterInput{}
			input.Name, _ = cmd.Flags().GetString("name")
			input.Email, _ = cmd.Flags().GetString("email")
			input.PhoneNumber, _ = cmd.Flags().GetString("phone")
			input.Password, _ = cmd.Flags().GetString("password")
			if err := validator.Validate(input); err != nil {
				return err
			}

			a, err := newApp()
			if err != nil {
				return err
			}
			if err := a.manager.Register(a.ctx(), input); err != nil {
				return err
			}
			fmt.Println("Account created, signed in.")
			return nil
		},
	}

	cmd.Flags().String("name", "", "Full name")
	cmd.Flags().String("email", "", "Email address")
	cmd.Flags().String("phone", "", "Phone number")
	cmd.Flags().String("password", "", "Password (at least 6 characters)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Drop the stored session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			if err := a.manager.Logout(); err != nil {
				return err
			}
			fmt.Println("Signed out.")
			return nil
		},
	}
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show session and configuration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			fmt.Printf("Backend:   %s\n", a.cfg.APIBaseURL)
			fmt.Printf("State dir: %s\n", a.cfg.StateDir)

			if !a.session.LoggedIn() {
				fmt.Println("Session:   signed out")
				return nil
			}
			fmt.Println("Session:   signed in")

			claims, err := a.session.Claims()
			if err != nil {
				fmt.Printf("Token:     unreadable (%s)\n", err)
				return nil
			}
			if sub, ok := claims["sub"].(string); ok {
				fmt.Printf("Subject:   %s\n", sub)
			}
			if email, ok := claims["email"].(string); ok {
				fmt.Printf("Email:     %s\n", email)
			}
			if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
				fmt.Printf("Expires:   %s\n", exp.Format(time.RFC3339))
			}
			return nil
		},
	}
}
