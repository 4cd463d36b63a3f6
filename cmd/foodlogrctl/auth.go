package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	var email string
	registerCmd := &cobra.Command{
		Use:   "register",
		Short: "Register and receive a new credential",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := client().R().
				SetBody(map[string]string{"email": email}).
				Post("/auth/register")
			if err != nil {
				return err
			}
			return printResponse(resp)
		},
	}
	registerCmd.Flags().StringVarP(&email, "email", "e", "", "Contact email (required)")
	_ = registerCmd.MarkFlagRequired("email")
	rootCmd.AddCommand(registerCmd)

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Check whether the credential resolves to an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireCredential(); err != nil {
				return err
			}
			resp, err := client().R().
				SetBody(map[string]string{"credential": credential()}).
				Post("/auth/validate")
			if err != nil {
				return err
			}
			return printResponse(resp)
		},
	}
	rootCmd.AddCommand(validateCmd)

	rotateCmd := &cobra.Command{
		Use:   "rotate",
		Short: "Replace the credential with a fresh one",
		Long:  "Replace the credential with a fresh one. All data moves to the new credential; the old one stops working immediately.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireCredential(); err != nil {
				return err
			}
			resp, err := client().R().Post("/auth/rotate")
			if err != nil {
				return err
			}
			if err := printResponse(resp); err != nil {
				return err
			}
			fmt.Println("Update FOODLOGR_API_KEY with the new credential.")
			return nil
		},
	}
	rootCmd.AddCommand(rotateCmd)
}
