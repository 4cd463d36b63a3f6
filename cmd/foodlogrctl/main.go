package main

import (
	"fmt"
	"os"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/spf13/cobra"
)

var (
	apiFlag string
	keyFlag string
	rootCmd = &cobra.Command{
		Use:   "foodlogrctl",
		Short: "CLI client for the FoodLogr REST API",
	}
)

// client returns a resty client against the configured service. The
// credential comes from --key or the FOODLOGR_API_KEY environment
// variable.
func client() *resty.Client {
	c := resty.New().
		SetBaseURL(apiFlag).
		SetHeader("Content-Type", "application/json").
		SetTimeout(30 * time.Second)
	if key := credential(); key != "" {
		c.SetAuthToken(key)
	}
	return c
}

func credential() string {
	if keyFlag != "" {
		return keyFlag
	}
	return os.Getenv("FOODLOGR_API_KEY")
}

func requireCredential() error {
	if credential() == "" {
		return fmt.Errorf("credential required: pass --key or set FOODLOGR_API_KEY")
	}
	return nil
}

// printResponse writes the body and surfaces non-2xx statuses as errors.
func printResponse(resp *resty.Response) error {
	if resp.IsError() {
		return fmt.Errorf("http %d: %s", resp.StatusCode(), resp.String())
	}
	_, _ = fmt.Fprintln(os.Stdout, resp.String())
	return nil
}

func main() {
	rootCmd.PersistentFlags().StringVarP(&apiFlag, "api", "a", "http://localhost:8080", "FoodLogr service base URL")
	rootCmd.PersistentFlags().StringVarP(&keyFlag, "key", "k", "", "API credential (defaults to FOODLOGR_API_KEY)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
