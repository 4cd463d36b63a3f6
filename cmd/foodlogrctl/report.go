package main

import (
	"github.com/spf13/cobra"
)

func init() {
	var end string
	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Show the weekly rollup",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireCredential(); err != nil {
				return err
			}
			req := client().R()
			if end != "" {
				req.SetQueryParam("end", end)
			}
			resp, err := req.Get("/api/reports/weekly")
			if err != nil {
				return err
			}
			return printResponse(resp)
		},
	}
	reportCmd.Flags().StringVar(&end, "end", "", "Last day of the week (YYYY-MM-DD, default today)")
	rootCmd.AddCommand(reportCmd)

	cacheCmd := &cobra.Command{Use: "cache", Short: "Saved food operations"}

	var query string
	searchCmd := &cobra.Command{
		Use:   "search",
		Short: "Search saved foods by name",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireCredential(); err != nil {
				return err
			}
			resp, err := client().R().
				SetQueryParam("q", query).
				Get("/api/cache")
			if err != nil {
				return err
			}
			return printResponse(resp)
		},
	}
	searchCmd.Flags().StringVarP(&query, "query", "q", "", "Substring to match")
	cacheCmd.AddCommand(searchCmd)

	var name, description string
	var calories int
	var protein, carbs, fat float64
	var reuse bool
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Save a reusable food",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireCredential(); err != nil {
				return err
			}
			payload := map[string]interface{}{
				"name":     name,
				"calories": calories,
				"protein":  protein,
				"carbs":    carbs,
				"fat":      fat,
				"reuse":    reuse,
			}
			if description != "" {
				payload["description"] = description
			}
			resp, err := client().R().SetBody(payload).Put("/api/cache")
			if err != nil {
				return err
			}
			return printResponse(resp)
		},
	}
	addCmd.Flags().StringVarP(&name, "name", "n", "", "Food name (required)")
	addCmd.Flags().StringVar(&description, "description", "", "Optional details")
	addCmd.Flags().IntVar(&calories, "calories", 0, "Calories (estimated from macros when omitted)")
	addCmd.Flags().Float64Var(&protein, "protein", 0, "Protein in grams")
	addCmd.Flags().Float64Var(&carbs, "carbs", 0, "Carbs in grams")
	addCmd.Flags().Float64Var(&fat, "fat", 0, "Fat in grams")
	addCmd.Flags().BoolVar(&reuse, "reuse", false, "Only advance the use counter for an existing food")
	_ = addCmd.MarkFlagRequired("name")
	cacheCmd.AddCommand(addCmd)

	rootCmd.AddCommand(cacheCmd)
}
