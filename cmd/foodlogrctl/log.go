package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func today() string { return time.Now().Format("2006-01-02") }

func init() {
	settingsCmd := &cobra.Command{Use: "settings", Short: "Goal operations"}

	var calories, resting int
	var protein, carbs, fat float64
	setCmd := &cobra.Command{
		Use:   "set",
		Short: "Set daily goals (replaces previous goals)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireCredential(); err != nil {
				return err
			}
			payload := map[string]interface{}{
				"calorieGoal":   calories,
				"proteinGoal":   protein,
				"carbGoal":      carbs,
				"restingEnergy": resting,
			}
			if cmd.Flags().Changed("fat") {
				payload["fatGoal"] = fat
			}
			resp, err := client().R().SetBody(payload).Put("/api/settings")
			if err != nil {
				return err
			}
			return printResponse(resp)
		},
	}
	setCmd.Flags().IntVar(&calories, "calories", 2000, "Daily calorie goal")
	setCmd.Flags().Float64Var(&protein, "protein", 0, "Daily protein goal in grams")
	setCmd.Flags().Float64Var(&carbs, "carbs", 0, "Daily carb goal in grams")
	setCmd.Flags().Float64Var(&fat, "fat", 0, "Optional daily fat goal in grams")
	setCmd.Flags().IntVar(&resting, "resting", 1800, "Resting energy in kcal/day")
	settingsCmd.AddCommand(setCmd)

	getCmd := &cobra.Command{
		Use:   "get",
		Short: "Show current goals",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireCredential(); err != nil {
				return err
			}
			resp, err := client().R().Get("/api/settings")
			if err != nil {
				return err
			}
			return printResponse(resp)
		},
	}
	settingsCmd.AddCommand(getCmd)
	rootCmd.AddCommand(settingsCmd)

	var date, name, description string
	var entryCalories int
	var entryProtein, entryCarbs, entryFat float64
	logCmd := &cobra.Command{
		Use:   "log",
		Short: "Log a food item",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireCredential(); err != nil {
				return err
			}
			payload := map[string]interface{}{
				"name":     name,
				"calories": entryCalories,
				"protein":  entryProtein,
				"carbs":    entryCarbs,
				"fat":      entryFat,
			}
			if description != "" {
				payload["description"] = description
			}
			resp, err := client().R().
				SetBody(payload).
				Post(fmt.Sprintf("/api/logs/%s/entries", date))
			if err != nil {
				return err
			}
			return printResponse(resp)
		},
	}
	logCmd.Flags().StringVarP(&date, "date", "d", today(), "Date (YYYY-MM-DD)")
	logCmd.Flags().StringVarP(&name, "name", "n", "", "Food name (required)")
	logCmd.Flags().StringVar(&description, "description", "", "Optional details")
	logCmd.Flags().IntVar(&entryCalories, "calories", 0, "Calories (estimated from macros when omitted)")
	logCmd.Flags().Float64Var(&entryProtein, "protein", 0, "Protein in grams")
	logCmd.Flags().Float64Var(&entryCarbs, "carbs", 0, "Carbs in grams")
	logCmd.Flags().Float64Var(&entryFat, "fat", 0, "Fat in grams")
	_ = logCmd.MarkFlagRequired("name")
	rootCmd.AddCommand(logCmd)

	var dayDate string
	dayCmd := &cobra.Command{
		Use:   "day",
		Short: "Show one day's log",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireCredential(); err != nil {
				return err
			}
			resp, err := client().R().Get(fmt.Sprintf("/api/logs/%s", dayDate))
			if err != nil {
				return err
			}
			return printResponse(resp)
		},
	}
	dayCmd.Flags().StringVarP(&dayDate, "date", "d", today(), "Date (YYYY-MM-DD)")
	rootCmd.AddCommand(dayCmd)

	var sumDate string
	summaryCmd := &cobra.Command{
		Use:   "summary",
		Short: "Show one day's totals against goals",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireCredential(); err != nil {
				return err
			}
			resp, err := client().R().Get(fmt.Sprintf("/api/logs/%s/summary", sumDate))
			if err != nil {
				return err
			}
			return printResponse(resp)
		},
	}
	summaryCmd.Flags().StringVarP(&sumDate, "date", "d", today(), "Date (YYYY-MM-DD)")
	rootCmd.AddCommand(summaryCmd)

	var deleteDate, entryID string
	deleteCmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a logged entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireCredential(); err != nil {
				return err
			}
			resp, err := client().R().
				Delete(fmt.Sprintf("/api/logs/%s/entries/%s", deleteDate, entryID))
			if err != nil {
				return err
			}
			if resp.IsError() {
				return fmt.Errorf("http %d: %s", resp.StatusCode(), resp.String())
			}
			fmt.Println("deleted")
			return nil
		},
	}
	deleteCmd.Flags().StringVarP(&deleteDate, "date", "d", today(), "Date (YYYY-MM-DD)")
	deleteCmd.Flags().StringVarP(&entryID, "entry", "e", "", "Entry ID (required)")
	_ = deleteCmd.MarkFlagRequired("entry")
	rootCmd.AddCommand(deleteCmd)
}
