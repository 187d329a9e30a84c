package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"habitpal/internal/service"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Show every habit with its progress",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		habits := a.svc.ListHabits()
		if len(habits) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No habits yet.")
			return nil
		}
		for i, h := range habits {
			fmt.Fprintf(cmd.OutOrStdout(), "%d. %s\n", i+1, h)
		}
		return nil
	},
}

var addCmd = &cobra.Command{
	Use:   "add <name> <total-days>",
	Short: "Add a habit",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		total, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("total days must be a number: %q", args[1])
		}
		frequency, _ := cmd.Flags().GetString("frequency")
		remindAt, _ := cmd.Flags().GetString("remind-at")

		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		h, err := a.svc.AddHabit(cmd.Context(), service.AddHabitInput{
			Name:         args[0],
			Frequency:    frequency,
			TotalDays:    total,
			ReminderTime: remindAt,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added %s\n", h)
		return nil
	},
}

var doneCmd = &cobra.Command{
	Use:   "done <number>",
	Short: "Count one more completed day for a habit",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		index, err := habitIndex(args[0])
		if err != nil {
			return err
		}

		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		h, err := a.svc.MarkComplete(cmd.Context(), index)
		if errors.Is(err, service.ErrIndexOutOfRange) {
			return fmt.Errorf("no habit number %s", args[0])
		}
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), h)
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <number>",
	Short: "Remove a habit",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		index, err := habitIndex(args[0])
		if err != nil {
			return err
		}

		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		return a.svc.DeleteHabit(cmd.Context(), index)
	},
}

var exportCmd = &cobra.Command{
	Use:   "export [path]",
	Short: "Write a CSV progress report",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		path := a.cfg.Store.ReportFile
		if len(args) == 1 {
			path = args[0]
		}
		if err := a.svc.ExportReport(cmd.Context(), path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", path)
		return nil
	},
}

// habitIndex turns the 1-based number shown by list into a list index.
func habitIndex(arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("habit number must be a positive integer: %q", arg)
	}
	return n - 1, nil
}

func init() {
	addCmd.Flags().StringP("frequency", "f", "Daily", "Daily or Weekly")
	addCmd.Flags().StringP("remind-at", "r", "", "daily reminder time as HH:mm")

	rootCmd.AddCommand(listCmd, addCmd, doneCmd, deleteCmd, exportCmd)
}
