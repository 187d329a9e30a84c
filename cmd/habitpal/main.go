package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "habitpal",
	Short: "Track daily and weekly habits with reminders",
	Long: `habitpal keeps a list of habits in a flat file, counts completed days
and reminds you at a fixed time each day.

Run "habitpal serve" for the reminder scheduler and the local HTTP API, or
use the one-shot commands to edit the habit list directly.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
