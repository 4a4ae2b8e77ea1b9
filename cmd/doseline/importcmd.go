package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import <file.json>",
	Short: "Store reminder definitions from a JSON array",
	Long: `Store reminder definitions from a JSON array. Definitions keep their ids, so
importing the same file twice overwrites rather than duplicates.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	defs, err := readDefinitions(args[0])
	if err != nil {
		return err
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	n, err := a.svc.Import(cmd.Context(), userID, defs)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d reminders for user %d\n", n, userID)
	return nil
}
