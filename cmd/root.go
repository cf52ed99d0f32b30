package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"lanbeam/cmd/run"
	"lanbeam/cmd/scan"
	"lanbeam/cmd/send"
)

var rootCmd = &cobra.Command{
	Use:   "lanbeam",
	Short: "LAN device discovery and push transfer",
	Long:  "LAN device discovery and push transfer",
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		slog.Error("Fail to execute", "error", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(run.Cmd)
	rootCmd.AddCommand(scan.Cmd)
	rootCmd.AddCommand(send.Cmd)
}
