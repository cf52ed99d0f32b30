package scan

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"lanbeam/internal/discovery"
	"lanbeam/internal/registry"
	"lanbeam/internal/utils"
)

var timeout int64

var Cmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan the local network for devices",
	Long:  "Scan the local network for devices",
	Run: func(cmd *cobra.Command, args []string) {
		slog.Info("Start scanning")

		reg := registry.New()
		engine := discovery.NewEngine(utils.GenAlias(), reg)
		if err := engine.Start(); err != nil {
			slog.Error("Fail to start discovery", "error", err)
			return
		}
		if !engine.Running() {
			slog.Error("Discovery did not start, is another instance running?")
			return
		}

		time.Sleep(time.Second * time.Duration(timeout))

		devices := reg.Devices()
		engine.Stop()
		slog.Info("Stop scanning")

		if len(devices) == 0 {
			fmt.Fprintln(os.Stderr, "No device found")
			return
		}

		fmt.Fprintf(os.Stdout, "Found devices:\n")
		for _, dev := range devices {
			fmt.Fprintf(os.Stdout, "\tName: %s, Address: %s\n", dev.Alias, dev.Key())
		}
	},
}

func init() {
	Cmd.PersistentFlags().Int64VarP(&timeout, "timeout", "t", 10, "scan duration in seconds")
}
