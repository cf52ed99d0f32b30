package run

import (
	"log/slog"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"lanbeam/internal/discovery"
	"lanbeam/internal/models"
	"lanbeam/internal/notify"
	"lanbeam/internal/registry"
	"lanbeam/internal/transfer"
	"lanbeam/internal/utils"
)

var (
	alias     string
	savetodir string
)

var Cmd = &cobra.Command{
	Use:   "run",
	Short: "Discover peers and receive files/text until interrupted",
	Long:  "Discover peers and receive files/text until interrupted",
	Run: func(cmd *cobra.Command, args []string) {
		deviceID := uuid.NewString()
		slog.Info("Starting", "alias", alias, "deviceId", deviceID, "dir", savetodir)

		reg := registry.New()
		reg.Subscribe(func(devices []models.DeviceInfo) {
			slog.Info("Device list changed", "count", len(devices))
			for _, d := range devices {
				slog.Info("Visible device", "alias", d.Alias, "addr", d.Key())
			}
		})

		receivedFiles := notify.NewCell[models.ReceivedFileInfo]()
		receivedFiles.OnSet(func(f models.ReceivedFileInfo) {
			slog.Info("File received", "file", f.Filename, "path", f.Path)
		})
		receivedTexts := notify.NewCell[string]()
		receivedTexts.OnSet(func(text string) {
			slog.Info("Text received", "text", text)
		})

		server := transfer.NewServer(alias, savetodir, receivedFiles, receivedTexts)
		if err := server.Start(); err != nil {
			slog.Error("Fail to start transfer server", "error", err)
			return
		}

		engine := discovery.NewEngine(alias, reg)
		engine.Start()

		<-utils.WaitForSignal()

		engine.Stop()
		server.Stop()
	},
}

func init() {
	Cmd.PersistentFlags().StringVarP(&alias, "alias", "n", utils.GenAlias(), "Device name to announce")
	Cmd.PersistentFlags().StringVarP(&savetodir, "dir", "d", utils.DefaultDownloadDir(), "Directory for received files")
}
