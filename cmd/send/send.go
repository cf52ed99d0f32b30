package send

import (
	"errors"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"lanbeam/internal/models"
	"lanbeam/internal/transfer"
)

var (
	ip    string
	port  int
	text  string
	files []string
)

var Cmd = &cobra.Command{
	Use:   "send [files]...",
	Short: "Send files or a text message to a device",
	Long:  "Send files or a text message to a device",
	RunE: func(cmd *cobra.Command, args []string) error {
		if ip == "" {
			return errors.New("IP address is required")
		}
		files = append(files, args...)
		if len(files) == 0 && text == "" {
			return errors.New("nothing to send: give files or --text")
		}

		target := models.DeviceInfo{IP: ip, Port: port}

		// resolve the peer's alias first; also a cheap reachability probe
		info, err := transfer.GetDeviceInfo(ip, port)
		if err != nil {
			slog.Error("Fail to get device info", "addr", target.Key(), "error", err)
			return nil
		}
		target.Alias = info.Alias
		slog.Info("Sending to", "alias", target.Alias, "addr", target.Key())

		if text != "" {
			err := transfer.SendText(target, text)
			if err != nil {
				slog.Error("Fail to send text", "error", err)
			} else {
				slog.Info("Text sent")
			}
		}

		// send every file, skipping the ones that fail
		for _, file := range files {
			err := transfer.SendFile(target, filepath.Base(file), file, nil)
			if err != nil {
				slog.Error("Fail to send file, skipping...", "file", file, "error", err)
				continue
			}
			slog.Info("File sent", "file", file)
		}

		return nil
	},
}

func init() {
	Cmd.PersistentFlags().StringVar(&ip, "ip", "", "IP address of the remote device")
	Cmd.PersistentFlags().IntVarP(&port, "port", "p", 2706, "Transfer port of the remote device")
	Cmd.PersistentFlags().StringVarP(&text, "text", "m", "", "Text message to send")
	Cmd.PersistentFlags().StringSliceVarP(&files, "file", "f", []string{}, "File to be sent")
}
