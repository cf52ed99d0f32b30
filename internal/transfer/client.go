package transfer

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"

	"lanbeam/internal/models"
)

const (
	RootPath        = "/"
	InfoPath        = "/info"
	ReceivePath     = "/receive"
	ReceiveTextPath = "/receive-text"

	textTimeout = 10 * time.Second
	textRetries = 2

	// wait = backoffBase * 2^attempt before each retry
	backoffBase = 500 * time.Millisecond
)

// SendFile pushes a single file to the target's /receive endpoint as a
// multipart POST. Exactly one of filePath/fileBytes is used; when both
// are supplied the bytes win and the path is ignored.
//
// File sends are not retried: re-uploading a large payload automatically
// is the caller's call, not ours.
func SendFile(target models.DeviceInfo, fileName string, filePath string, fileBytes []byte) error {
	if len(fileBytes) == 0 && filePath == "" {
		return ErrNoPayload
	}
	if len(fileBytes) > 0 && filePath != "" {
		slog.Warn("Both file path and bytes supplied, ignoring path", "file", fileName, "path", filePath)
		filePath = ""
	}

	if filePath != "" {
		b, err := os.ReadFile(filePath)
		if err != nil {
			return fmt.Errorf("read %s: %w", filePath, err)
		}
		fileBytes = b
	}

	agent := fiber.AcquireAgent()
	defer fiber.ReleaseAgent(agent)

	req := agent.Request()
	req.Header.SetMethod(fiber.MethodPost)
	prepareURI(req, target, ReceivePath)

	args := fiber.AcquireArgs()
	defer fiber.ReleaseArgs(args)
	args.Set("fileName", fileName)
	args.Set("fileSize", strconv.Itoa(len(fileBytes)))

	agent.FileData(&fiber.FormFile{
		Fieldname: "file",
		Name:      fileName,
		Content:   fileBytes,
	}).MultipartForm(args)

	if err := agent.Parse(); err != nil {
		return err
	}

	status, _, errs := agent.Bytes()
	if len(errs) != 0 {
		return fmt.Errorf("send file %q to %s: %w", fileName, target.Key(), errs[0])
	}
	if err := ParseStatus(status); err != nil {
		return fmt.Errorf("send file %q to %s: status %d: %w", fileName, target.Key(), status, err)
	}

	return nil
}

// SendText posts text to the target's /receive-text endpoint. Transient
// failures (non-200 status, timeout, connection errors) are retried up
// to twice with exponential backoff; each attempt has its own timeout.
func SendText(target models.DeviceInfo, text string) error {
	if text == "" {
		return ErrEmptyText
	}

	attempts := 0
	op := func() error {
		attempts++
		err := postText(target, text)
		if err != nil {
			slog.Warn("Text send attempt failed", "target", target.Key(), "attempt", attempts, "error", err)
		}
		return err
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = backoffBase * 2
	policy.Multiplier = 2
	policy.RandomizationFactor = 0
	policy.MaxInterval = time.Minute
	policy.MaxElapsedTime = 0

	err := backoff.Retry(op, backoff.WithMaxRetries(policy, textRetries))
	if err != nil {
		return fmt.Errorf("send text to %s failed after %d attempts: %w", target.Key(), attempts, err)
	}

	return nil
}

func postText(target models.DeviceInfo, text string) error {
	agent := fiber.AcquireAgent()
	defer fiber.ReleaseAgent(agent)

	req := agent.Request()
	req.Header.SetMethod(fiber.MethodPost)
	req.Header.SetContentType("text/plain; charset=utf-8")
	prepareURI(req, target, ReceiveTextPath)
	agent.Timeout(textTimeout)
	agent.BodyString(text)

	if err := agent.Parse(); err != nil {
		return err
	}

	status, _, errs := agent.Bytes()
	if len(errs) != 0 {
		return errs[0]
	}
	return ParseStatus(status)
}

// GetDeviceInfo queries a peer's /info endpoint.
func GetDeviceInfo(ip string, port int) (models.ServerInfo, error) {
	agent := fiber.AcquireAgent()
	defer fiber.ReleaseAgent(agent)

	req := agent.Request()
	req.Header.SetMethod(fiber.MethodGet)
	prepareURI(req, models.DeviceInfo{IP: ip, Port: port}, InfoPath)

	if err := agent.Parse(); err != nil {
		return models.ServerInfo{}, err
	}

	status, b, errs := agent.Bytes()
	if len(errs) != 0 {
		return models.ServerInfo{}, errs[0]
	}
	if err := ParseStatus(status); err != nil {
		return models.ServerInfo{}, err
	}

	var info models.ServerInfo
	if err := json.Unmarshal(b, &info); err != nil {
		return models.ServerInfo{}, err
	}
	return info, nil
}

func prepareURI(req *fasthttp.Request, target models.DeviceInfo, path string) {
	req.Header.SetUserAgent("lanbeam")
	req.URI().SetScheme("http")
	req.URI().SetHost(net.JoinHostPort(target.IP, strconv.Itoa(target.Port)))
	req.URI().SetPath(path)
}
