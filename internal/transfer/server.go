package transfer

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"

	"lanbeam/internal/models"
	"lanbeam/internal/notify"
)

const (
	Version     = "1.0.0"
	DeviceModel = "lanbeam-cli"

	// received files can be large; the default fiber body limit is 4MiB
	maxBodySize = 1 << 30
)

// Server receives pushed files and text messages from peers. Received
// items are published to the single-slot cells handed to NewServer; the
// consumer takes them from there.
type Server struct {
	alias     string
	saveToDir string
	port      int

	receivedFiles *notify.Cell[models.ReceivedFileInfo]
	receivedTexts *notify.Cell[string]

	mu  sync.Mutex
	app *fiber.App
	ln  net.Listener
}

func NewServer(alias, saveToDir string, files *notify.Cell[models.ReceivedFileInfo], texts *notify.Cell[string]) *Server {
	return &Server{
		alias:         alias,
		saveToDir:     saveToDir,
		port:          2706,
		receivedFiles: files,
		receivedTexts: texts,
	}
}

// Start binds the transfer listener and begins serving. Unlike the
// discovery engine's soft bind failure, a transfer bind failure is
// returned: a device that cannot receive is broken and the application
// must know. Calling Start on a running server is a logged no-op.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ln != nil {
		slog.Info("Transfer server already running", "addr", s.ln.Addr().String())
		return nil
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		BodyLimit:             maxBodySize,
	})
	app.Get(RootPath, s.rootHandler)
	app.Get(InfoPath, s.infoHandler)
	app.Post(ReceivePath, s.receiveFileHandler)
	app.Post(ReceiveTextPath, s.receiveTextHandler)

	ln, err := net.Listen("tcp", fmt.Sprintf("0.0.0.0:%d", s.port))
	if err != nil {
		return fmt.Errorf("bind transfer server: %w", err)
	}

	s.app = app
	s.ln = ln

	go func() {
		if err := app.Listener(ln); err != nil && !errors.Is(err, net.ErrClosed) {
			slog.Error("Transfer server stopped", "error", err)
		}
	}()

	slog.Info("Transfer server started", "addr", ln.Addr().String())
	return nil
}

// Stop force-closes the listener and tears the server down. It does not
// wait for in-flight requests to drain.
func (s *Server) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ln == nil {
		return
	}

	s.ln.Close()
	if err := s.app.ShutdownWithTimeout(time.Second); err != nil && !errors.Is(err, net.ErrClosed) {
		slog.Debug("Transfer server shutdown", "error", err)
	}

	s.app = nil
	s.ln = nil
	slog.Info("Transfer server stopped")
}

// Running reports whether the server currently holds its listener.
func (s *Server) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.ln != nil
}

// Addr returns the bound listen address, or "" when stopped.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ln == nil {
		return ""
	}
	return s.ln.Addr().String()
}

func (s *Server) rootHandler(c *fiber.Ctx) error {
	return c.SendString("Hello from lanbeam.")
}

func (s *Server) infoHandler(c *fiber.Ctx) error {
	return c.JSON(models.ServerInfo{
		Alias:       s.alias,
		Version:     Version,
		DeviceModel: DeviceModel,
		HTTPS:       false,
	})
}

// receiveFileHandler stores the first multipart part carrying a usable
// filename. Later parts are not consumed; one request delivers one file.
func (s *Server) receiveFileHandler(c *fiber.Ctx) error {
	_, params, err := mime.ParseMediaType(c.Get(fiber.HeaderContentType))
	boundary := params["boundary"]
	if err != nil || boundary == "" {
		return c.Status(fiber.StatusBadRequest).SendString("expected a multipart request")
	}

	// The stdlib reader is used instead of the parsed form because part
	// order matters here and a form map does not preserve it.
	mr := multipart.NewReader(bytes.NewReader(c.Body()), boundary)
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			slog.Warn("Malformed multipart body", "from", c.IP(), "error", err)
			return c.Status(fiber.StatusBadRequest).SendString("malformed multipart body")
		}

		// the raw filename parameter is wanted here, not the
		// base-name form Part.FileName returns
		_, cd, err := mime.ParseMediaType(part.Header.Get("Content-Disposition"))
		if err != nil {
			continue
		}
		raw, hasFilename := cd["filename"]
		if !hasFilename {
			// plain form field, not a file part
			continue
		}

		name := SanitizeFilename(raw)
		if name == "" {
			continue
		}

		path, err := s.writeFile(name, part)
		if err != nil {
			slog.Error("Fail to store received file", "file", name, "from", c.IP(), "error", err)
			return c.Status(fiber.StatusInternalServerError).SendString("failed to store file")
		}

		s.receivedFiles.Set(models.ReceivedFileInfo{Filename: name, Path: path})
		slog.Info("File received", "file", name, "from", c.IP())
		return c.SendString(fmt.Sprintf("File %q received successfully.", name))
	}

	return c.Status(fiber.StatusBadRequest).SendString("no file part in request")
}

// writeFile writes one part to the destination directory, removing the
// partial file when the write fails.
func (s *Server) writeFile(name string, r io.Reader) (string, error) {
	if err := os.MkdirAll(s.saveToDir, 0o755); err != nil {
		return "", err
	}

	dst := filepath.Join(s.saveToDir, name)
	fd, err := os.Create(dst)
	if err != nil {
		return "", err
	}

	_, err = io.Copy(fd, r)
	if cerr := fd.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(dst)
		return "", err
	}

	return dst, nil
}

func (s *Server) receiveTextHandler(c *fiber.Ctx) error {
	if ct := c.Get(fiber.HeaderContentType); !strings.HasPrefix(ct, fiber.MIMETextPlain) {
		// lenient: log and accept anyway
		slog.Debug("Unexpected content type for text", "contentType", ct, "from", c.IP())
	}

	body := c.Body()
	if len(body) == 0 {
		return c.Status(fiber.StatusBadRequest).SendString("empty text")
	}

	// fiber bodies are reused buffers; string conversion copies
	text := string(body)
	s.receivedTexts.Set(text)
	slog.Info("Text received", "bytes", len(text), "from", c.IP())

	return c.SendString("Text received successfully.")
}
