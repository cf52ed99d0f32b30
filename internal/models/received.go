package models

// ReceivedFileInfo describes a file the transfer server has just written
// to disk. It is published to a single-slot cell; a second arrival before
// the consumer acknowledges the first overwrites it.
type ReceivedFileInfo struct {
	Filename string
	Path     string
}

// ServerInfo is the response body of GET /info.
type ServerInfo struct {
	Alias       string `json:"alias"`
	Version     string `json:"version"`
	DeviceModel string `json:"deviceModel"`
	HTTPS       bool   `json:"https"`
}
