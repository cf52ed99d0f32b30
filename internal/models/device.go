package models

import (
	"errors"
	"net"
	"strconv"
)

// Discovery packet types. Receivers treat both values as a sighting;
// the distinction is carried on the wire but not branched on.
const (
	PacketDiscoveryRequest  = "discovery_request"
	PacketDiscoveryResponse = "discovery_response"
)

type DeviceInfo struct {
	IP       string `json:"ip"`
	Port     int    `json:"port"`
	Alias    string `json:"alias"`
	DeviceID string `json:"deviceId,omitempty"`
}

// Key returns the registry dedup key. Two sightings with the same
// (ip, port) are the same device regardless of alias.
func (d DeviceInfo) Key() string {
	return net.JoinHostPort(d.IP, strconv.Itoa(d.Port))
}

func (d DeviceInfo) Equal(other DeviceInfo) bool {
	return d.IP == other.IP &&
		d.Port == other.Port &&
		d.Alias == other.Alias &&
		d.DeviceID == other.DeviceID
}

// Announcement is the discovery wire packet. The sender's IP is taken
// from the datagram source address, never from the payload.
type Announcement struct {
	Alias string `json:"alias"`
	Port  int    `json:"port"`
	Type  string `json:"type"`
}

var (
	ErrMissingAlias  = errors.New("announcement has no alias")
	ErrInvalidPort   = errors.New("announcement port out of range")
	ErrUnknownPacket = errors.New("unknown announcement type")
)

// Validate rejects packets with missing or mismatched fields. Anything
// that fails here is discarded by the discovery engine.
func (a Announcement) Validate() error {
	if a.Alias == "" {
		return ErrMissingAlias
	}
	if a.Port <= 0 || a.Port > 65535 {
		return ErrInvalidPort
	}
	if a.Type != PacketDiscoveryRequest && a.Type != PacketDiscoveryResponse {
		return ErrUnknownPacket
	}
	return nil
}
