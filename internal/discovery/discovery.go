// Package discovery implements the UDP multicast presence protocol.
//
// Every device periodically announces itself to the group and listens for
// peer announcements. Presence is soft state: a peer that stops announcing
// is expired from the registry after a fixed window.
package discovery

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"sync"
	"time"

	"golang.org/x/net/ipv4"

	"lanbeam/internal/models"
	"lanbeam/internal/registry"
	"lanbeam/internal/utils"
)

const (
	// Port is shared by discovery (UDP) and transfer (TCP).
	Port = 2706

	// MulticastGroup is the discovery group address.
	MulticastGroup = "224.0.0.1"

	announceInterval = 5 * time.Second
	peerExpiry       = 15 * time.Second
)

type state int

const (
	stateIdle state = iota
	stateStarting
	stateRunning
	stateStopping
)

// Engine owns the discovery socket and the per-peer expiry timers.
// Start and Stop are safe to call from any goroutine; Start is a no-op
// while the engine is already running and Stop is idempotent.
type Engine struct {
	alias string
	reg   *registry.Registry

	port          int
	group         net.IP
	announceEvery time.Duration
	expiry        time.Duration

	mu       sync.Mutex
	st       state
	conn     *net.UDPConn
	localIPs map[string]struct{}
	timers   map[string]*time.Timer
	stop     chan struct{}
	wg       sync.WaitGroup
}

func NewEngine(alias string, reg *registry.Registry) *Engine {
	return &Engine{
		alias:         alias,
		reg:           reg,
		port:          Port,
		group:         net.ParseIP(MulticastGroup),
		announceEvery: announceInterval,
		expiry:        peerExpiry,
	}
}

// Start binds the discovery socket, joins the multicast group, sends one
// immediate announcement and begins the announce/receive loops.
//
// A bind failure is soft: it is logged, the engine reverts to idle and no
// error is returned. A previous instance still holding the port should not
// take the whole application down.
func (e *Engine) Start() error {
	e.mu.Lock()
	if e.st != stateIdle {
		e.mu.Unlock()
		slog.Info("Discovery already running")
		return nil
	}
	e.st = stateStarting
	e.mu.Unlock()

	// Local addresses are only used to filter echoes of our own
	// announcements; failing to resolve them degrades self-filtering
	// but must not abort startup.
	localIPs, err := utils.GetMyIPv4Addr()
	if err != nil {
		slog.Warn("Fail to resolve local addresses", "error", err)
	}

	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4zero, Port: e.port})
	if err != nil {
		slog.Warn("Fail to bind discovery socket", "port", e.port, "error", err)
		e.mu.Lock()
		e.st = stateIdle
		e.mu.Unlock()
		return nil
	}
	conn.SetReadBuffer(512)

	e.joinGroup(conn)

	e.mu.Lock()
	e.conn = conn
	e.localIPs = make(map[string]struct{}, len(localIPs))
	for _, ip := range localIPs {
		e.localIPs[ip.To4().String()] = struct{}{}
	}
	e.timers = make(map[string]*time.Timer)
	e.stop = make(chan struct{})
	e.st = stateRunning
	e.mu.Unlock()

	e.announce()

	e.wg.Add(2)
	go e.announceLoop()
	go e.receiveLoop(conn)

	slog.Info("Discovery started", "port", e.port, "group", e.group.String(), "alias", e.alias)
	return nil
}

// joinGroup joins the discovery group on every multicast-capable running
// interface, falling back to the system default when none qualify.
func (e *Engine) joinGroup(conn *net.UDPConn) {
	pc := ipv4.NewPacketConn(conn)
	group := &net.UDPAddr{IP: e.group}

	joined := 0
	for _, intf := range utils.MulticastInterfaces() {
		intf := intf
		if err := pc.JoinGroup(&intf, group); err != nil {
			slog.Debug("Fail to join multicast group", "interface", intf.Name, "error", err)
			continue
		}
		joined++
	}
	if joined == 0 {
		if err := pc.JoinGroup(nil, group); err != nil {
			slog.Warn("Fail to join multicast group on any interface", "error", err)
		}
	}
	pc.SetMulticastTTL(4)
}

// Stop cancels the announce timer, closes the socket, cancels all pending
// expiry timers and clears the registry. Idempotent; safe to call before
// Start.
func (e *Engine) Stop() {
	e.mu.Lock()
	if e.st != stateRunning {
		e.mu.Unlock()
		return
	}
	e.st = stateStopping
	conn := e.conn

	close(e.stop)
	for key, t := range e.timers {
		t.Stop()
		delete(e.timers, key)
	}
	e.timers = nil
	e.mu.Unlock()

	// Closing the connection unblocks the pending read in receiveLoop.
	if conn != nil {
		conn.Close()
	}
	e.wg.Wait()

	e.reg.Clear()

	e.mu.Lock()
	e.conn = nil
	e.st = stateIdle
	e.mu.Unlock()

	slog.Info("Discovery stopped")
}

// Running reports whether the engine is currently discovering.
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.st == stateRunning
}

func (e *Engine) announceLoop() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.announceEvery)
	defer ticker.Stop()

	for {
		select {
		case <-e.stop:
			return
		case <-ticker.C:
			e.announce()
		}
	}
}

// announce sends one presence packet to the group. Send failures are
// logged and not retried; the next tick announces again.
func (e *Engine) announce() {
	anno := models.Announcement{
		Alias: e.alias,
		Port:  e.port,
		Type:  models.PacketDiscoveryRequest,
	}

	b, err := json.Marshal(anno)
	if err != nil {
		slog.Warn("Fail to encode announcement", "error", err)
		return
	}

	e.mu.Lock()
	conn := e.conn
	e.mu.Unlock()
	if conn == nil {
		return
	}

	_, err = conn.WriteToUDP(b, &net.UDPAddr{IP: e.group, Port: e.port})
	if err != nil {
		slog.Warn("Fail to send announcement", "error", err)
	}
}

func (e *Engine) receiveLoop(conn *net.UDPConn) {
	defer e.wg.Done()

	buf := make([]byte, 512)
	for {
		n, src, err := conn.ReadFromUDP(buf)
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			select {
			case <-e.stop:
				return
			default:
			}
			slog.Debug("Discovery read error", "error", err)
			continue
		}

		e.handlePacket(src, buf[:n])
	}
}

// handlePacket parses one datagram and, if it is a valid peer sighting,
// upserts the device and (re)arms its expiry timer. Malformed packets are
// discarded; peer churn and garbage on the group are steady state, not
// errors.
func (e *Engine) handlePacket(src *net.UDPAddr, raw []byte) {
	var anno models.Announcement
	if err := json.Unmarshal(raw, &anno); err != nil {
		slog.Debug("Discard malformed announcement", "from", src.IP.String(), "error", err)
		return
	}
	if err := anno.Validate(); err != nil {
		slog.Debug("Discard announcement", "from", src.IP.String(), "error", err)
		return
	}

	srcIP := src.IP.To4()
	if srcIP == nil {
		return
	}

	dev := models.DeviceInfo{
		IP:    srcIP.String(),
		Port:  anno.Port,
		Alias: anno.Alias,
	}

	e.mu.Lock()
	if e.st != stateRunning {
		e.mu.Unlock()
		return
	}

	// A packet is self-sent when its source address is one of ours AND it
	// announces our own port. A different device sharing the port on
	// another host is still accepted.
	if _, mine := e.localIPs[dev.IP]; mine && anno.Port == e.port {
		e.mu.Unlock()
		return
	}

	key := dev.Key()
	if old, ok := e.timers[key]; ok {
		old.Stop()
	}
	var timer *time.Timer
	timer = time.AfterFunc(e.expiry, func() {
		e.expire(key, dev, timer)
	})
	e.timers[key] = timer
	e.mu.Unlock()

	e.reg.Add(dev)
}

// expire removes a peer whose announcement window lapsed. The handle
// comparison guards against the race where a re-sighting replaced the
// timer while this callback was already on its way: only the currently
// installed timer may remove the device.
func (e *Engine) expire(key string, dev models.DeviceInfo, self *time.Timer) {
	e.mu.Lock()
	cur, ok := e.timers[key]
	if !ok || cur != self || e.st != stateRunning {
		e.mu.Unlock()
		return
	}
	delete(e.timers, key)
	e.mu.Unlock()

	e.reg.Remove(dev)
	slog.Debug("Peer expired", "device", key)
}
