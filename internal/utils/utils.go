package utils

import (
	"math/rand"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
)

func WaitForSignal() chan os.Signal {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP, syscall.SIGINT)

	return ch
}

// GetMyIPv4Addr returns the ipv4 address of every RUNNING interface on
// the host. Loopback and ipv6 addresses are ignored.
func GetMyIPv4Addr() ([]net.IP, error) {
	intfs, err := net.Interfaces()
	if err != nil {
		return nil, err
	}

	res := make([]net.IP, 0)

	for _, intf := range intfs {
		addrs, _ := intf.Addrs()
		for idx := range addrs {
			ip, _, _ := net.ParseCIDR(addrs[idx].String())
			if ip.To4() != nil && !ip.IsLoopback() && (intf.Flags&net.FlagRunning != 0) {
				res = append(res, ip)
			}
		}
	}
	return res, nil
}

// MulticastInterfaces returns every RUNNING multicast-capable non-loopback
// interface, for joining the discovery group on all of them.
func MulticastInterfaces() []net.Interface {
	intfs, err := net.Interfaces()
	if err != nil {
		return nil
	}

	res := make([]net.Interface, 0, len(intfs))
	for _, intf := range intfs {
		if intf.Flags&net.FlagRunning == 0 || intf.Flags&net.FlagLoopback != 0 {
			continue
		}
		if intf.Flags&net.FlagMulticast == 0 {
			continue
		}
		res = append(res, intf)
	}
	return res
}

// DefaultDownloadDir returns the platform download folder, falling back
// to the working directory when the home directory cannot be resolved.
func DefaultDownloadDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, "Downloads")
}

func RandChoice[T any](l []T) T {
	return l[rand.Intn(len(l))]
}
