package registry

import (
	"testing"

	"lanbeam/internal/models"
)

func TestAddDedup(t *testing.T) {
	reg := New()

	reg.Add(models.DeviceInfo{IP: "192.168.1.10", Port: 2706, Alias: "first"})
	reg.Add(models.DeviceInfo{IP: "192.168.1.10", Port: 2706, Alias: "second"})
	reg.Add(models.DeviceInfo{IP: "192.168.1.10", Port: 2706, Alias: "third"})

	devices := reg.Devices()
	if len(devices) != 1 {
		t.Fatalf("expected 1 device, got %d", len(devices))
	}
	// first write wins, no attribute merge
	if devices[0].Alias != "first" {
		t.Errorf("expected alias %q, got %q", "first", devices[0].Alias)
	}
}

func TestInsertionOrder(t *testing.T) {
	reg := New()

	reg.Add(models.DeviceInfo{IP: "10.0.0.1", Port: 2706, Alias: "a"})
	reg.Add(models.DeviceInfo{IP: "10.0.0.2", Port: 2706, Alias: "b"})
	reg.Add(models.DeviceInfo{IP: "10.0.0.3", Port: 2706, Alias: "c"})
	reg.Remove(models.DeviceInfo{IP: "10.0.0.2", Port: 2706})
	reg.Add(models.DeviceInfo{IP: "10.0.0.4", Port: 2706, Alias: "d"})

	devices := reg.Devices()
	want := []string{"a", "c", "d"}
	if len(devices) != len(want) {
		t.Fatalf("expected %d devices, got %d", len(want), len(devices))
	}
	for i, alias := range want {
		if devices[i].Alias != alias {
			t.Errorf("position %d: expected %q, got %q", i, alias, devices[i].Alias)
		}
	}
}

func TestRemoveMatchesByAddress(t *testing.T) {
	reg := New()

	reg.Add(models.DeviceInfo{IP: "10.0.0.1", Port: 2706, Alias: "a", DeviceID: "id-a"})

	// remove matches on (ip, port) only
	reg.Remove(models.DeviceInfo{IP: "10.0.0.1", Port: 2706, Alias: "other", DeviceID: "id-x"})
	if reg.Len() != 0 {
		t.Errorf("expected empty registry, got %d devices", reg.Len())
	}

	// removing a missing device is a no-op
	reg.Remove(models.DeviceInfo{IP: "10.0.0.9", Port: 2706})
}

func TestClear(t *testing.T) {
	reg := New()

	// clear on an empty registry is a no-op, not an error
	reg.Clear()

	reg.Add(models.DeviceInfo{IP: "10.0.0.1", Port: 2706, Alias: "a"})
	reg.Add(models.DeviceInfo{IP: "10.0.0.2", Port: 2706, Alias: "b"})
	reg.Clear()

	if reg.Len() != 0 {
		t.Fatalf("expected empty registry, got %d devices", reg.Len())
	}
	reg.Clear()
}

func TestSubscriberSeesFreshList(t *testing.T) {
	reg := New()

	var got [][]models.DeviceInfo
	reg.Subscribe(func(devices []models.DeviceInfo) {
		got = append(got, devices)
	})

	reg.Add(models.DeviceInfo{IP: "10.0.0.1", Port: 2706, Alias: "a"})
	reg.Add(models.DeviceInfo{IP: "10.0.0.1", Port: 2706, Alias: "dup"})
	reg.Add(models.DeviceInfo{IP: "10.0.0.2", Port: 2706, Alias: "b"})
	reg.Remove(models.DeviceInfo{IP: "10.0.0.1", Port: 2706})
	reg.Clear()

	// the duplicate add must not notify; clear on one remaining device must
	wantCounts := []int{1, 2, 1, 0}
	if len(got) != len(wantCounts) {
		t.Fatalf("expected %d notifications, got %d", len(wantCounts), len(got))
	}
	for i, n := range wantCounts {
		if len(got[i]) != n {
			t.Errorf("notification %d: expected %d devices, got %d", i, n, len(got[i]))
		}
	}
}
