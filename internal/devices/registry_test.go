package devices

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hammamikhairi/hearth/internal/domain"
)

func TestDefaultRegistry(t *testing.T) {
	devices := Default().List()
	if len(devices) != 3 {
		t.Fatalf("expected 3 built-in devices, got %d", len(devices))
	}

	types := map[string]bool{}
	for _, d := range devices {
		if d.ID == "" || d.Name == "" {
			t.Fatalf("incomplete device: %+v", d)
		}
		types[d.Type] = true
	}
	for _, want := range []string{"autocooker", "oven", "speaker"} {
		if !types[want] {
			t.Fatalf("missing built-in device type %q", want)
		}
	}
}

func TestLoadOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "devices.yaml")
	content := `devices:
  - id: oven-lab
    name: Lab Oven
    type: oven
    connected: true
  - id: cooker-lab
    name: Lab Cooker
    type: autocooker
    connected: false
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	reg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	devices := reg.List()
	if len(devices) != 2 {
		t.Fatalf("expected 2 devices, got %d", len(devices))
	}
	if devices[0].ID != "oven-lab" || !devices[0].Connected {
		t.Fatalf("unexpected first device: %+v", devices[0])
	}
	if devices[1].Connected {
		t.Fatalf("expected cooker-lab disconnected: %+v", devices[1])
	}
}

func TestLoadRejectsIncompleteEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "devices.yaml")
	content := "devices:\n  - id: x1\n    type: oven\n" // no name
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	if _, err := Load(path); !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestListReturnsCopy(t *testing.T) {
	reg := Default()
	list := reg.List()
	list[0].Name = "tampered"

	if reg.List()[0].Name == "tampered" {
		t.Fatal("List must return a copy")
	}
}
