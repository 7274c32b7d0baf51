// Package devices provides the discovery registry: the static list of
// appliance and session-capable devices the companion app can see.
package devices

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hammamikhairi/hearth/internal/domain"
)

// Device is one discoverable kitchen device.
type Device struct {
	ID        string `yaml:"id" json:"id"`
	Name      string `yaml:"name" json:"name"`
	Type      string `yaml:"type" json:"type"`
	Connected bool   `yaml:"connected" json:"connected"`
}

// registryFile is the on-disk YAML shape.
type registryFile struct {
	Devices []Device `yaml:"devices"`
}

// Registry holds the device list. Immutable after construction.
type Registry struct {
	devices []Device
}

// Default returns the built-in demo kitchen.
func Default() *Registry {
	return &Registry{devices: []Device{
		{ID: "cooker-1", Name: "Smart Autocooker", Type: "autocooker", Connected: true},
		{ID: "oven-1", Name: "Smart Oven", Type: "oven", Connected: true},
		{ID: "speaker-1", Name: "Kitchen Speaker", Type: "speaker", Connected: true},
	}}
}

// Load reads a device registry from a YAML file. Every device needs an id,
// name, and type.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading device registry: %w", err)
	}

	var file registryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing device registry: %w", err)
	}
	if len(file.Devices) == 0 {
		return nil, domain.Invalidf("devices", "registry %s lists no devices", path)
	}
	for i, d := range file.Devices {
		if d.ID == "" || d.Name == "" || d.Type == "" {
			return nil, domain.Invalidf("devices", "entry %d is missing id, name, or type", i)
		}
	}

	return &Registry{devices: file.Devices}, nil
}

// List returns a copy of the device list.
func (r *Registry) List() []Device {
	out := make([]Device, len(r.devices))
	copy(out, r.devices)
	return out
}
