package definition

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/machine/pkg/domain"
	"github.com/aretw0/machine/pkg/registry"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Manifest is the declarative form of a Definition.
type Manifest struct {
	Identity           string                     `json:"identity" yaml:"identity" mapstructure:"identity"`
	FriendlyName       string                     `json:"friendlyName" yaml:"friendlyName" mapstructure:"friendlyName"`
	Description        string                     `json:"description" yaml:"description" mapstructure:"description"`
	Exits              map[string]domain.ExitSpec `json:"exits" yaml:"exits" mapstructure:"exits"`
	Fn                 any                        `json:"fn" yaml:"fn" mapstructure:"fn"`
	Sync               bool                       `json:"sync" yaml:"sync" mapstructure:"sync"`
	Timeout            int                        `json:"timeout" yaml:"timeout" mapstructure:"timeout"` // milliseconds
	ImplementationType string                     `json:"implementationType" yaml:"implementationType" mapstructure:"implementationType"`
}

// FromMap decodes a raw definition map and normalizes it.
// fn may be a domain.Fn, a plain function with the same signature, or the
// name of an implementation registered in reg. reg may be nil when fn is
// absent or already a function.
func FromMap(raw map[string]any, reg *registry.Registry) (domain.Definition, error) {
	var m Manifest
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &m,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return domain.Definition{}, err
	}
	if err := dec.Decode(raw); err != nil {
		return domain.Definition{}, fmt.Errorf("failed to decode definition: %w", err)
	}
	return m.Definition(reg)
}

// Definition binds the manifest's fn and normalizes the result.
func (m Manifest) Definition(reg *registry.Registry) (domain.Definition, error) {
	if m.Timeout < 0 {
		return domain.Definition{}, fmt.Errorf("invalid timeout %d: must not be negative", m.Timeout)
	}

	fn, err := bindFn(m.Fn, reg)
	if err != nil {
		return domain.Definition{}, err
	}

	return Normalize(domain.Definition{
		Identity:           m.Identity,
		FriendlyName:       m.FriendlyName,
		Description:        m.Description,
		Exits:              m.Exits,
		Fn:                 fn,
		Sync:               m.Sync,
		Timeout:            time.Duration(m.Timeout) * time.Millisecond,
		ImplementationType: domain.ImplementationType(m.ImplementationType),
	})
}

func bindFn(v any, reg *registry.Registry) (domain.Fn, error) {
	switch fn := v.(type) {
	case nil:
		return nil, nil
	case domain.Fn:
		return fn, nil
	case func(context.Context, domain.Argins, domain.Exits, domain.Metadata) error:
		return fn, nil
	case string:
		if reg == nil {
			return nil, fmt.Errorf("fn %q given by name but no registry was provided", fn)
		}
		return reg.Lookup(fn)
	default:
		return nil, fmt.Errorf("invalid fn of type %T", v)
	}
}

// ParseYAML decodes a YAML manifest.
func ParseYAML(data []byte, reg *registry.Registry) (domain.Definition, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return domain.Definition{}, fmt.Errorf("failed to parse definition yaml: %w", err)
	}
	return FromMap(raw, reg)
}

// ParseJSON decodes a JSON manifest.
func ParseJSON(data []byte, reg *registry.Registry) (domain.Definition, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return domain.Definition{}, fmt.Errorf("failed to parse definition json: %w", err)
	}
	return FromMap(raw, reg)
}

// LoadFile reads a manifest from disk. Files ending in .json are parsed as
// JSON, everything else as YAML.
func LoadFile(path string, reg *registry.Registry) (domain.Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Definition{}, fmt.Errorf("failed to read definition: %w", err)
	}

	if strings.ToLower(filepath.Ext(path)) == ".json" {
		return ParseJSON(data, reg)
	}
	return ParseYAML(data, reg)
}
