// Package builtins provides demo implementations that manifests can refer
// to by name, so the CLI can run machines without compiling Go code.
package builtins

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aretw0/machine/pkg/domain"
	"github.com/aretw0/machine/pkg/registry"
)

// Registry returns a registry holding every builtin.
func Registry() *registry.Registry {
	reg := registry.NewRegistry()
	reg.Register("add", Add)
	reg.Register("echo", Echo)
	reg.Register("fail", Fail)
	reg.Register("sleep", Sleep)
	reg.Register("trigger", Trigger)
	return reg
}

// Add exits success with the sum of the numeric argins a and b.
func Add(_ context.Context, in domain.Argins, exits domain.Exits, _ domain.Metadata) error {
	a, err := number(in, "a")
	if err != nil {
		return err
	}
	b, err := number(in, "b")
	if err != nil {
		return err
	}
	exits.Success(a + b)
	return nil
}

// Echo exits success with argin value.
func Echo(_ context.Context, in domain.Argins, exits domain.Exits, _ domain.Metadata) error {
	exits.Success(in["value"])
	return nil
}

// Fail exits error with argin message.
func Fail(_ context.Context, in domain.Argins, exits domain.Exits, _ domain.Metadata) error {
	exits.Error(in["message"])
	return nil
}

// Sleep waits for argin ms milliseconds on another goroutine, then exits
// success. It gives up when the execution context is canceled.
func Sleep(ctx context.Context, in domain.Argins, exits domain.Exits, _ domain.Metadata) error {
	ms, err := number(in, "ms")
	if err != nil {
		return err
	}
	go func() {
		select {
		case <-time.After(time.Duration(ms) * time.Millisecond):
			exits.Success(ms)
		case <-ctx.Done():
		}
	}()
	return nil
}

// Trigger fires the exit named by argin exit with argin value.
func Trigger(_ context.Context, in domain.Argins, exits domain.Exits, _ domain.Metadata) error {
	name, _ := in["exit"].(string)
	if name == "" {
		name = domain.ExitSuccess
	}
	if !exits.Has(name) {
		return fmt.Errorf("no exit named %q", name)
	}
	exits.Trigger(name, in["value"])
	return nil
}

func number(in domain.Argins, key string) (float64, error) {
	switch v := in[key].(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case json.Number:
		return v.Float64()
	default:
		return 0, fmt.Errorf("argin %q must be a number, got %T", key, v)
	}
}
