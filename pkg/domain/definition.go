package domain

import (
	"context"
	"sort"
	"time"
)

// Reserved exit names. Every normalized Definition declares both.
const (
	ExitSuccess = "success"
	ExitError   = "error"
)

// ImplementationType declares how a Definition's Fn is meant to be executed.
type ImplementationType string

const (
	// ImplementationDefault runs Fn and waits for one of its exits to fire.
	ImplementationDefault ImplementationType = ""
	// ImplementationComposite marks definitions assembled from other machines.
	// It is recognized but cannot be executed by this runner.
	ImplementationComposite ImplementationType = "composite"
	// ImplementationAsyncFunction is an experimental kind, recognized but not supported.
	ImplementationAsyncFunction ImplementationType = "asyncFunction"
	// ImplementationClassicFunction is an experimental kind, recognized but not supported.
	ImplementationClassicFunction ImplementationType = "classicFunction"
)

// Known reports whether t is one of the declared implementation types.
func (t ImplementationType) Known() bool {
	switch t {
	case ImplementationDefault, ImplementationComposite, ImplementationAsyncFunction, ImplementationClassicFunction:
		return true
	}
	return false
}

// Fn is the implementation function of a machine.
//
// It must eventually call exactly one exit on exits. A non-nil returned error
// settles the execution with that error unless an exit already fired; returning
// nil without calling an exit means an exit will be called later, possibly
// from another goroutine. ctx carries the call metadata (see MetadataFrom) and
// is canceled when the execution times out.
type Fn func(ctx context.Context, in Argins, exits Exits, meta Metadata) error

// ExitSpec describes one exit of a machine.
type ExitSpec struct {
	Description string `json:"description,omitempty" yaml:"description,omitempty" mapstructure:"description"`
}

// Definition is the declarative description of a machine.
type Definition struct {
	// Identity names the machine in generated messages. Uniqueness is not enforced.
	Identity string `json:"identity,omitempty" yaml:"identity,omitempty" mapstructure:"identity"`

	// FriendlyName is used to derive Identity when the latter is empty.
	FriendlyName string `json:"friendlyName,omitempty" yaml:"friendlyName,omitempty" mapstructure:"friendlyName"`

	Description string `json:"description,omitempty" yaml:"description,omitempty" mapstructure:"description"`

	// Exits maps exit names to their specs. success and error are synthesized when absent.
	Exits map[string]ExitSpec `json:"exits,omitempty" yaml:"exits,omitempty" mapstructure:"exits"`

	Fn Fn `json:"-" yaml:"-" mapstructure:"-"`

	// Sync declares that Fn always calls an exit before returning.
	Sync bool `json:"sync,omitempty" yaml:"sync,omitempty" mapstructure:"sync"`

	// Timeout bounds how long an execution may stay unsettled. Zero disables it.
	Timeout time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty" mapstructure:"-"`

	ImplementationType ImplementationType `json:"implementationType,omitempty" yaml:"implementationType,omitempty" mapstructure:"implementationType"`
}

// CustomExits returns the declared exit names other than success and error,
// in lexical order.
func (d Definition) CustomExits() []string {
	names := make([]string, 0, len(d.Exits))
	for name := range d.Exits {
		if name == ExitSuccess || name == ExitError {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
