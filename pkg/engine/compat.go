package engine

import (
	"github.com/aretw0/machine/pkg/domain"
)

// SetEnv is a deprecated alias of Meta.
//
// Deprecated: use Meta.
func (d *Deferred) SetEnv(meta domain.Metadata) *Deferred {
	d.logger.Warn("SetEnv is deprecated and will be removed; use Meta instead",
		"identity", d.def.Identity,
	)
	return d.Meta(meta)
}

// Cache is no longer supported by the runner.
func (d *Deferred) Cache() error {
	return &domain.CompatibilityError{
		Message: "Cache() is not supported by the machine runner. " +
			"Cache results in the calling code instead, for example keyed by the argins.",
	}
}

// DemuxSync is no longer supported by the runner.
func (d *Deferred) DemuxSync() error {
	return &domain.CompatibilityError{
		Message: "DemuxSync() is not supported by the machine runner. " +
			"Use ExecSync() and inspect the returned error instead.",
	}
}
