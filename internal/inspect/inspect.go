// Package inspect renders arbitrary values for human-facing error messages.
package inspect

import (
	"strings"

	"github.com/davecgh/go-spew/spew"
)

// Depth bounds how far nested values are expanded.
const Depth = 5

var config = spew.ConfigState{
	Indent:                  "  ",
	MaxDepth:                Depth,
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

// Value returns a deep, deterministic dump of v.
func Value(v any) string {
	return strings.TrimRight(config.Sdump(v), "\n")
}
