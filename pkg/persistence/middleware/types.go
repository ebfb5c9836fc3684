// Package middleware provides decorators for ports.Journal.
package middleware

import "github.com/aretw0/machine/pkg/ports"

// Middleware allows wrapping a Journal to add behavior.
type Middleware func(ports.Journal) ports.Journal

// Chain applies middlewares so that the first one is the outermost.
func Chain(j ports.Journal, mws ...Middleware) ports.Journal {
	for i := len(mws) - 1; i >= 0; i-- {
		j = mws[i](j)
	}
	return j
}
