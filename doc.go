/*
Package machine turns declarative machine definitions into callables.

A machine is a named unit of work: an implementation function plus a set of
labeled exits (success, error and any custom exits such as notFound). Build
validates a definition once and returns a Machine; every call of the Machine
yields an engine.Deferred that does nothing until it is consumed.

# Consuming a call

The same call can be consumed in four ways, all backed by one settlement:

	m, err := machine.Build(domain.Definition{
		Identity: "add",
		Sync:     true,
		Fn: func(ctx context.Context, in domain.Argins, exits domain.Exits, meta domain.Metadata) error {
			exits.Success(in["a"].(int) + in["b"].(int))
			return nil
		},
	})
	if err != nil {
		log.Fatal(err)
	}

	// 1. Synchronously (only for machines declared Sync).
	sum, err := m.Run(domain.Argins{"a": 1, "b": 2}).ExecSync()

	// 2. With an error-first callback.
	m.Run(domain.Argins{"a": 1, "b": 2}).Exec(func(err error, sum any) { ... })

	// 3. As a promise.
	sum, err = m.Run(domain.Argins{"a": 1, "b": 2}).Await(ctx)

	// 4. By exit name.
	m.Run(domain.Argins{"a": 1, "b": 2}).Switch(engine.Switchback{...})

# Errors

Every error produced by the runner is one of the typed errors in pkg/domain
(UsageError, CompatibilityError, ImplementationError, Exception,
RuntimeError, TimeoutError). Custom exits surface as *domain.Exception whose
Code is the exit name. All of them carry the call-site trace captured when
the machine was called.

# Observability

Use WithLogger for engine diagnostics, WithLifecycleHooks (see
pkg/observability for Prometheus metrics) and WithJournal to persist every
settled execution.
*/
package machine
