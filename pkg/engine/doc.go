/*
Package engine implements the execution engine behind every machine call.

A Deferred owns exactly one execution attempt. It is inert when created and
starts running only when a terminal consumption method is called:

  - Exec(cb) delivers the outcome to an error-first callback and returns a Promise.
  - ExecSync() runs a machine declared sync and returns its result directly.
  - Switch(sb) dispatches the outcome to a handler per exit.
  - Await(ctx) blocks the caller until the outcome is known.

All of them sit on top of one settlement slot: the first exit the
implementation calls wins, and every later call is ignored. Once settled, the
outcome is fixed; late subscribers (Promise.Then, repeated Exec) receive the
stored completion without running the machine again.

# Usage

	d := engine.New(def, domain.Argins{"id": 7}, nil, origin, engine.Options{})
	d.Meta(domain.Metadata{"requestID": "r-1"})

	if err := d.Switch(engine.Switchback{
		Success: func(user any) { ... },
		Error:   func(err error) { ... },
		Exits: map[string]func(any){
			"notFound": func(raw any) { ... },
		},
	}); err != nil {
		log.Fatal(err)
	}
*/
package engine
