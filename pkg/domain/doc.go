/*
Package domain contains the core types shared by every part of the machine runner.

It defines what a machine is (Definition, ExitSpec, Fn), what flows through one
execution (Argins, Metadata, Exits, Completion) and the typed errors callers use
to tell misuse apart from implementation outcomes. The package is kept free of
I/O and of the execution mechanics themselves, which live in pkg/engine.

# Key Entities

  - Definition: the declarative unit of work (identity, exits, implementation function, sync/timeout flags).
  - Exits: the handler set an implementation function uses to signal completion.
  - Completion: the canonical (error, result) outcome of one execution.
  - Exception: the typed error produced when a custom exit fires; its Code is the exit name.
*/
package domain
