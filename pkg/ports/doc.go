/*
Package ports defines the driven ports (interfaces) of the machine runner.

These interfaces decouple the engine from external implementations, allowing
executions to be recorded in various storage backends.

# Key Interfaces

  - Journal: Responsible for persisting the outcome of settled executions.

RunJournalContract is a reusable test suite for Journal adapters.
*/
package ports
