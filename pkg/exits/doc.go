/*
Package exits builds the handler set an implementation function uses to finish
an execution, and maps whatever it passes to those handlers onto errors.

Each handler funnels into a single settlement function supplied by the engine.
The error exit coerces its raw output through Classify; custom exits become
*domain.Exception values whose Code is the exit name, so callers can dispatch
on the code instead of matching message text.
*/
package exits
