/*
Package definition normalizes machine definitions and decodes them from
declarative manifests.

Normalize is the only step a Definition goes through before a callable is
built from it: it synthesizes the success and error exits and resolves the
identity used in generated messages. FromMap, ParseYAML, ParseJSON and LoadFile
accept the manifest form

	identity: findUser
	friendlyName: Find user
	sync: true
	timeout: 500        # milliseconds
	fn: findUser        # name looked up in a registry.Registry
	exits:
	  notFound:
	    description: No user matches the given id.

and bind fn through a registry when it is given by name.
*/
package definition
