// Package cmdline wires the cliconf loader, precedence resolver and user
// defaults store into cobra commands.
//
// A config command accepts configuration units as CONFIG arguments, loads them
// into a chained context and resolves every resource option from the command
// line, that context, the environment, a default map and the declared default,
// in that order.
package cmdline
