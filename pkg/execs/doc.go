// Package execs runs external commands on behalf of the shell action and
// the CLI.
//
// A [Command] starts from a minimal environment (PATH, HOME, USER, TERM,
// COLORTERM) and adds variables from configuration, either as static values
// or inherited from the caller's environment.
package execs
