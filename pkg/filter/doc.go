// Package filter defines the [Filter] capability and its built-in variants.
//
// A filter answers two questions about a path: whether it matches, and which
// attributes it can extract from it. Only the first filter of a rule
// contributes attributes; the rest only narrow the match.
package filter
