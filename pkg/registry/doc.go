// Package registry maps configuration type names to factories.
//
// Filters and actions are each kept in their own [Registry]. An entry names
// the variant, documents it, and knows how to strictly decode its options
// from a [Spec] found in the configuration document. Entries are registered
// explicitly at startup; nothing is discovered by reflection over packages.
package registry
