// Package rule defines organize rules.
//
// A [Rule] names the folders to scan, the filters a file must pass, and the
// actions to run on every file that does. Rules are built from their YAML
// form, [Config], by looking up each filter and action in a registry.
package rule
