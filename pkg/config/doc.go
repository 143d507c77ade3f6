// Package config loads organize configuration files.
//
// A [Loader] validates a document against its JSON schema, decodes it into a
// versioned config type, and turns errors into [*yaml.Error] values annotated
// with the offending line of the source document.
package config
