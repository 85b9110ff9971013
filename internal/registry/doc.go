// Package registry provides the central "glue" for the module system.
//
// The Registry stores mappings between the string identifiers used in
// manifests (e.g., "OnRunIncomeTrend") and the compiled Go functions and
// types that implement a module's logic, together with the parsed manifest
// definitions.
//
// During startup the registry is validated so that Go code and manifests are
// in sync: every declared input has a matching `bggo`-tagged field of the
// same type, every `uses` entry has a matching dependency field, and every
// lifecycle handler is registered.
package registry
