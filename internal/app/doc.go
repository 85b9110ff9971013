// Package app wires configuration loading, module registration, graph
// construction and execution into a single run, independent of the CLI.
package app
