// Package dag builds the validated dependency graph of a grid.
//
// Nodes are steps and resources. Edges come from explicit `depends_on`
// entries and from implicit references in `arguments` and `uses`
// expressions (`step.<type>.<name>`, `resource.<type>.<name>`). Build rejects
// unknown runner or asset types, references to missing nodes, references to
// undeclared outputs, mismatched `uses` kinds, and cycles.
package dag
