/*
Package nodeid provides a structured representation for node identifiers in
the execution graph.

An identifier is a dot-separated path of exactly three segments: the node
kind (`step` or `resource`), the runner or asset type, and the instance name,
e.g. `step.csv_table.renta`. `depends_on` entries use the two-segment short
form (`csv_table.renta`) and are resolved against both kinds.
*/
package nodeid
