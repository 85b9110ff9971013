package nodeid

import (
	"fmt"
	"regexp"
	"strings"
)

var segmentRegex = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_-]*$`)

// Parse creates a new Address by parsing its canonical string representation.
func Parse(rawID string) (*Address, error) {
	if rawID == "" {
		return nil, fmt.Errorf("identifier cannot be empty")
	}

	parts := strings.Split(rawID, ".")
	if len(parts) != 3 {
		return nil, fmt.Errorf("identifier %q must have the form <kind>.<type>.<name>", rawID)
	}
	for _, p := range parts {
		if p == "" {
			return nil, fmt.Errorf("identifier path contains empty segment")
		}
		if !segmentRegex.MatchString(p) {
			return nil, fmt.Errorf("invalid path segment format: %q", p)
		}
	}

	kind := Kind(parts[0])
	if kind != StepKind && kind != ResourceKind {
		return nil, fmt.Errorf("unknown node kind %q", parts[0])
	}
	return &Address{Kind: kind, Type: parts[1], Name: parts[2]}, nil
}

// ParseShort parses a `type.name` reference as used in depends_on.
func ParseShort(raw string) (typ, name string, err error) {
	parts := strings.Split(raw, ".")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid dependency address format: %q", raw)
	}
	for _, p := range parts {
		if !segmentRegex.MatchString(p) {
			return "", "", fmt.Errorf("invalid dependency address format: %q", raw)
		}
	}
	return parts[0], parts[1], nil
}
