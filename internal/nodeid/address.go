package nodeid

import "strings"

// Kind is the first segment of an address.
type Kind string

const (
	StepKind     Kind = "step"
	ResourceKind Kind = "resource"
)

// Address is the structured representation of a unique node identifier.
type Address struct {
	Kind Kind
	Type string
	Name string
}

// Step builds the address of a step instance.
func Step(runnerType, name string) *Address {
	return &Address{Kind: StepKind, Type: runnerType, Name: name}
}

// Resource builds the address of a resource instance.
func Resource(assetType, name string) *Address {
	return &Address{Kind: ResourceKind, Type: assetType, Name: name}
}

// String serializes the Address into its canonical path string representation.
func (a *Address) String() string {
	if a == nil {
		return ""
	}
	return strings.Join([]string{string(a.Kind), a.Type, a.Name}, ".")
}

// Short returns the `type.name` form used by depends_on.
func (a *Address) Short() string {
	if a == nil {
		return ""
	}
	return a.Type + "." + a.Name
}

// Equal checks for equality between two Address pointers.
func (a *Address) Equal(other *Address) bool {
	if a == nil || other == nil {
		return a == other
	}
	return *a == *other
}
