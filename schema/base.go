package schema

// Base is a base schema for embedding into concrete input/output structures.
type Base struct{}

// String implements Schema interface
func (r Base) String() string {
	return ""
}
