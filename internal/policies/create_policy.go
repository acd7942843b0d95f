package policies

import "fmt"

// CreatePolicy decides what the resolver does when a natural key matches
// nothing in the store.
type CreatePolicy int

const (
	CreateDisallow CreatePolicy = iota
	CreateAllow
)

func CreatePolicyFor(allow bool) CreatePolicy {
	if allow {
		return CreateAllow
	}
	return CreateDisallow
}

func (p CreatePolicy) Allows() bool {
	return p == CreateAllow
}

// MissingEntityMessage is recorded when an entity is absent and creation is
// disallowed. kind is a lowercase noun such as "group" or "parent project".
func MissingEntityMessage(kind string) string {
	return fmt.Sprintf("You chose not to create non-existing objects, the specified %s should exist beforehand.", kind)
}
