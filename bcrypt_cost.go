//go:build !race

package users

// Work factor 10. Derived signing secrets embed the stored hash, so changing
// the cost only affects hashes written after the change.
func passwordHashCost() int {
	return 10
}
