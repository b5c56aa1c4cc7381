package util

// FalseIfNil dereferences b, treating nil as false.
func FalseIfNil(b *bool) bool {
	if b == nil {
		return false
	}
	return *b
}
