package sequence

// Matches reports whether submitted reproduces stored exactly: same length,
// same tokens, same order. There is no tolerance for nearby cells.
func Matches(stored, submitted Sequence) bool {
	if len(stored) == 0 {
		return false
	}
	return stored.Equal(submitted)
}
