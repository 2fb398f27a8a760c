package common

// KeyType is the integer key both index engines operate on, fixed to int64.
type KeyType int64

// IsSorted reports whether keys are in non-decreasing order. Both engines
// assume this holds for every array they consume; the check is cheap enough
// for harnesses and tests to run up front.
func IsSorted(keys []KeyType) bool {
	for i := 1; i < len(keys); i++ {
		if keys[i-1] > keys[i] {
			return false
		}
	}
	return true
}
