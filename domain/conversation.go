package domain

// PairKey canonicalizes an unordered pair of usernames: the two names
// sorted lexicographically and joined with "|". This guarantees
// exactly one conversation thread per pair regardless of who
// initiates, and it is also the key format of the durable snapshot.
func PairKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + "|" + b
}
