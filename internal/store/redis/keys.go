package redis

const (
	// KeyPrefixList is the prefix for cached bookmark list keys.
	KeyPrefixList = "diigo:list:"
)

// ListKey returns the Redis key for a cached bookmark list. The key
// starts with the owning user, so invalidation can sweep per user.
func ListKey(listKey string) string {
	return KeyPrefixList + listKey
}

// UserPattern returns the scan pattern matching every cached list that
// belongs to the given user.
func UserPattern(user string) string {
	return KeyPrefixList + user + "|*"
}
