package database

// PostRepositoryInterface is the identity-store contract the relay
// depends on: point lookups by identity key or fingerprint, idempotent
// insert, bounded growth via oldest-first eviction.
type PostRepositoryInterface interface {
	Seen(source, postKey string) (bool, error)
	SeenFingerprint(fingerprint string) (bool, error)
	Mark(source, postKey, fingerprint string) error
	Evict(ceiling int) (int, error)
	Count() (int, error)
}
