package credential

// Storage is the host's persistent key-value storage. Implementations must
// treat a missing key as a normal condition: Get returns "" with a nil error
// when nothing is stored, and Delete of an absent key succeeds.
type Storage interface {
	// Get returns the stored value, or "" when the key is absent.
	Get(key string) (string, error)

	// Set stores the value under the key, replacing any previous value.
	Set(key, value string) error

	// Delete removes the key. Deleting an absent key is not an error.
	Delete(key string) error
}
