package storage

// Adapter is the key/value persistence contract the event store serializes
// its snapshot through. A missing key is reported as ("", nil), not an error.
type Adapter interface {
	GetItem(key string) (string, error)
	SetItem(key, value string) error
	RemoveItem(key string) error
}
