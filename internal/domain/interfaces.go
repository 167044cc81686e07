package domain

// ─── Service Interfaces ─────────────────────────────────────────────────────
// Infrastructure implements them; the application layer depends on them.

// KVStore is whole-value durable storage addressed by key.
type KVStore interface {
	// Get returns the stored bytes; ok is false when the key is absent.
	Get(key string) (value []byte, ok bool, err error)
	Put(key string, value []byte) error
	Delete(key string) error
}

// Catalog is the read-only lookup table of islands, modules and challenges.
// A miss is reported through ok, never as an error.
type Catalog interface {
	Island(id string) (Island, bool)
	Module(id string) (Module, bool)
	Challenge(id string) (Challenge, bool)

	// Islands returns islands in display order.
	Islands() []Island
	// ModulesForIsland returns the island's modules in unlock order.
	ModulesForIsland(islandID string) []Module
	Challenges() []Challenge
}
