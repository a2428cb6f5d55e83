// Package storage provides the durable client-side key-value store shared
// by the session store and the checkout orchestrator. It survives process
// restarts so the in-flight order identifier outlives the payment gateway
// handoff.
package storage

// Keys persisted by the client.
const (
	KeyAuthToken     = "authToken"
	KeyCurrentOrder  = "currentOrder"
	KeyPendingIntent = "pendingIntent"
)

// Store is a small durable string key-value store.
type Store interface {
	// Get returns the value for key and whether it was present.
	Get(key string) (string, bool, error)
	// Set stores the value for key, overwriting any previous value.
	Set(key, value string) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(key string) error
}
