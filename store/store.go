package store

import "context"

// Keys under which marketplace state is persisted.
const (
	KeyServiceRequests = "service_requests"
	KeyNotifications   = "notifications"
	KeyArtisans        = "artisans"
	KeySequences       = "sequences"
)

// Store is durable key-value storage for serialized marketplace state.
type Store interface {
	// Save replaces the value stored under key.
	Save(ctx context.Context, key string, value []byte) error
	// Load returns the value stored under key; found is false when the key is absent.
	Load(ctx context.Context, key string) (value []byte, found bool, err error)
}

// BatchStore is implemented by stores that can save several keys atomically.
type BatchStore interface {
	Store
	SaveMany(ctx context.Context, entries map[string][]byte) error
}

// SaveAll writes every entry, atomically when s supports it.
func SaveAll(ctx context.Context, s Store, entries map[string][]byte) error {
	if bs, ok := s.(BatchStore); ok {
		return bs.SaveMany(ctx, entries)
	}
	for key, value := range entries {
		if err := s.Save(ctx, key, value); err != nil {
			return err
		}
	}
	return nil
}
