package repository

// StoreOption applies a configuration option to the MemStore.
type StoreOption func(*MemStore)

// WithStartingID sets the first session id the store hands out.
// Useful for seeding fixtures alongside pre-assigned ids.
func WithStartingID(id int64) StoreOption {
	return func(s *MemStore) {
		if id > 0 {
			s.nextID = id
		}
	}
}
