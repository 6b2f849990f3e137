package vouch

// defaultGuardSize bounds the guard's memory when no option is given.
const defaultGuardSize = 50000

// Option applies a configuration option to the guard.
type Option func(*memoryGuard)

// WithMaxSize sets how many tuples the guard keeps in memory.
// maxSize > 0 enables bounded mode with oldest-first eviction;
// maxSize <= 0 keeps every tuple.
func WithMaxSize(maxSize int) Option {
	return func(g *memoryGuard) {
		g.maxSize = maxSize
	}
}
