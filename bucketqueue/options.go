package bucketqueue

import "github.com/jiverson002/sbma-sub001/debug"

// Growth selects the arena storage policy. Queue behaviour is identical under both.
type Growth uint8

const (
	// Growable maps a new block whenever the current one fills.
	Growable Growth = iota
	// Fixed maps at most MaxBlocks blocks; further inserts fail with ErrOutOfMemory.
	Fixed
)

func (g Growth) String() string {
	switch g {
	case Growable:
		return "growable"
	case Fixed:
		return "fixed"
	}
	return "unknown"
}

// Option is a functional option for New.
type Option func(*config)

type config struct {
	growth    Growth
	maxBlocks int
	blockSize int
	source    BlockSource
	fatal     func(error)
}

func defaultConfig() *config {
	return &config{
		growth:    Growable,
		maxBlocks: 1,
		blockSize: pageSize(),
		source:    MmapSource{},
		fatal:     Abort,
	}
}

// WithGrowth sets the storage policy.
func WithGrowth(g Growth) Option {
	return func(c *config) {
		c.growth = g
	}
}

// WithMaxBlocks caps the number of blocks a Fixed arena may map.
// Ignored by Growable arenas.
func WithMaxBlocks(n int) Option {
	return func(c *config) {
		c.maxBlocks = n
	}
}

// WithBlockSize overrides the block size in bytes (default: one OS page).
// The node count per block is rounded down to a power of two.
func WithBlockSize(bytes int) Option {
	return func(c *config) {
		c.blockSize = bytes
	}
}

// WithBlockSource replaces the anonymous-mmap page supply.
func WithBlockSource(s BlockSource) Option {
	return func(c *config) {
		c.source = s
	}
}

// WithFatal installs the handler run when the arena cannot grow.
// A nil handler makes ErrOutOfMemory an ordinary returned error.
func WithFatal(fn func(error)) Option {
	return func(c *config) {
		c.fatal = fn
	}
}

// Abort is the default fatal handler: log the failure and end the process.
func Abort(err error) {
	debug.Fatal("bucketqueue", err)
}
