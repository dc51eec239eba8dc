// ─────────────────────────────────────────────────────────────────────────────
// [Filename]: constants.go — level queue tunables and simulator defaults
//
// Purpose:
//   - Defines the arena geometry and default level counts shared by the
//     engine, its consumers and the simulator CLI.
//
// ⚠️ No runtime logic here — all values must be compile-time resolvable
// ─────────────────────────────────────────────────────────────────────────────

package constants

// ───────────────────────────── Arena Geometry ──────────────────────────────

const (
	// NodeSize is the byte footprint of one arena slot.
	// level(4) + epoch(4) + tag(8) + next(8) + prev(8).
	NodeSize = 32

	// FallbackPageSize is used when the platform cannot report its page size.
	FallbackPageSize = 4096

	// DirectoryInitCap is the first capacity of the block directory.
	// It doubles every time it overflows.
	DirectoryInitCap = 4

	// MaxHandleSlots bounds the arena-wide slot index carried inside a handle (32 bits).
	MaxHandleSlots = 1 << 32

	// MaxSlotsPerBlock bounds one block. Block capacity is rounded down to a power of two.
	MaxSlotsPerBlock = 1 << 24
)

// ───────────────────────────── Level Defaults ──────────────────────────────

const (
	// DefaultLevels is the level count used when a consumer does not choose one.
	// The top level is the saturation sentinel, so 16 leaves 15 real ranks.
	DefaultLevels = 16

	// MinLevels is the smallest usable configuration: one real level plus the sentinel.
	MinLevels = 2
)

// ─────────────────────────── Simulator Defaults ────────────────────────────

const (
	// SimDatabase is the SQLite trace file opened by levelqsim when -db is omitted.
	SimDatabase = "traces.db"

	// SimAgeEvery is the number of accesses between two housekeeping Age passes.
	SimAgeEvery = 1024

	// SimCancelCheck is how many accesses a simulation replays between context checks.
	SimCancelCheck = 4096
)
