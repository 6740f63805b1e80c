package pagination

const (
	// DefaultLimit is the standard page size when a limit is not provided.
	DefaultLimit = 50
	// MaxLimit caps how many rows any listing query can request.
	MaxLimit = 100
	// MaxOffset bounds how far a client can page into a listing.
	MaxOffset = 1_000_000
)

// NormalizeLimit enforces the configured default and maximum limits.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// NormalizeOffset clamps the offset into the supported range.
func NormalizeOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	if offset > MaxOffset {
		return MaxOffset
	}
	return offset
}
