package pagination

const (
	// DefaultLimit is the standard page size when a limit is not provided.
	DefaultLimit = 25
	// MaxLimit caps how many rows any page query can request.
	MaxLimit = 100
)

// Params holds page/limit pagination inputs from controllers or services.
type Params struct {
	Page  int
	Limit int
}

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

// NormalizePage clamps the page number to 1-based.
func NormalizePage(page int) int {
	if page <= 0 {
		return 1
	}
	return page
}

// Normalize returns a copy with page and limit clamped to valid values.
func (p Params) Normalize() Params {
	return Params{
		Page:  NormalizePage(p.Page),
		Limit: NormalizeLimit(p.Limit),
	}
}

// Offset converts the normalized page/limit pair into a row offset.
func (p Params) Offset() int {
	normalized := p.Normalize()
	return (normalized.Page - 1) * normalized.Limit
}
