// Package base holds the offset/limit pagination contract shared by every
// trip-owned collection. Pages are ORDER BY + OFFSET; no cursor stability is
// guaranteed across concurrent writes.
package base

// Per-entity default page sizes.
const (
	DefaultTake      = 30
	DefaultPhotoTake = 40
	MaxTake          = 100
)

// Params are offset/limit pagination parameters.
type Params struct {
	Skip int
	Take int
}

// Normalize clamps params to sane bounds, using defaultTake when take is
// unset or non-positive.
func (p Params) Normalize(defaultTake int) Params {
	if p.Skip < 0 {
		p.Skip = 0
	}
	if p.Take <= 0 {
		p.Take = defaultTake
	}
	if p.Take > MaxTake {
		p.Take = MaxTake
	}
	return p
}

// HasMore reports whether rows remain past the returned page.
func HasMore(skip, returned int, total int64) bool {
	return int64(skip+returned) < total
}
