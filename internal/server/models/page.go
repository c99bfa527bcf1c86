package models

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Page is a zero-based page request.
type Page struct {
	Number int
	Size   int
}

// Normalize clamps the page to sane bounds.
func (p Page) Normalize() Page {
	if p.Number < 0 {
		p.Number = 0
	}
	if p.Size <= 0 {
		p.Size = DefaultPageSize
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	return p
}

// Limit and Offset translate the page into SQL terms.
func (p Page) Limit() int  { return p.Normalize().Size }
func (p Page) Offset() int { n := p.Normalize(); return n.Number * n.Size }
