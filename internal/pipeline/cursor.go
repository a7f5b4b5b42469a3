package pipeline

// Cursor is the skip/limit position of a run over the source collection.
// PageSize never changes during a run, and Offset only grows by PageSize.
type Cursor struct {
	Offset    int
	PageSize  int
	Exhausted bool
}

// NewCursor returns a cursor at offset zero.
func NewCursor(pageSize int) Cursor {
	return Cursor{PageSize: pageSize}
}

// Advance moves past the current page, whatever happened to its records.
func (c *Cursor) Advance() {
	c.Offset += c.PageSize
}

// Observe records the size of the page just fetched. An empty page marks the
// source as exhausted.
func (c *Cursor) Observe(n int) {
	if n == 0 {
		c.Exhausted = true
	}
}
