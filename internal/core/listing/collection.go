package listing

// Collection is an insertion-ordered set of entries keyed by ID. The first
// entry seen for an ID wins; later duplicates are dropped.
type Collection struct {
	order []FileEntry
	index map[string]int
}

// NewCollection builds a collection from entries, dropping duplicates.
func NewCollection(entries ...FileEntry) *Collection {
	c := &Collection{
		order: make([]FileEntry, 0, len(entries)),
		index: make(map[string]int, len(entries)),
	}
	c.Merge(entries)
	return c
}

// Add appends e unless its ID is already present.
func (c *Collection) Add(e FileEntry) bool {
	if _, ok := c.index[e.ID]; ok {
		return false
	}
	c.index[e.ID] = len(c.order)
	c.order = append(c.order, e)
	return true
}

// Merge adds entries in order and returns how many were new.
func (c *Collection) Merge(entries []FileEntry) int {
	added := 0
	for _, e := range entries {
		if c.Add(e) {
			added++
		}
	}
	return added
}

// Len returns the number of unique entries.
func (c *Collection) Len() int {
	if c == nil {
		return 0
	}
	return len(c.order)
}

// At returns the i-th entry in first-seen order.
func (c *Collection) At(i int) FileEntry { return c.order[i] }

// Get looks an entry up by ID.
func (c *Collection) Get(id string) (FileEntry, bool) {
	i, ok := c.index[id]
	if !ok {
		return FileEntry{}, false
	}
	return c.order[i], true
}

// Contains reports whether id is present.
func (c *Collection) Contains(id string) bool {
	_, ok := c.index[id]
	return ok
}

// Entries returns a copy of the entries in first-seen order.
func (c *Collection) Entries() []FileEntry {
	if c == nil {
		return nil
	}
	out := make([]FileEntry, len(c.order))
	copy(out, c.order)
	return out
}

// Clone returns an independent copy.
func (c *Collection) Clone() *Collection {
	cp := &Collection{
		order: make([]FileEntry, len(c.order)),
		index: make(map[string]int, len(c.index)),
	}
	copy(cp.order, c.order)
	for k, v := range c.index {
		cp.index[k] = v
	}
	return cp
}
