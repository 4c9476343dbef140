package changeset

import "fmt"

// Kind classifies a filesystem change.
type Kind int

const (
	// Added covers created files and directories.
	Added Kind = iota + 1
	// Modified covers content changes to an existing path.
	Modified
	// Deleted covers removed files and directories.
	Deleted
)

// String returns the lowercase name used in logs.
func (k Kind) String() string {
	switch k {
	case Added:
		return "added"
	case Modified:
		return "modified"
	case Deleted:
		return "deleted"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ChangeSet accumulates uncommitted paths in three insertion-ordered sets.
// A path is a member of at most one set at any time.
//
// Every recorded event bumps a revision counter and stamps the touched path
// with it, so a caller can clear exactly the entries it has committed.
// ChangeSet is not safe for concurrent use.
type ChangeSet struct {
	added   *orderedSet
	changed *orderedSet
	deleted *orderedSet
	rev     uint64
}

// New returns an empty ChangeSet.
func New() *ChangeSet {
	return &ChangeSet{
		added:   newOrderedSet(),
		changed: newOrderedSet(),
		deleted: newOrderedSet(),
	}
}

// Record applies one event to the set.
//
//	added:    insert into added, drop from changed and deleted
//	modified: keep in added if already there, else insert into changed
//	deleted:  insert into deleted, drop from added and changed
//
// A modification of a path currently marked deleted moves it to changed.
func (c *ChangeSet) Record(kind Kind, path string) {
	c.rev++

	switch kind {
	case Added:
		c.changed.remove(path)
		c.deleted.remove(path)
		c.added.insert(path, c.rev)
	case Modified:
		if c.added.has(path) {
			c.added.touch(path, c.rev)
			return
		}
		c.deleted.remove(path)
		c.changed.insert(path, c.rev)
	case Deleted:
		c.added.remove(path)
		c.changed.remove(path)
		c.deleted.insert(path, c.rev)
	}
}

// Kind reports which set holds path.
func (c *ChangeSet) Kind(path string) (Kind, bool) {
	switch {
	case c.added.has(path):
		return Added, true
	case c.changed.has(path):
		return Modified, true
	case c.deleted.has(path):
		return Deleted, true
	}
	return 0, false
}

// Added returns the added paths in insertion order.
func (c *ChangeSet) Added() []string { return c.added.list() }

// Changed returns the modified paths in insertion order.
func (c *ChangeSet) Changed() []string { return c.changed.list() }

// Deleted returns the deleted paths in insertion order.
func (c *ChangeSet) Deleted() []string { return c.deleted.list() }

// Len returns the number of tracked paths across all sets.
func (c *ChangeSet) Len() int {
	return c.added.len() + c.changed.len() + c.deleted.len()
}

// IsEmpty reports whether no path is tracked.
func (c *ChangeSet) IsEmpty() bool {
	return c.Len() == 0
}

// Revision returns the revision of the most recent event.
func (c *ChangeSet) Revision() uint64 {
	return c.rev
}

// Snapshot captures the current contents.
func (c *ChangeSet) Snapshot() Snapshot {
	return Snapshot{
		Added:    c.Added(),
		Changed:  c.Changed(),
		Deleted:  c.Deleted(),
		Revision: c.rev,
	}
}

// Clear empties all three sets.
func (c *ChangeSet) Clear() {
	c.added = newOrderedSet()
	c.changed = newOrderedSet()
	c.deleted = newOrderedSet()
}

// ClearThrough removes every path whose latest event is at or before rev.
// Paths touched after rev stay tracked. ClearThrough(c.Revision()) is Clear.
func (c *ChangeSet) ClearThrough(rev uint64) {
	if rev >= c.rev {
		c.Clear()
		return
	}
	c.added.removeThrough(rev)
	c.changed.removeThrough(rev)
	c.deleted.removeThrough(rev)
}

// Snapshot is an immutable copy of a ChangeSet.
type Snapshot struct {
	Added    []string
	Changed  []string
	Deleted  []string
	Revision uint64
}

// IsEmpty reports whether the snapshot holds no paths.
func (s Snapshot) IsEmpty() bool {
	return len(s.Added) == 0 && len(s.Changed) == 0 && len(s.Deleted) == 0
}

// orderedSet is a string set that iterates in insertion order.
type orderedSet struct {
	order []string
	revs  map[string]uint64
}

func newOrderedSet() *orderedSet {
	return &orderedSet{revs: make(map[string]uint64)}
}

func (s *orderedSet) has(path string) bool {
	_, ok := s.revs[path]
	return ok
}

// insert adds path at the end, or restamps it in place if already present.
func (s *orderedSet) insert(path string, rev uint64) {
	if !s.has(path) {
		s.order = append(s.order, path)
	}
	s.revs[path] = rev
}

func (s *orderedSet) touch(path string, rev uint64) {
	if s.has(path) {
		s.revs[path] = rev
	}
}

func (s *orderedSet) remove(path string) {
	if !s.has(path) {
		return
	}
	delete(s.revs, path)
	for i, p := range s.order {
		if p == path {
			s.order = append(s.order[:i], s.order[i+1:]...)
			return
		}
	}
}

func (s *orderedSet) removeThrough(rev uint64) {
	kept := s.order[:0]
	for _, p := range s.order {
		if s.revs[p] <= rev {
			delete(s.revs, p)
			continue
		}
		kept = append(kept, p)
	}
	s.order = kept
}

func (s *orderedSet) len() int {
	return len(s.order)
}

func (s *orderedSet) list() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}
