package complaint

import "complaintdesk/dashboard/internal/models"

// SeenSet is the set of complaint IDs already shown in an unattended popup.
// It only grows: there is no way to remove an ID.
type SeenSet struct {
	order []string
	index map[string]struct{}
}

// NewSeenSet builds a set from persisted IDs, dropping blanks and duplicates.
func NewSeenSet(ids []string) *SeenSet {
	s := &SeenSet{index: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		s.add(id)
	}
	return s
}

func (s *SeenSet) add(id string) bool {
	if id == "" {
		return false
	}
	if _, ok := s.index[id]; ok {
		return false
	}
	s.index[id] = struct{}{}
	s.order = append(s.order, id)
	return true
}

// Add inserts the IDs and reports how many were new.
func (s *SeenSet) Add(ids ...models.ID) int {
	n := 0
	for _, id := range ids {
		if s.add(id.String()) {
			n++
		}
	}
	return n
}

func (s *SeenSet) Has(id models.ID) bool {
	_, ok := s.index[id.String()]
	return ok
}

func (s *SeenSet) Len() int { return len(s.order) }

// IDs returns the members in insertion order, ready to persist.
func (s *SeenSet) IDs() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}
