package preset

import "strings"

// Store serves the quick actions shown under the chat input.
type Store interface {
	List() []Preset
	FindByID(id string) (Preset, bool)
}

// MemoryStore keeps presets in display order with an id index.
type MemoryStore struct {
	ordered []Preset
	byID    map[string]int
}

// NewMemoryStore keeps presets that have an id, a label and a query. A
// repeated id replaces the earlier preset in place.
func NewMemoryStore(items []Preset) *MemoryStore {
	s := &MemoryStore{byID: make(map[string]int, len(items))}
	for _, item := range items {
		item.ID = strings.TrimSpace(item.ID)
		if item.ID == "" || strings.TrimSpace(item.Label) == "" || strings.TrimSpace(item.Query) == "" {
			continue
		}
		if i, ok := s.byID[item.ID]; ok {
			s.ordered[i] = item
			continue
		}
		s.byID[item.ID] = len(s.ordered)
		s.ordered = append(s.ordered, item)
	}
	return s
}

// List returns the presets in display order.
func (s *MemoryStore) List() []Preset {
	return append([]Preset(nil), s.ordered...)
}

func (s *MemoryStore) FindByID(id string) (Preset, bool) {
	i, ok := s.byID[id]
	if !ok {
		return Preset{}, false
	}
	return s.ordered[i], true
}
