package channel

import (
	"sync"
)

// Table maps every possible channel hash byte to the candidate names that
// produce it under a single PSK. It is immutable once built.
type Table struct {
	buckets [256][]string
}

// BuildTable hashes every name under psk and groups them by hash byte,
// keeping the order of names within each bucket.
func BuildTable(names []string, psk []byte) (*Table, error) {
	key, err := ExpandPSK(psk)
	if err != nil {
		return nil, err
	}
	keyFold := xorFold(key)

	t := &Table{}
	for _, name := range names {
		h := hashWithKey(name, keyFold)
		t.buckets[h] = append(t.buckets[h], name)
	}

	return t, nil
}

// Lookup returns a copy of the names hashing to h. Out of range values yield
// an empty list.
func (t *Table) Lookup(h int) []string {
	if t == nil || h < 0 || h > 255 {
		return []string{}
	}

	return append([]string{}, t.buckets[h]...)
}

// Len returns the total number of names in the table.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	n := 0
	for _, b := range t.buckets {
		n += len(b)
	}

	return n
}

// RainbowService owns per-PSK rainbow tables built lazily from a fixed name
// list. Tables are keyed by the PSK string exactly as supplied.
type RainbowService struct {
	names []string

	mu     sync.RWMutex
	tables map[string]*Table
}

// NewRainbowService creates a service over the static dictionary plus extra
// names. The name list is fixed for the lifetime of the service.
func NewRainbowService(extra ...string) *RainbowService {
	return &RainbowService{
		names:  mergeNames(Dictionary(), extra),
		tables: make(map[string]*Table),
	}
}

// Names returns the candidate names the service hashes.
func (s *RainbowService) Names() []string {
	return append([]string(nil), s.names...)
}

// Table returns the cached table for pskB64, building it on first use. The
// build runs outside the lock; when two callers race, the first published
// table wins and both receive it.
func (s *RainbowService) Table(pskB64 string) (*Table, error) {
	s.mu.RLock()
	t, ok := s.tables[pskB64]
	s.mu.RUnlock()
	if ok {
		return t, nil
	}

	raw, err := DecodePSK(pskB64)
	if err != nil {
		return nil, err
	}
	built, err := BuildTable(s.names, raw)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.tables[pskB64]; ok {
		return existing, nil
	}
	s.tables[pskB64] = built

	return built, nil
}

// Candidates returns the names whose hash under pskB64 equals h. Invalid PSKs
// and out of range hashes yield an empty list.
func (s *RainbowService) Candidates(h int, pskB64 string) []string {
	if h < 0 || h > 255 {
		return []string{}
	}
	t, err := s.Table(pskB64)
	if err != nil {
		return []string{}
	}

	return t.Lookup(h)
}

// Cached reports how many PSK tables have been built.
func (s *RainbowService) Cached() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.tables)
}
