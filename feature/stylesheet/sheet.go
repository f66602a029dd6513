package stylesheet

import (
	"maps"
	"slices"
	"strings"
	"sync"
)

// Sheet collects the rules of the styles in use, keyed by class. It is safe
// for concurrent use.
type Sheet struct {
	mu    sync.RWMutex
	rules map[string]string
}

// NewSheet returns an empty sheet.
func NewSheet() *Sheet {
	return &Sheet{rules: map[string]string{}}
}

// Add registers style and returns its class, empty for a zero style.
func (s *Sheet) Add(style Style) string {
	class := style.Class()
	if class == "" {
		return ""
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rules[class]; !ok {
		s.rules[class] = style.Render(class)
	}
	return class
}

// Len returns the number of rules.
func (s *Sheet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rules)
}

// Rules returns a copy of the rules, class to CSS text.
func (s *Sheet) Rules() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.rules)
}

// Bundle renders every rule into one stylesheet, ordered by class.
func (s *Sheet) Bundle() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var b strings.Builder
	for _, class := range slices.Sorted(maps.Keys(s.rules)) {
		b.WriteString(s.rules[class])
	}
	return b.String()
}
