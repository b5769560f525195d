package store

import (
	"sort"
	"sync"
)

// PopularityStore is a concurrency-safe in-memory count of how often each
// city was requested. It lives as long as the process and is never
// persisted nor decremented.
type PopularityStore struct {
	mu sync.Mutex

	// key: city name, value: request count
	counts map[string]int
	// first-recorded order, used to break count ties
	order []string

	// favorites are always listed first, in this order
	favorites []string
}

// NewPopularityStore creates an empty store. favorites are listed first
// by TopCities, front to back, whatever their counts. Repeated and empty
// names are dropped.
func NewPopularityStore(favorites []string) *PopularityStore {
	seen := make(map[string]bool, len(favorites))
	unique := make([]string, 0, len(favorites))
	for _, f := range favorites {
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		unique = append(unique, f)
	}
	return &PopularityStore{
		counts:    make(map[string]int),
		favorites: unique,
	}
}

// RecordVisit increments the counter of city, creating it at 1.
func (s *PopularityStore) RecordVisit(city string) {
	if city == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.counts[city]; !ok {
		s.order = append(s.order, city)
	}
	s.counts[city]++
}

// Count returns the number of visits recorded for city.
func (s *PopularityStore) Count(city string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[city]
}

// TopCities returns at most limit cities by descending count, ties kept in
// first-recorded order, with the favorites moved to the front. Favorites
// are added even when they were never recorded, so the result may hold up
// to limit+len(favorites) names.
func (s *PopularityStore) TopCities(limit int) []string {
	s.mu.Lock()
	ranked := make([]string, len(s.order))
	copy(ranked, s.order)
	sort.SliceStable(ranked, func(i, j int) bool {
		return s.counts[ranked[i]] > s.counts[ranked[j]]
	})
	s.mu.Unlock()

	if limit >= 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}

	isFavorite := make(map[string]bool, len(s.favorites))
	for _, f := range s.favorites {
		isFavorite[f] = true
	}

	out := make([]string, 0, len(s.favorites)+len(ranked))
	out = append(out, s.favorites...)
	for _, city := range ranked {
		if !isFavorite[city] {
			out = append(out, city)
		}
	}
	return out
}
