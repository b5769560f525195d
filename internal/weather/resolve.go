package weather

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownCity is returned when the city lookup has no match at all.
	ErrUnknownCity = errors.New("unknown city name")

	// ErrIncompatibleCode is returned when a disambiguation code matches
	// none of the communes found for a city name.
	ErrIncompatibleCode = errors.New("insee code is not compatible with city name")

	// ErrRemoteUnavailable is returned when an upstream service failed,
	// timed out or answered with something that could not be decoded.
	ErrRemoteUnavailable = errors.New("remote service unavailable")
)

// SelectCandidate picks one commune among the lookup results for name.
//
// Results are grouped by postal code, keeping one entry per postal code:
// the first one seen, unless a later entry's name is exactly name, in which
// case that entry replaces it while the postal code keeps its position.
// When code is not empty, entries with another location code are dropped
// before grouping. The first group in lookup order is selected; the other
// groups are returned as alternatives.
func SelectCandidate(name, code string, results []LocationCandidate) (Resolution, error) {
	if len(results) == 0 {
		return Resolution{}, fmt.Errorf("%w: %s", ErrUnknownCity, name)
	}

	var postalOrder []string
	byPostal := make(map[string]LocationCandidate)

	for _, c := range results {
		if _, seen := byPostal[c.PostalCode]; seen && c.Name != name {
			continue
		}
		if code != "" && c.Code != code {
			continue
		}
		if _, seen := byPostal[c.PostalCode]; !seen {
			postalOrder = append(postalOrder, c.PostalCode)
		}
		byPostal[c.PostalCode] = c
	}

	if len(postalOrder) == 0 {
		return Resolution{}, fmt.Errorf("%w: %s vs %s", ErrIncompatibleCode, name, code)
	}

	res := Resolution{Location: byPostal[postalOrder[0]]}
	for _, postal := range postalOrder[1:] {
		res.Alternatives = append(res.Alternatives, byPostal[postal])
	}
	return res, nil
}
