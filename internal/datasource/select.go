package datasource

import (
	"errors"
	"fmt"
)

// ErrNoSource is returned when no valid source is available.
var ErrNoSource = errors.New("no valid backlog source")

// ValidateSource loads the source and records whether it holds at least one
// item.
func ValidateSource(s *DataSource) error {
	items, err := LoadFromSource(*s)
	if err != nil {
		s.Valid = false
		s.ValidationError = err.Error()
		return err
	}
	s.ItemCount = len(items)
	if len(items) == 0 {
		s.Valid = false
		s.ValidationError = "no items"
		return fmt.Errorf("%s: no items", s.Path)
	}
	s.Valid = true
	s.ValidationError = ""
	return nil
}

// SelectBestSource returns the freshest valid source, preferring the higher
// priority type on a tie.
func SelectBestSource(sources []DataSource) (DataSource, error) {
	var best DataSource
	found := false
	for _, s := range sources {
		if !s.Valid {
			continue
		}
		if !found ||
			s.ModTime.After(best.ModTime) ||
			(s.ModTime.Equal(best.ModTime) && s.Priority > best.Priority) {
			best = s
			found = true
		}
	}
	if !found {
		return DataSource{}, ErrNoSource
	}
	return best, nil
}
