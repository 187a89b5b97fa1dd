package date

import (
	"iter"
	"slices"
)

// Series stores a chronological sequence of values, one per day.
// Days are unique and kept sorted; appending an existing day overwrites it.
//
// The zero value is an empty, ready-to-use series.
type Series[T any] struct {
	days   []Date
	values []T
}

// Len returns the number of points in the series.
func (s *Series[T]) Len() int { return len(s.days) }

// Append records a value for a day, overwriting any previous value there.
func (s *Series[T]) Append(on Date, v T) *Series[T] {
	i, found := s.search(on)
	if found {
		s.values[i] = v
		return s
	}
	s.days = slices.Insert(s.days, i, on)
	s.values = slices.Insert(s.values, i, v)
	return s
}

// Get returns the value recorded exactly on that day.
func (s *Series[T]) Get(on Date) (T, bool) {
	if i, found := s.search(on); found {
		return s.values[i], true
	}
	var zero T
	return zero, false
}

// AsOf returns the value on the given day, or the most recent value before
// it. It never interpolates and never looks forward.
func (s *Series[T]) AsOf(on Date) (T, bool) {
	i, found := s.search(on)
	if found {
		return s.values[i], true
	}
	if i == 0 {
		var zero T
		return zero, false // nothing on or before that day
	}
	return s.values[i-1], true
}

// Latest returns the most recent point of the series.
func (s *Series[T]) Latest() (Date, T, bool) {
	if len(s.days) == 0 {
		var zero T
		return Date{}, zero, false
	}
	last := len(s.days) - 1
	return s.days[last], s.values[last], true
}

// First returns the earliest point of the series.
func (s *Series[T]) First() (Date, T, bool) {
	if len(s.days) == 0 {
		var zero T
		return Date{}, zero, false
	}
	return s.days[0], s.values[0], true
}

// All iterates every (day, value) pair in chronological order.
func (s *Series[T]) All() iter.Seq2[Date, T] {
	return func(yield func(Date, T) bool) {
		for i, on := range s.days {
			if !yield(on, s.values[i]) {
				return
			}
		}
	}
}

func (s *Series[T]) search(on Date) (int, bool) {
	return slices.BinarySearchFunc(s.days, on, Date.Compare)
}
