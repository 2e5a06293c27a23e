package domain

import "strconv"

// StarFilter narrows requested records to a single star rating.
// The zero value means no filter.
type StarFilter int

const NoFilter StarFilter = 0

func (f StarFilter) Set() bool { return f != NoFilter }

// Valid reports whether f is either unset or a rating in 1..5.
func (f StarFilter) Valid() bool { return f >= 0 && f <= 5 }

// String renders the filter for cache keys and logs ("all" when unset).
func (f StarFilter) String() string {
	if !f.Set() {
		return "all"
	}
	return strconv.Itoa(int(f))
}

var starWords = [...]string{"", "one", "two", "three", "four", "five"}

// QueryValue is the filterByStar parameter the site expects, e.g. "five_star".
func (f StarFilter) QueryValue() string {
	if !f.Set() || !f.Valid() {
		return ""
	}
	return starWords[f] + "_star"
}
