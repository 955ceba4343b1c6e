// Package listquery filters and sorts in-memory case lists for the admin UI.
// It is pure: no I/O, no clock reads (the caller supplies "now"), and the
// input slice is never mutated. Malformed or missing fields degrade to
// "filtered out" or a zero sort key; nothing in here returns an error.
package listquery

import (
	"sort"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

type DateRange string

const (
	DatesAll   DateRange = "all"
	DatesToday DateRange = "today"
	DatesWeek  DateRange = "week"
	DatesMonth DateRange = "month"
)

type SortKey string

const (
	SortDateDesc  SortKey = "date_desc"
	SortDateAsc   SortKey = "date_asc"
	SortTitleAsc  SortKey = "title_asc"
	SortTitleDesc SortKey = "title_desc"
	SortStatus    SortKey = "status"
)

// Options mirrors the filter bar of the case list screens. Empty or "all"
// disables the corresponding stage; an unrecognized SortKey falls back to
// newest-created-first (id descending).
type Options struct {
	Query  string
	Status string
	Dates  DateRange
	Sort   SortKey
}

// Value is what a search accessor yields for one record field: zero or more
// candidate strings. A record matches the query when any candidate contains
// it case-insensitively. Fields whose shape cannot be searched (absent,
// numeric, etc.) bind to None and never match.
type Value struct {
	candidates []string
}

func Text(s string) Value {
	return Value{candidates: []string{s}}
}

func Texts(ss ...string) Value {
	return Value{candidates: ss}
}

// Names is for list fields whose elements carry a display name
// (e.g. witnesses); the names are the searchable candidates.
func Names(names ...string) Value {
	return Value{candidates: names}
}

func None() Value {
	return Value{}
}

func (v Value) contains(loweredQuery string) bool {
	for _, c := range v.candidates {
		if strings.Contains(strings.ToLower(c), loweredQuery) {
			return true
		}
	}
	return false
}

// Bindings supplies typed accessors for one record type. Nil accessors
// behave as missing fields: empty string, zero time, or id 0.
type Bindings[T any] struct {
	Search []func(T) Value
	Status func(T) string
	Title  func(T) string
	Filed  func(T) time.Time // zero time means missing/unparsable
	ID     func(T) int64
}

func (b Bindings[T]) status(it T) string {
	if b.Status == nil {
		return ""
	}
	return b.Status(it)
}

func (b Bindings[T]) title(it T) string {
	if b.Title == nil {
		return ""
	}
	return b.Title(it)
}

func (b Bindings[T]) filed(it T) time.Time {
	if b.Filed == nil {
		return time.Time{}
	}
	return b.Filed(it)
}

func (b Bindings[T]) id(it T) int64 {
	if b.ID == nil {
		return 0
	}
	return b.ID(it)
}

// Apply runs the pipeline: search, status filter, date-range filter, sort.
// Each stage only ever narrows the set; the sort is stable with an explicit
// id-ascending tiebreaker so output is deterministic for equal keys.
func Apply[T any](items []T, opts Options, b Bindings[T], now time.Time) []T {
	out := make([]T, 0, len(items))
	out = append(out, items...)

	// The query is matched literally, untrimmed: whitespace is a valid
	// substring to search for.
	if q := strings.ToLower(opts.Query); q != "" {
		out = keep(out, func(it T) bool {
			for _, field := range b.Search {
				if field == nil {
					continue
				}
				if field(it).contains(q) {
					return true
				}
			}
			return false
		})
	}

	if f := strings.ToLower(strings.TrimSpace(opts.Status)); f != "" && f != "all" {
		out = keep(out, func(it T) bool {
			return statusMatches(b.status(it), f)
		})
	}

	if cutoff, ok := dateCutoff(opts.Dates, now); ok {
		out = keep(out, func(it T) bool {
			filed := b.filed(it)
			return !filed.IsZero() && !filed.Before(cutoff)
		})
	}

	cmp := comparator(opts.Sort, b)
	sort.SliceStable(out, func(i, j int) bool {
		if c := cmp(out[i], out[j]); c != 0 {
			return c < 0
		}
		return b.id(out[i]) < b.id(out[j])
	})
	return out
}

func keep[T any](items []T, pred func(T) bool) []T {
	out := items[:0]
	for _, it := range items {
		if pred(it) {
			out = append(out, it)
		}
	}
	return out
}

// statusMatches compensates for the backend's inconsistently suffixed status
// vocabulary ("for_mediation" vs free-text "Mediation Ongoing"). The alias
// table is intentionally fuzzy; callers rely on it matching both forms.
func statusMatches(status, filter string) bool {
	s := strings.ToLower(status)
	switch filter {
	case "mediation":
		return strings.Contains(s, "mediation") || s == "for_mediation"
	case "conciliation":
		return strings.Contains(s, "conciliation") || s == "for_conciliation"
	case "arbitration":
		return strings.Contains(s, "arbitration") || s == "for_arbitration"
	default:
		return s == filter
	}
}

func dateCutoff(r DateRange, now time.Time) (time.Time, bool) {
	switch r {
	case DatesToday:
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()), true
	case DatesWeek:
		return now.AddDate(0, 0, -7), true
	case DatesMonth:
		return now.AddDate(0, -1, 0), true
	default:
		return time.Time{}, false
	}
}

func comparator[T any](key SortKey, b Bindings[T]) func(a, z T) int {
	switch key {
	case SortDateDesc:
		return func(a, z T) int { return compareTime(b.filed(z), b.filed(a)) }
	case SortDateAsc:
		return func(a, z T) int { return compareTime(b.filed(a), b.filed(z)) }
	case SortTitleAsc:
		col := newTitleCollator()
		return func(a, z T) int { return col.CompareString(b.title(a), b.title(z)) }
	case SortTitleDesc:
		col := newTitleCollator()
		return func(a, z T) int { return col.CompareString(b.title(z), b.title(a)) }
	case SortStatus:
		return func(a, z T) int { return strings.Compare(b.status(a), b.status(z)) }
	default:
		return func(a, z T) int { return compareInt64(b.id(z), b.id(a)) }
	}
}

func newTitleCollator() *collate.Collator {
	return collate.New(language.English, collate.IgnoreCase)
}

func compareTime(a, z time.Time) int {
	switch {
	case a.Before(z):
		return -1
	case a.After(z):
		return 1
	default:
		return 0
	}
}

func compareInt64(a, z int64) int {
	switch {
	case a < z:
		return -1
	case a > z:
		return 1
	default:
		return 0
	}
}
