package listquery

import (
	"reflect"
	"testing"
	"time"
)

type record struct {
	ID        int64
	CaseTitle string
	Status    string
	Filed     time.Time // zero = unparsable upstream value
	Parties   []string
	Witnesses []string
}

var bindings = Bindings[record]{
	Search: []func(record) Value{
		func(r record) Value { return Text(r.CaseTitle) },
		func(r record) Value { return Texts(r.Parties...) },
		func(r record) Value { return Names(r.Witnesses...) },
	},
	Status: func(r record) string { return r.Status },
	Title:  func(r record) string { return r.CaseTitle },
	Filed:  func(r record) time.Time { return r.Filed },
	ID:     func(r record) int64 { return r.ID },
}

var testNow = time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 8, 0, 0, 0, time.UTC)
}

func sample() []record {
	return []record{
		{ID: 1, CaseTitle: "Bravo", Status: "for_mediation", Filed: day(2026, 3, 15), Parties: []string{"Juan Dela Cruz", "Pedro Santos"}},
		{ID: 2, CaseTitle: "Alpha", Status: "Mediation Ongoing", Filed: day(2026, 3, 10), Parties: []string{"Maria Reyes"}},
		{ID: 3, CaseTitle: "Charlie", Status: "settled", Filed: day(2026, 2, 1), Witnesses: []string{"Ana Lim"}},
		{ID: 4, CaseTitle: "Delta", Status: "withdrawn", Filed: time.Time{}, Parties: []string{"Jose Cruz"}},
	}
}

func ids(items []record) []int64 {
	out := make([]int64, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func TestApply_SearchCaseInsensitive(t *testing.T) {
	for _, q := range []string{"juan", "JUAN", "Juan"} {
		got := Apply(sample(), Options{Query: q}, bindings, testNow)
		if len(got) != 1 || got[0].ID != 1 {
			t.Fatalf("query %q: expected [1], got %v", q, ids(got))
		}
	}
}

func TestApply_WhitespaceQuerySearchesLiterally(t *testing.T) {
	in := []record{
		{ID: 1, CaseTitle: "Boundary dispute"},
		{ID: 2, CaseTitle: "Trespass"},
	}
	got := Apply(in, Options{Query: " "}, bindings, testNow)
	if len(got) != 1 || got[0].ID != 1 {
		t.Fatalf("a space query must match only titles containing a space, got %v", ids(got))
	}
}

func TestApply_SearchNamedListField(t *testing.T) {
	got := Apply(sample(), Options{Query: "ana lim"}, bindings, testNow)
	if len(got) != 1 || got[0].ID != 3 {
		t.Fatalf("expected witness match [3], got %v", ids(got))
	}
}

func TestApply_StatusAliases(t *testing.T) {
	got := Apply(sample(), Options{Status: "mediation", Sort: SortDateAsc}, bindings, testNow)
	if !reflect.DeepEqual(ids(got), []int64{2, 1}) {
		t.Fatalf("mediation alias should match for_mediation and Mediation Ongoing, got %v", ids(got))
	}
	for _, r := range got {
		if r.Status == "settled" {
			t.Fatalf("settled must not match mediation filter")
		}
	}

	got = Apply(sample(), Options{Status: "settled"}, bindings, testNow)
	if len(got) != 1 || got[0].ID != 3 {
		t.Fatalf("settled is exact-match only, got %v", ids(got))
	}
}

func TestApply_StatusAllIsNoFilter(t *testing.T) {
	got := Apply(sample(), Options{Status: "all"}, bindings, testNow)
	if len(got) != len(sample()) {
		t.Fatalf("status=all must not filter, got %v", ids(got))
	}
}

func TestApply_DateRanges(t *testing.T) {
	cases := []struct {
		dates DateRange
		want  []int64
	}{
		{DatesToday, []int64{1}},
		{DatesWeek, []int64{1, 2}},
		{DatesMonth, []int64{1, 2}},
		{DatesAll, []int64{1, 2, 3, 4}},
	}
	for _, tc := range cases {
		got := Apply(sample(), Options{Dates: tc.dates, Sort: SortDateDesc}, bindings, testNow)
		if !reflect.DeepEqual(ids(got), tc.want) {
			t.Fatalf("dates=%s: expected %v, got %v", tc.dates, tc.want, ids(got))
		}
	}
}

func TestApply_MalformedDateExcludedNotCrashing(t *testing.T) {
	// ID 4 has a zero Filed time (upstream value was unparsable). Any active
	// date range must drop it, and date sorts must rank it oldest.
	for _, r := range []DateRange{DatesToday, DatesWeek, DatesMonth} {
		for _, got := range Apply(sample(), Options{Dates: r}, bindings, testNow) {
			if got.ID == 4 {
				t.Fatalf("dates=%s: zero-date record must be excluded", r)
			}
		}
	}

	got := Apply(sample(), Options{Sort: SortDateDesc}, bindings, testNow)
	if got[len(got)-1].ID != 4 {
		t.Fatalf("zero date must sort last under date_desc, got %v", ids(got))
	}
	got = Apply(sample(), Options{Sort: SortDateAsc}, bindings, testNow)
	if got[0].ID != 4 {
		t.Fatalf("zero date must sort first under date_asc, got %v", ids(got))
	}
}

func TestApply_SortBranches(t *testing.T) {
	in := []record{
		{ID: 1, CaseTitle: "Bravo", Filed: day(2024, 1, 1)},
		{ID: 2, CaseTitle: "Alpha", Filed: day(2024, 2, 1)},
	}
	cases := []struct {
		sort SortKey
		want []int64
	}{
		{SortDateDesc, []int64{2, 1}},
		{SortDateAsc, []int64{1, 2}},
		{SortTitleAsc, []int64{2, 1}},
		{SortTitleDesc, []int64{1, 2}},
		{"bogus", []int64{2, 1}}, // fallback: id descending
	}
	for _, tc := range cases {
		got := Apply(in, Options{Sort: tc.sort}, Bindings[record]{
			Title: func(r record) string { return r.CaseTitle },
			Filed: func(r record) time.Time { return r.Filed },
			ID:    func(r record) int64 { return r.ID },
		}, testNow)
		if !reflect.DeepEqual(ids(got), tc.want) {
			t.Fatalf("sort=%s: expected %v, got %v", tc.sort, tc.want, ids(got))
		}
	}
}

func TestApply_StatusSortAscending(t *testing.T) {
	got := Apply(sample(), Options{Sort: SortStatus}, bindings, testNow)
	for i := 1; i < len(got); i++ {
		if got[i-1].Status > got[i].Status {
			t.Fatalf("status sort not ascending: %v", ids(got))
		}
	}
}

func TestApply_Idempotent(t *testing.T) {
	opts := Options{Query: "cruz", Status: "all", Dates: DatesMonth, Sort: SortTitleAsc}
	once := Apply(sample(), opts, bindings, testNow)
	twice := Apply(once, opts, bindings, testNow)
	if !reflect.DeepEqual(ids(once), ids(twice)) {
		t.Fatalf("reapplying identical options changed the result: %v vs %v", ids(once), ids(twice))
	}
}

func TestApply_NeverMutatesInput(t *testing.T) {
	in := sample()
	before := ids(in)
	_ = Apply(in, Options{Sort: SortTitleAsc}, bindings, testNow)
	if !reflect.DeepEqual(ids(in), before) {
		t.Fatalf("input order changed: %v", ids(in))
	}
}

func TestApply_FilterMonotonic(t *testing.T) {
	in := sample()
	got := Apply(in, Options{Query: "a", Status: "mediation", Dates: DatesMonth}, bindings, testNow)
	if len(got) > len(in) {
		t.Fatalf("filter stages added records: %d > %d", len(got), len(in))
	}
	seen := map[int64]bool{}
	for _, r := range in {
		seen[r.ID] = true
	}
	for _, r := range got {
		if !seen[r.ID] {
			t.Fatalf("output contains record %d not present in input", r.ID)
		}
	}
}

func TestApply_TieBrokenByIDAscending(t *testing.T) {
	same := day(2026, 3, 1)
	in := []record{
		{ID: 3, CaseTitle: "Same", Filed: same},
		{ID: 1, CaseTitle: "Same", Filed: same},
		{ID: 2, CaseTitle: "Same", Filed: same},
	}
	got := Apply(in, Options{Sort: SortDateDesc}, bindings, testNow)
	if !reflect.DeepEqual(ids(got), []int64{1, 2, 3}) {
		t.Fatalf("equal keys must fall back to id ascending, got %v", ids(got))
	}
}
