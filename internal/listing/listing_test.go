package listing

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	id     int
	owner  string
	course string
	topics []string
	score  float64
	at     time.Time
}

func (r row) Owner() string        { return r.owner }
func (r row) Course() string       { return r.course }
func (r row) TopicList() []string  { return r.topics }
func (r row) Timestamp() time.Time { return r.at }

func ids(rows []row) []int {
	out := make([]int, len(rows))
	for i, r := range rows {
		out[i] = r.id
	}
	return out
}

var sortKeys = map[string]Key[row]{
	"score":  By("score", func(r row) float64 { return r.score }),
	"course": By("course", func(r row) string { return r.course }),
}

func sampleRows() []row {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	return []row{
		{id: 1, owner: "a", course: "Matematik", topics: []string{"Olasılık"}, score: 12, at: base},
		{id: 2, owner: "b", course: "Türkçe", score: 15, at: base.Add(24 * time.Hour)},
		{id: 3, owner: "a", course: "Türkçe", topics: []string{"Paragraf"}, score: 9, at: base.Add(48 * time.Hour)},
		{id: 4, owner: "a", course: "Matematik", score: 12, at: time.Time{}},
		{id: 5, owner: "c", course: "Fen Bilgisi", score: 18, at: base.Add(72 * time.Hour)},
	}
}

func TestFilterByScope(t *testing.T) {
	rows := sampleRows()
	assert.Equal(t, []int{1, 3, 4}, ids(FilterByScope(rows, ScopeSelf, "a")))
	assert.Equal(t, []int{1, 2, 3, 4, 5}, ids(FilterByScope(rows, ScopeSchool, "a")))
}

func TestFilterByCourse(t *testing.T) {
	rows := sampleRows()
	assert.Equal(t, []int{2, 3}, ids(FilterByCourse(rows, "Türkçe")))
	assert.Equal(t, []int{1, 2, 3, 4, 5}, ids(FilterByCourse(rows, AllCourses)))
	assert.Empty(t, FilterByCourse(rows, "türkçe"))
}

func TestFilterByTopicAndSince(t *testing.T) {
	rows := sampleRows()
	assert.Equal(t, []int{1}, ids(FilterByTopic(rows, "Olasılık")))
	assert.Len(t, FilterByTopic(rows, "all"), 5)

	cutoff := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, []int{2, 3, 5}, ids(Since(rows, cutoff)))
}

func TestParseScope(t *testing.T) {
	s, err := ParseScope("")
	require.NoError(t, err)
	assert.Equal(t, ScopeSelf, s)

	s, err = ParseScope("school")
	require.NoError(t, err)
	assert.Equal(t, ScopeSchool, s)

	_, err = ParseScope("class")
	assert.Error(t, err)
}

func TestSortByIsStable(t *testing.T) {
	rows := sampleRows()

	asc := SortBy(rows, sortKeys["score"], Ascending)
	assert.Equal(t, []int{3, 1, 4, 2, 5}, ids(asc))

	desc := SortBy(rows, sortKeys["score"], Descending)
	assert.Equal(t, []int{5, 2, 1, 4, 3}, ids(desc))

	// input untouched
	assert.Equal(t, []int{1, 2, 3, 4, 5}, ids(rows))
}

func TestSortDescendingReversesWithoutTies(t *testing.T) {
	rows := []row{{id: 1, score: 3}, {id: 2, score: 1}, {id: 3, score: 7}, {id: 4, score: 5}}

	asc := SortBy(rows, sortKeys["score"], Ascending)
	desc := SortBy(asc, sortKeys["score"], Descending)

	reversed := make([]int, 0, len(asc))
	for i := len(asc) - 1; i >= 0; i-- {
		reversed = append(reversed, asc[i].id)
	}
	assert.Equal(t, reversed, ids(desc))
}

func TestSortStateRequest(t *testing.T) {
	var s SortState

	s = s.Request("score")
	assert.Equal(t, SortState{Key: "score", Direction: Ascending}, s)

	s = s.Request("score")
	assert.Equal(t, Descending, s.Direction)

	s = s.Request("score")
	assert.Equal(t, Ascending, s.Direction)

	s = s.Request("score").Request("course")
	assert.Equal(t, SortState{Key: "course", Direction: Ascending}, s)
}

func TestApplyUnknownKey(t *testing.T) {
	_, err := Apply(sampleRows(), SortState{Key: "nope"}, sortKeys)
	assert.Error(t, err)

	out, err := Apply(sampleRows(), SortState{}, sortKeys)
	require.NoError(t, err)
	assert.Len(t, out, 5)
}

func TestPaginate(t *testing.T) {
	rows := sampleRows()

	assert.Equal(t, []int{1, 2}, ids(Paginate(rows, 2, 1)))
	assert.Equal(t, []int{5}, ids(Paginate(rows, 2, 3)))
	assert.Empty(t, Paginate(rows, 2, 4))
	assert.Equal(t, []int{1, 2}, ids(Paginate(rows, 2, 0)))
	assert.Len(t, Paginate(rows, All, 3), 5)

	assert.Equal(t, 3, TotalPages(5, 2))
	assert.Equal(t, 1, TotalPages(5, All))
	assert.Equal(t, 1, TotalPages(0, 10))
}

func TestPaginateHugePageNumbers(t *testing.T) {
	rows := sampleRows()

	assert.Empty(t, Paginate(rows, 3, math.MaxInt64/2+2))
	assert.Empty(t, Paginate(rows, 3, math.MaxInt))
	assert.Empty(t, Paginate(rows, PageSize(math.MaxInt64), 2))
	assert.Len(t, Paginate(rows, PageSize(math.MaxInt64), 1), 5)
	assert.Empty(t, Paginate([]row{}, 3, 1))

	assert.Equal(t, 1, TotalPages(5, PageSize(math.MaxInt64)))
	assert.Equal(t, 2, TotalPages(math.MaxInt, PageSize(math.MaxInt64/2+1)))
}

func TestPaginateCoversEverythingOnce(t *testing.T) {
	rows := make([]row, 0, 23)
	for i := 0; i < 23; i++ {
		rows = append(rows, row{id: i, score: float64(i % 4)})
	}
	sorted := SortBy(rows, sortKeys["score"], Ascending)

	for size := 1; size <= 25; size++ {
		var joined []row
		for page := 1; page <= TotalPages(len(sorted), PageSize(size)); page++ {
			joined = append(joined, Paginate(sorted, PageSize(size), page)...)
		}
		assert.Equal(t, ids(sorted), ids(joined), "page size %d", size)
	}
}

func TestParsePageSize(t *testing.T) {
	size, err := ParsePageSize("", DefaultPageSize)
	require.NoError(t, err)
	assert.Equal(t, DefaultPageSize, size)

	size, err = ParsePageSize("all", DefaultPageSize)
	require.NoError(t, err)
	assert.Equal(t, All, size)
	assert.Equal(t, "all", size.String())

	size, err = ParsePageSize("50", DefaultPageSize)
	require.NoError(t, err)
	assert.Equal(t, PageSize(50), size)

	for _, bad := range []string{"0", "-5", "ten"} {
		_, err = ParsePageSize(bad, DefaultPageSize)
		assert.Error(t, err, bad)
	}
}

func TestViewResetsPage(t *testing.T) {
	v := NewView(10).Goto(4)
	assert.Equal(t, 4, v.Page)

	sorted := v.SortOn("score")
	assert.Equal(t, 1, sorted.Page)
	assert.Equal(t, "score", sorted.Sort.Key)

	resized := sorted.Goto(3).Resize(All)
	assert.Equal(t, 1, resized.Page)
	assert.Equal(t, All, resized.Size)

	assert.Equal(t, 1, v.Goto(-2).Page)
}

func TestRender(t *testing.T) {
	view := NewView(2).SortOn("course").Goto(2)

	page, err := Render(sampleRows(), view, sortKeys)
	require.NoError(t, err)
	assert.Equal(t, 5, page.Total)
	assert.Equal(t, 3, page.TotalPages)
	// Fen Bilgisi, Matematik(1), Matematik(4), Türkçe(2), Türkçe(3)
	assert.Equal(t, []int{4, 2}, ids(page.Items))

	_, err = Render(sampleRows(), View{Sort: SortState{Key: "bad"}}, sortKeys)
	assert.True(t, err != nil && strings.Contains(err.Error(), "bad"))
}
