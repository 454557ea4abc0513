package pagination

import (
	"math"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

func mustURL(t *testing.T, s string) *url.URL {
	t.Helper()
	u, err := url.Parse(s)
	require.NoError(t, err)
	return u
}

func TestPages(t *testing.T) {
	t.Parallel()

	require.Equal(t, 0, Pages(0, 10))
	require.Equal(t, 1, Pages(1, 10))
	require.Equal(t, 1, Pages(10, 10))
	require.Equal(t, 2, Pages(11, 10))
	require.Equal(t, 3, Pages(21, 10))
}

func TestNew_MiddlePage_AllLinks(t *testing.T) {
	t.Parallel()

	base := mustURL(t, "http://localhost:8080/recipes?q=soup&per_page=2&page=2")
	env := New(base, 2, 2, 5, []int{3, 4})

	require.Equal(t, 2, env.Page)
	require.Equal(t, 3, env.Pages)
	require.Equal(t, 2, env.PerPage)
	require.Equal(t, 5, env.TotalCount)
	require.Equal(t, []int{3, 4}, env.Data)

	require.Equal(t, "http://localhost:8080/recipes?page=1&per_page=2&q=soup", env.Links.First)
	require.Equal(t, "http://localhost:8080/recipes?page=3&per_page=2&q=soup", env.Links.Last)
	require.Equal(t, "http://localhost:8080/recipes?page=1&per_page=2&q=soup", env.Links.Prev)
	require.Equal(t, "http://localhost:8080/recipes?page=3&per_page=2&q=soup", env.Links.Next)
}

func TestNew_FirstPage_NoPrev(t *testing.T) {
	t.Parallel()

	env := New(mustURL(t, "http://h/recipes"), 1, 20, 45, []string{"a"})
	require.Equal(t, 3, env.Pages)
	require.Empty(t, env.Links.Prev)
	require.Equal(t, "http://h/recipes?page=2", env.Links.Next)
	require.Equal(t, "http://h/recipes?page=3", env.Links.Last)
}

func TestNew_LastPage_NoNext(t *testing.T) {
	t.Parallel()

	env := New(mustURL(t, "http://h/recipes"), 3, 20, 45, []string{"a"})
	require.Equal(t, 3, env.Pages)
	require.Equal(t, "http://h/recipes?page=2", env.Links.Prev)
	require.Empty(t, env.Links.Next)
}

func TestNew_EmptyResult(t *testing.T) {
	t.Parallel()

	env := New[string](mustURL(t, "http://h/users/jack/recipes?visibility=all"), 1, 10, 0, nil)
	require.Equal(t, 0, env.Pages)
	require.Equal(t, []string{}, env.Data)
	require.Empty(t, env.Links.Prev)
	require.Empty(t, env.Links.Next)
	require.Equal(t, "http://h/users/jack/recipes?page=1&visibility=all", env.Links.First)
	require.Equal(t, env.Links.First, env.Links.Last)
}

func TestNew_PageBeyondRange(t *testing.T) {
	t.Parallel()

	env := New[int](mustURL(t, "http://h/recipes"), 9, 10, 25, nil)
	require.Equal(t, "http://h/recipes?page=8", env.Links.Prev)
	require.Empty(t, env.Links.Next)
}

func TestNew_DoesNotMutateBase(t *testing.T) {
	t.Parallel()

	base := mustURL(t, "http://h/recipes?page=4&q=x")
	_ = New[int](base, 4, 10, 100, nil)
	require.Equal(t, "page=4&q=x", base.RawQuery)
}

func TestParams(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		query       string
		wantPage    int
		wantPerPage int
	}{
		{name: "defaults", query: "", wantPage: 1, wantPerPage: 20},
		{name: "explicit", query: "page=3&per_page=5", wantPage: 3, wantPerPage: 5},
		{name: "zero_page", query: "page=0", wantPage: 1, wantPerPage: 20},
		{name: "negative_page", query: "page=-2", wantPage: 1, wantPerPage: 20},
		{name: "garbage", query: "page=abc&per_page=xyz", wantPage: 1, wantPerPage: 20},
		{name: "zero_per_page", query: "per_page=0", wantPage: 1, wantPerPage: 20},
		{name: "capped", query: "per_page=1000", wantPage: 1, wantPerPage: 100},
		{name: "huge_page", query: "page=9223372036854775807&per_page=20", wantPage: math.MaxInt / 20, wantPerPage: 20},
		{name: "page_out_of_int_range", query: "page=99999999999999999999", wantPage: 1, wantPerPage: 20},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			q, err := url.ParseQuery(tt.query)
			require.NoError(t, err)

			page, perPage := Params(q, 20, 100)
			require.Equal(t, tt.wantPage, page)
			require.Equal(t, tt.wantPerPage, perPage)
			require.GreaterOrEqual(t, Offset(page, perPage), 0)
		})
	}
}

func TestOffset(t *testing.T) {
	t.Parallel()

	require.Equal(t, 0, Offset(1, 20))
	require.Equal(t, 40, Offset(3, 20))
	require.Equal(t, 0, Offset(0, 20))
	require.Equal(t, math.MaxInt, Offset(math.MaxInt, 20))
}
