// pagination оборачивает страницу результатов в конверт
// с количеством страниц и навигационными ссылками.
package pagination

import (
	"math"
	"net/url"
	"strconv"
)

// Links — навигационные ссылки; Prev/Next присутствуют только при наличии страницы.
type Links struct {
	First string `json:"first"`
	Last  string `json:"last"`
	Prev  string `json:"prev,omitempty"`
	Next  string `json:"next,omitempty"`
}

// Envelope — конверт страницы результатов.
type Envelope[T any] struct {
	Links      Links `json:"links"`
	Page       int   `json:"page"`
	Pages      int   `json:"pages"`
	PerPage    int   `json:"per_page"`
	TotalCount int   `json:"total_count"`
	Data       []T   `json:"data"`
}

// Params разбирает page/per_page из query.
// page < 1 или нечисловое значение даёт 1; per_page <= 0 — defaultPerPage;
// per_page > maxPerPage ограничивается maxPerPage;
// page ограничен сверху так, чтобы Offset не переполнялся.
func Params(q url.Values, defaultPerPage, maxPerPage int) (page, perPage int) {
	page, err := strconv.Atoi(q.Get("page"))
	if err != nil || page < 1 {
		page = 1
	}

	perPage, err = strconv.Atoi(q.Get("per_page"))
	if err != nil || perPage <= 0 {
		perPage = defaultPerPage
	}

	if maxPerPage > 0 && perPage > maxPerPage {
		perPage = maxPerPage
	}

	if perPage > 0 && page > math.MaxInt/perPage {
		page = math.MaxInt / perPage
	}

	return page, perPage
}

// Offset возвращает смещение первой записи страницы.
// Результат не бывает отрицательным: при переполнении возвращается math.MaxInt.
func Offset(page, perPage int) int {
	if page < 1 || perPage <= 0 {
		return 0
	}
	if page-1 > math.MaxInt/perPage {
		return math.MaxInt
	}

	return (page - 1) * perPage
}

// Pages возвращает ceil(total/perPage); 0 при пустом результате.
func Pages(total, perPage int) int {
	if total <= 0 || perPage <= 0 {
		return 0
	}

	return (total + perPage - 1) / perPage
}

// New собирает конверт. base — абсолютный URL текущего запроса:
// каждая ссылка совпадает с ним, кроме параметра page.
func New[T any](base *url.URL, page, perPage, total int, data []T) Envelope[T] {
	if data == nil {
		data = []T{}
	}

	pages := Pages(total, perPage)

	links := Links{
		First: pageURL(base, 1),
		Last:  pageURL(base, max(pages, 1)),
	}

	if page > 1 {
		links.Prev = pageURL(base, page-1)
	}

	if page < pages {
		links.Next = pageURL(base, page+1)
	}

	return Envelope[T]{
		Links:      links,
		Page:       page,
		Pages:      pages,
		PerPage:    perPage,
		TotalCount: total,
		Data:       data,
	}
}

func pageURL(base *url.URL, page int) string {
	u := *base
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()
	u.Fragment = ""

	return u.String()
}
