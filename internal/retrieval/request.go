package retrieval

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/MikeSquared-Agency/voxarchive/internal/dialogue"
)

const (
	DefaultStandardLimit = 50
	DefaultSceneLimit    = 10
	MaxLimit             = 500
)

// Request is one retrieval call. Zero values mean the field was not supplied.
type Request struct {
	Page       int
	Limit      int
	Search     string
	Subtype    string // comma separated selections
	City       string
	Emotion    string
	QuestGroup string
	Context    string
	Character  string
}

// ParseRequest reads a Request from query parameters. Non-numeric page and limit
// values are treated as absent and later replaced by defaults.
func ParseRequest(q url.Values) Request {
	return Request{
		Page:       atoi(q.Get("page")),
		Limit:      atoi(q.Get("limit")),
		Search:     q.Get("search"),
		Subtype:    q.Get("subtype"),
		City:       q.Get("city"),
		Emotion:    q.Get("emotion"),
		QuestGroup: q.Get("questGroup"),
		Context:    q.Get("context"),
		Character:  q.Get("character"),
	}
}

func atoi(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

// Key is a canonical encoding of the request, stable across parameter order.
// Call it on a normalized request.
func (r Request) Key() string {
	q := url.Values{}
	q.Set("page", strconv.Itoa(r.Page))
	q.Set("limit", strconv.Itoa(r.Limit))
	for _, f := range facetOrder {
		if v := r.facet(f); v != "" {
			q.Set(f.String(), v)
		}
	}
	return q.Encode()
}

// selections splits the subtype facet, dropping blanks.
func selections(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// paging resolves page and limit. Missing values take the mode default; values
// below one are raised to one. Page is capped so that the offset (page-1)*limit
// fits in an int; any page that high is past the end of the corpus anyway.
func paging(req Request, mode dialogue.Mode) (page, limit int) {
	page = req.Page
	if page < 1 {
		page = 1
	}

	limit = req.Limit
	switch {
	case limit == 0 && mode == dialogue.ModeScene:
		limit = DefaultSceneLimit
	case limit == 0:
		limit = DefaultStandardLimit
	case limit < 1:
		limit = 1
	case limit > MaxLimit:
		limit = MaxLimit
	}

	if maxPage := math.MaxInt / limit; page > maxPage {
		page = maxPage
	}
	return page, limit
}

type Pagination struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Pages int `json:"pages"`
}

// Page is one page of retrieval results.
type Page struct {
	Data       []dialogue.Record `json:"data"`
	Pagination Pagination        `json:"pagination"`

	Mode  dialogue.Mode `json:"-"`
	Scene ScenePath     `json:"-"`
}

func assemble(records []dialogue.Record, total, page, limit int) *Page {
	if records == nil {
		records = []dialogue.Record{}
	}
	pages := 0
	if total > 0 {
		pages = (total + limit - 1) / limit
	}
	return &Page{
		Data: records,
		Pagination: Pagination{
			Total: total,
			Page:  page,
			Limit: limit,
			Pages: pages,
		},
	}
}
