package zendesk

import "github.com/mfenderov/zendesk-rag/pkg/models"

// Cursor is an opaque continuation reference to a page of articles.
// The API hands these out as absolute next_page URLs.
type Cursor struct {
	url string
}

// NoCursor starts pagination from the first page.
var NoCursor = Cursor{}

// NextPage wraps a next_page URL returned by the API.
// An empty URL yields NoCursor.
func NextPage(pageURL string) Cursor {
	return Cursor{url: pageURL}
}

// IsZero reports whether c is NoCursor.
func (c Cursor) IsZero() bool {
	return c.url == ""
}

// URL returns the page URL the cursor points at.
func (c Cursor) URL() string {
	return c.url
}

func (c Cursor) String() string {
	if c.IsZero() {
		return "<first page>"
	}
	return c.url
}

// Page is one page of the articles listing.
type Page struct {
	Articles []models.Article
	Next     Cursor // NoCursor on the last page
}

// Last reports whether no further pages remain.
func (p *Page) Last() bool {
	return p.Next.IsZero()
}
