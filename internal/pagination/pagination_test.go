package pagination

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  Page
	}{
		{name: "defaults", query: "", want: Page{Page: 1, Limit: 20}},
		{name: "explicit", query: "page=3&limit=50", want: Page{Page: 3, Limit: 50}},
		{name: "limit capped", query: "limit=1000", want: Page{Page: 1, Limit: 100}},
		{name: "garbage ignored", query: "page=abc&limit=-4", want: Page{Page: 1, Limit: 20}},
		{name: "zero page ignored", query: "page=0", want: Page{Page: 1, Limit: 20}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := url.ParseQuery(tt.query)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, Parse(q))
		})
	}
}

func TestMeta(t *testing.T) {
	assert.Equal(t, Meta{Page: 1, Limit: 20, Total: 0, Pages: 0}, NewMeta(Page{Page: 1, Limit: 20}, 0))
	assert.Equal(t, Meta{Page: 2, Limit: 20, Total: 41, Pages: 3}, NewMeta(Page{Page: 2, Limit: 20}, 41))
	assert.Equal(t, Meta{Page: 1, Limit: 10, Total: 10, Pages: 1}, NewMeta(Page{Page: 1, Limit: 10}, 10))
	assert.Equal(t, 20, Page{Page: 2, Limit: 20}.Offset())
}
