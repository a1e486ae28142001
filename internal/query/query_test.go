package query

import (
	"testing"

	"campdir/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testFields = map[string]string{
	"name":          "name",
	"tuition":       "tuition",
	"averageCost":   "average_cost",
	"housing":       "housing",
	"minimumSkill":  "minimum_skill",
	"created_at":    "created_at",
	"averageRating": "average_rating",
}

func TestParseDefaults(t *testing.T) {
	q, err := Parse(map[string]string{}, testFields)
	require.NoError(t, err)

	assert.Empty(t, q.Filters)
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, DefaultLimit, q.Limit)
}

func TestParseFilters(t *testing.T) {
	tests := []struct {
		name   string
		params map[string]string
		want   Filter
	}{
		{
			name:   "bare key is equality",
			params: map[string]string{"housing": "true"},
			want:   Filter{Column: "housing", Op: OpEq, Values: []string{"true"}},
		},
		{
			name:   "bracket comparison",
			params: map[string]string{"tuition[lte]": "10000"},
			want:   Filter{Column: "tuition", Op: OpLte, Values: []string{"10000"}},
		},
		{
			name:   "renamed column",
			params: map[string]string{"averageCost[gt]": "5000"},
			want:   Filter{Column: "average_cost", Op: OpGt, Values: []string{"5000"}},
		},
		{
			name:   "in splits on commas",
			params: map[string]string{"minimumSkill[in]": "beginner,intermediate"},
			want:   Filter{Column: "minimum_skill", Op: OpIn, Values: []string{"beginner", "intermediate"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := Parse(tt.params, testFields)
			require.NoError(t, err)
			require.Len(t, q.Filters, 1)
			assert.Equal(t, tt.want, q.Filters[0])
		})
	}
}

func TestParseRejections(t *testing.T) {
	tests := []struct {
		name   string
		params map[string]string
	}{
		{"unknown field", map[string]string{"password": "x"}},
		{"unknown operator", map[string]string{"tuition[like]": "1"}},
		{"malformed bracket", map[string]string{"tuition[lte": "1"}},
		{"stray close bracket", map[string]string{"tuition]": "1"}},
		{"unknown select field", map[string]string{"select": "name,password"}},
		{"unknown sort field", map[string]string{"sort": "-password"}},
		{"empty in list", map[string]string{"minimumSkill[in]": ", ,"}},
		{"non-numeric page", map[string]string{"page": "abc"}},
		{"non-numeric limit", map[string]string{"limit": "abc"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.params, testFields)
			require.Error(t, err)
			assert.Equal(t, 400, models.StatusOf(err))
		})
	}
}

func TestParseReservedKeys(t *testing.T) {
	q, err := Parse(map[string]string{
		"select": "name,tuition",
		"sort":   "-averageCost,name",
		"page":   "3",
		"limit":  "10",
	}, testFields)
	require.NoError(t, err)

	assert.Equal(t, []string{"name", "tuition"}, q.Select)
	assert.Equal(t, []SortField{
		{Column: "average_cost", Desc: true},
		{Column: "name", Desc: false},
	}, q.Sort)
	assert.Equal(t, 3, q.Page)
	assert.Equal(t, 10, q.Limit)
	assert.Equal(t, 20, q.Offset())
}

func TestParseClamping(t *testing.T) {
	q, err := Parse(map[string]string{"page": "0", "limit": "1000"}, testFields)
	require.NoError(t, err)
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, MaxLimit, q.Limit)

	q, err = Parse(map[string]string{"limit": "-5"}, testFields)
	require.NoError(t, err)
	assert.Equal(t, DefaultLimit, q.Limit)
}

func TestPageInfo(t *testing.T) {
	tests := []struct {
		name     string
		page     int
		limit    int
		total    int64
		wantNext *Page
		wantPrev *Page
	}{
		{"single page", 1, 25, 10, nil, nil},
		{"first of many", 1, 25, 60, &Page{Page: 2, Limit: 25}, nil},
		{"middle page", 2, 25, 60, &Page{Page: 3, Limit: 25}, &Page{Page: 1, Limit: 25}},
		{"last page", 3, 25, 60, nil, &Page{Page: 2, Limit: 25}},
		{"exact boundary", 2, 25, 50, nil, &Page{Page: 1, Limit: 25}},
		{"empty result beyond end", 4, 25, 60, nil, &Page{Page: 3, Limit: 25}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := &ListQuery{Page: tt.page, Limit: tt.limit}
			p := q.PageInfo(tt.total)
			assert.Equal(t, tt.wantNext, p.Next)
			assert.Equal(t, tt.wantPrev, p.Prev)
		})
	}
}

func TestBindValue(t *testing.T) {
	assert.Equal(t, int64(10000), bindValue("10000"))
	assert.Equal(t, 9.5, bindValue("9.5"))
	assert.Equal(t, true, bindValue("true"))
	assert.Equal(t, "beginner", bindValue("beginner"))
}
