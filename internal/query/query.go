// Package query implements the generic list-endpoint contract: it turns a
// request query string into a filtered, field-selected, sorted and paginated
// GORM query plus pagination metadata.
//
// Reserved keys select/sort/page/limit control shaping; every other key is a
// filter. Comparison operators use bracket syntax (tuition[gte]=1000); bare
// keys are equality filters. Translation is a typed walk against a
// per-resource field allow-list, never text rewriting of user input, and
// unrecognized fields or operators fail with a 400-class error.
package query

import (
	"fmt"
	"strconv"
	"strings"

	"campdir/internal/models"

	"gorm.io/gorm"
)

// Op is a comparison operator recognized in filter keys.
type Op string

const (
	OpEq  Op = "eq"
	OpLt  Op = "lt"
	OpLte Op = "lte"
	OpGt  Op = "gt"
	OpGte Op = "gte"
	OpIn  Op = "in"
)

var sqlOps = map[Op]string{
	OpEq:  "=",
	OpLt:  "<",
	OpLte: "<=",
	OpGt:  ">",
	OpGte: ">=",
}

const (
	DefaultLimit = 25
	MaxLimit     = 100
)

var reserved = map[string]bool{
	"select": true,
	"sort":   true,
	"page":   true,
	"limit":  true,
}

// Filter is one translated comparison on a document field.
type Filter struct {
	Column string
	Op     Op
	Values []string
}

// SortField is one ordering term, highest priority first.
type SortField struct {
	Column string
	Desc   bool
}

// ListQuery is the parsed form of a list request's query string.
type ListQuery struct {
	Filters []Filter
	Select  []string
	Sort    []SortField
	Page    int
	Limit   int
}

// Page describes one page in the pagination envelope.
type Page struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// Pagination carries next/prev descriptors, present only when such a page exists.
type Pagination struct {
	Next *Page `json:"next,omitempty"`
	Prev *Page `json:"prev,omitempty"`
}

// Parse translates raw query parameters into a ListQuery. allowed maps
// exposed field names to column names; anything outside it (other than the
// reserved keys) is rejected.
func Parse(values map[string]string, allowed map[string]string) (*ListQuery, error) {
	q := &ListQuery{Page: 1, Limit: DefaultLimit}

	for key, value := range values {
		field, op, err := splitFilterKey(key)
		if err != nil {
			return nil, err
		}

		if op == "" && reserved[field] {
			if err := q.applyReserved(field, value, allowed); err != nil {
				return nil, err
			}
			continue
		}

		column, ok := allowed[field]
		if !ok {
			return nil, models.NewValidationError(fmt.Sprintf("Cannot filter on field '%s'", field))
		}
		if op == "" {
			op = OpEq
		}

		f := Filter{Column: column, Op: op}
		if op == OpIn {
			f.Values = splitList(value)
			if len(f.Values) == 0 {
				return nil, models.NewValidationError(fmt.Sprintf("Empty value list for field '%s'", field))
			}
		} else {
			f.Values = []string{value}
		}
		q.Filters = append(q.Filters, f)
	}

	return q, nil
}

// splitFilterKey separates "field[op]" into its parts. A bare key returns an
// empty op. Malformed bracket syntax or an unknown operator is an error.
func splitFilterKey(key string) (string, Op, error) {
	open := strings.IndexByte(key, '[')
	if open < 0 {
		if strings.IndexByte(key, ']') >= 0 {
			return "", "", models.NewValidationError(fmt.Sprintf("Malformed filter '%s'", key))
		}
		return key, "", nil
	}

	if !strings.HasSuffix(key, "]") || open == 0 {
		return "", "", models.NewValidationError(fmt.Sprintf("Malformed filter '%s'", key))
	}

	field := key[:open]
	op := Op(key[open+1 : len(key)-1])
	switch op {
	case OpEq, OpLt, OpLte, OpGt, OpGte, OpIn:
		return field, op, nil
	}
	return "", "", models.NewValidationError(fmt.Sprintf("Unknown filter operator '%s'", string(op)))
}

func (q *ListQuery) applyReserved(key, value string, allowed map[string]string) error {
	switch key {
	case "select":
		for _, field := range splitList(value) {
			column, ok := allowed[field]
			if !ok {
				return models.NewValidationError(fmt.Sprintf("Cannot select field '%s'", field))
			}
			q.Select = append(q.Select, column)
		}
	case "sort":
		for _, field := range splitList(value) {
			desc := strings.HasPrefix(field, "-")
			field = strings.TrimPrefix(field, "-")
			column, ok := allowed[field]
			if !ok {
				return models.NewValidationError(fmt.Sprintf("Cannot sort on field '%s'", field))
			}
			q.Sort = append(q.Sort, SortField{Column: column, Desc: desc})
		}
	case "page":
		page, err := strconv.Atoi(value)
		if err != nil {
			return models.NewValidationError("Invalid page number")
		}
		if page < 1 {
			page = 1
		}
		q.Page = page
	case "limit":
		limit, err := strconv.Atoi(value)
		if err != nil {
			return models.NewValidationError("Invalid limit")
		}
		if limit <= 0 {
			limit = DefaultLimit
		}
		if limit > MaxLimit {
			limit = MaxLimit
		}
		q.Limit = limit
	}
	return nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Filtered applies the filter clauses only. Callers count the filtered set on
// the result before windowing, so pagination boundaries reflect the filters.
func (q *ListQuery) Filtered(db *gorm.DB) *gorm.DB {
	for _, f := range q.Filters {
		if f.Op == OpIn {
			db = db.Where(fmt.Sprintf("%s IN ?", f.Column), bindValues(f.Values))
			continue
		}
		db = db.Where(fmt.Sprintf("%s %s ?", f.Column, sqlOps[f.Op]), bindValue(f.Values[0]))
	}
	return db
}

// Windowed applies projection, ordering and pagination on top of Filtered.
func (q *ListQuery) Windowed(db *gorm.DB) *gorm.DB {
	if len(q.Select) > 0 {
		// Identity column always rides along.
		db = db.Select(append([]string{"id"}, q.Select...))
	}

	if len(q.Sort) > 0 {
		for _, s := range q.Sort {
			dir := "ASC"
			if s.Desc {
				dir = "DESC"
			}
			db = db.Order(fmt.Sprintf("%s %s", s.Column, dir))
		}
	} else {
		db = db.Order("created_at DESC")
	}

	return db.Offset(q.Offset()).Limit(q.Limit)
}

// Offset returns the row offset implied by page and limit.
func (q *ListQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

// PageInfo computes the pagination descriptors against the filtered total.
func (q *ListQuery) PageInfo(total int64) Pagination {
	var p Pagination
	if int64(q.Page*q.Limit) < total {
		p.Next = &Page{Page: q.Page + 1, Limit: q.Limit}
	}
	if q.Page > 1 {
		p.Prev = &Page{Page: q.Page - 1, Limit: q.Limit}
	}
	return p
}

// bindValue converts numeric-looking strings into numbers so comparisons
// against numeric columns behave identically on Postgres and SQLite.
func bindValue(s string) any {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return s
}

func bindValues(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = bindValue(v)
	}
	return out
}
