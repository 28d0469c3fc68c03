// Package option holds composable gorm query modifiers shared by repositories.
package option

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

type QueryOption interface {
	Apply(db *gorm.DB) *gorm.DB
}

type queryOptionFunc func(db *gorm.DB) *gorm.DB

func (f queryOptionFunc) Apply(db *gorm.DB) *gorm.DB { return f(db) }

// QuerySortBy orders by Field when it is listed in Allow. An empty or
// disallowed field falls back to Default.
type QuerySortBy struct {
	Field   string
	Desc    bool
	Allow   map[string]bool
	Default string
}

// WithQuerySortBy builds a sort from separate field and direction values.
func WithQuerySortBy(sortBy, orderBy string, allow map[string]bool) QuerySortBy {
	return QuerySortBy{
		Field: strings.TrimSpace(sortBy),
		Desc:  strings.EqualFold(strings.TrimSpace(orderBy), "desc"),
		Allow: allow,
	}
}

// ParseOrdering reads a single ordering token where a leading "-" means
// descending, e.g. "-price".
func ParseOrdering(ordering string, allow map[string]bool) QuerySortBy {
	ordering = strings.TrimSpace(ordering)
	desc := strings.HasPrefix(ordering, "-")
	return QuerySortBy{
		Field: strings.TrimPrefix(ordering, "-"),
		Desc:  desc,
		Allow: allow,
	}
}

// Valid reports whether the requested field is allowed. An empty field is valid.
func (s QuerySortBy) Valid() bool {
	return s.Field == "" || s.Allow[s.Field]
}

func WithSortBy(s QuerySortBy) QueryOption {
	return queryOptionFunc(func(db *gorm.DB) *gorm.DB {
		if s.Field != "" && s.Allow[s.Field] {
			dir := "ASC"
			if s.Desc {
				dir = "DESC"
			}
			return db.Order(fmt.Sprintf("%s %s", s.Field, dir))
		}
		if s.Default != "" {
			return db.Order(s.Default)
		}
		return db.Order("created_at DESC")
	})
}

type Operator string

const (
	EQ   Operator = "="
	GTE  Operator = ">="
	LTE  Operator = "<="
	GT   Operator = ">"
	LT   Operator = "<"
	LIKE Operator = "LIKE"
)

type Condition struct {
	Field    string
	Operator Operator
	Value    any
}

func ApplyOperator(c Condition) QueryOption {
	return queryOptionFunc(func(db *gorm.DB) *gorm.DB {
		return db.Where(fmt.Sprintf("%s %s ?", c.Field, c.Operator), c.Value)
	})
}

func WithLimit(limit int) QueryOption {
	return queryOptionFunc(func(db *gorm.DB) *gorm.DB {
		if limit <= 0 {
			return db
		}
		return db.Limit(limit)
	})
}

func WithOffset(offset int) QueryOption {
	return queryOptionFunc(func(db *gorm.DB) *gorm.DB {
		if offset <= 0 {
			return db
		}
		return db.Offset(offset)
	})
}

func WithPreload(associations ...string) QueryOption {
	return queryOptionFunc(func(db *gorm.DB) *gorm.DB {
		for _, assoc := range associations {
			db = db.Preload(assoc)
		}
		return db
	})
}
