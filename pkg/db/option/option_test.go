package option

import (
	"testing"

	"github.com/smallbiznis/vitrine/pkg/db"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type item struct {
	ID    int64 `gorm:"primaryKey"`
	Name  string
	Price int
}

func TestParseOrdering(t *testing.T) {
	allow := map[string]bool{"price": true, "name": true}

	s := ParseOrdering("-price", allow)
	assert.Equal(t, "price", s.Field)
	assert.True(t, s.Desc)
	assert.True(t, s.Valid())

	assert.False(t, ParseOrdering("secret", allow).Valid())
	assert.True(t, ParseOrdering("", allow).Valid())
}

func TestOptionsRenderSQL(t *testing.T) {
	conn := db.NewTest(t, &item{})
	sql := conn.ToSQL(func(tx *gorm.DB) *gorm.DB {
		for _, opt := range []QueryOption{
			ApplyOperator(Condition{Field: "price", Operator: GTE, Value: 10}),
			WithSortBy(ParseOrdering("-price", map[string]bool{"price": true})),
			WithLimit(5),
			WithOffset(10),
		} {
			tx = opt.Apply(tx)
		}
		var items []item
		return tx.Find(&items)
	})

	assert.Contains(t, sql, "price >= 10")
	assert.Contains(t, sql, "ORDER BY price DESC")
	assert.Contains(t, sql, "LIMIT 5")
	assert.Contains(t, sql, "OFFSET 10")
}

func TestSortByFallsBackToDefault(t *testing.T) {
	conn := db.NewTest(t, &item{})
	sql := conn.ToSQL(func(tx *gorm.DB) *gorm.DB {
		tx = WithSortBy(QuerySortBy{Field: "drop table", Allow: map[string]bool{"name": true}, Default: "name ASC"}).Apply(tx)
		var items []item
		return tx.Find(&items)
	})
	assert.Contains(t, sql, "ORDER BY name ASC")
	assert.NotContains(t, sql, "drop table")
}
