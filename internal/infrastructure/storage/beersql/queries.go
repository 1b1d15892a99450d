// Package beersql builds the SQL statements shared by the relational beer repositories.
// Drivers differ only in placeholder format and in how they execute and scan.
package beersql

import (
	"github.com/Masterminds/squirrel"

	"beercatalog/internal/core/id"
	"beercatalog/internal/domain/beer"
)

// Table is the beer table name.
const Table = "beer"

// Columns lists every beer column in struct order.
var Columns = ExtractDBColumns[beer.Beer]()

// immutable columns are never part of an UPDATE SET list.
var immutable = map[string]bool{"id": true, "created_at": true}

// Queries builds beer statements for one placeholder format.
type Queries struct {
	sb squirrel.StatementBuilderType
}

// New creates a query builder. Use squirrel.Dollar for Postgres and squirrel.Question for MySQL.
func New(format squirrel.PlaceholderFormat) Queries {
	return Queries{sb: squirrel.StatementBuilder.PlaceholderFormat(format)}
}

func (q Queries) selectAll() squirrel.SelectBuilder {
	return q.sb.Select(Columns...).From(Table)
}

// Find selects every row matching p, ordered by id (UUIDv7, so creation order).
func (q Queries) Find(p beer.Predicate) squirrel.SelectBuilder {
	return ApplyPredicate(q.selectAll(), p).OrderBy("id")
}

// FindByID selects one row. With forUpdate the row is locked until the transaction ends.
func (q Queries) FindByID(beerID id.ID, forUpdate bool) squirrel.SelectBuilder {
	sb := q.selectAll().
		Where(squirrel.Eq{"id": beerID}).
		Limit(1)
	if forUpdate {
		sb = sb.Suffix("FOR UPDATE")
	}
	return sb
}

// Insert inserts every column of b.
func (q Queries) Insert(b *beer.Beer) squirrel.InsertBuilder {
	return q.sb.Insert(Table).SetMap(values(b, false))
}

// Update overwrites every mutable column of the row identified by b.ID.
func (q Queries) Update(b *beer.Beer) squirrel.UpdateBuilder {
	return q.sb.Update(Table).
		SetMap(values(b, true)).
		Where(squirrel.Eq{"id": b.ID})
}

// DeleteByID deletes one row.
func (q Queries) DeleteByID(beerID id.ID) squirrel.DeleteBuilder {
	return q.sb.Delete(Table).Where(squirrel.Eq{"id": beerID})
}

// DeleteAll deletes every row.
func (q Queries) DeleteAll() squirrel.DeleteBuilder {
	return q.sb.Delete(Table)
}

func values(b *beer.Beer, skipImmutable bool) map[string]any {
	data := StructToMap(b)
	out := make(map[string]any, len(Columns))
	for _, col := range Columns {
		if skipImmutable && immutable[col] {
			continue
		}
		val := data[col]
		if s, ok := val.(beer.Style); ok {
			val = string(s)
		}
		out[col] = val
	}
	return out
}
