package beersql

import (
	"strings"

	"github.com/Masterminds/squirrel"

	"beercatalog/internal/domain/beer"
)

const (
	colName  = "beer_name"
	colStyle = "beer_style"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// EscapeLike escapes LIKE wildcards so user input matches literally.
// Both Postgres and MySQL use backslash as the default LIKE escape.
func EscapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// ContainsPattern returns a lower-cased LIKE pattern matching s anywhere.
func ContainsPattern(s string) string {
	return "%" + EscapeLike(strings.ToLower(s)) + "%"
}

// Where translates p into a SQL condition. MatchAll yields nil.
func Where(p beer.Predicate) squirrel.Sqlizer {
	nameCond := squirrel.Like{"LOWER(" + colName + ")": ContainsPattern(p.Name)}
	styleCond := squirrel.Eq{colStyle: string(p.Style)}

	switch p.Kind {
	case beer.MatchName:
		return nameCond
	case beer.MatchStyle:
		return styleCond
	case beer.MatchNameAndStyle:
		return squirrel.And{nameCond, styleCond}
	default:
		return nil
	}
}

// ApplyPredicate adds the WHERE clause for p to q.
func ApplyPredicate(q squirrel.SelectBuilder, p beer.Predicate) squirrel.SelectBuilder {
	if cond := Where(p); cond != nil {
		q = q.Where(cond)
	}
	return q
}
