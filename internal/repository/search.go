package repository

import "strings"

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ContainsPattern turns a free-text query into a LIKE pattern that matches it
// literally as a substring. Backslash is the escape character, which is the
// PostgreSQL default and must be declared with ESCAPE '\' in SQLite.
func ContainsPattern(query string) string {
	return "%" + likeEscaper.Replace(query) + "%"
}
