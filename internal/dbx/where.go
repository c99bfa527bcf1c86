package dbx

import (
	"fmt"
	"strconv"
	"strings"
)

// Conditions accumulates AND-ed WHERE clauses with numbered placeholders.
//
//	var c dbx.Conditions
//	c.Raw("deleted = false")
//	c.Add("role = %s", "ADMIN")
//	c.Contains("name", "ali")
//	query := "SELECT ... FROM users" + c.Where() + " LIMIT " + c.Bind(10)
type Conditions struct {
	clauses []string
	args    []any
}

// Raw adds a clause with no arguments.
func (c *Conditions) Raw(clause string) {
	c.clauses = append(c.clauses, clause)
}

// Add adds a clause whose single %s verb is replaced by the next placeholder.
func (c *Conditions) Add(format string, arg any) {
	c.clauses = append(c.clauses, fmt.Sprintf(format, c.Bind(arg)))
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Contains adds a literal substring match on column: % and _ in value match
// only themselves. An empty value adds nothing.
func (c *Conditions) Contains(column, value string) {
	if value == "" {
		return
	}
	c.Add(column+` LIKE '%%' || %s || '%%' ESCAPE '\'`, likeEscaper.Replace(value))
}

// Bind registers arg and returns its placeholder.
func (c *Conditions) Bind(arg any) string {
	c.args = append(c.args, arg)
	return "$" + strconv.Itoa(len(c.args))
}

// Where renders " WHERE a AND b", or "" without clauses.
func (c *Conditions) Where() string {
	if len(c.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(c.clauses, " AND ")
}

func (c *Conditions) Args() []any {
	return c.args
}
