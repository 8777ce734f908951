package dbx

// PreparedStatement represents a named statement prepared on every new physical connection of a pool.
//
// Fields:
//   - Name: A unique name identifying the prepared statement, used instead of the SQL text when executing it.
//   - Query: The SQL query string, with positional placeholders for the arguments.
type PreparedStatement struct {
	Name  string
	Query string
}

// NewPreparedStatement creates a new prepared statement.
func NewPreparedStatement(name, query string) PreparedStatement {
	return PreparedStatement{Name: name, Query: query}
}

// GetName returns the name of the prepared statement.
func (p PreparedStatement) GetName() string {
	return p.Name
}

// GetQuery returns the query of the prepared statement.
func (p PreparedStatement) GetQuery() string {
	return p.Query
}
