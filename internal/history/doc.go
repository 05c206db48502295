// Package history persists review runs to PostgreSQL.
//
// Persistence is strictly optional: it activates only when a DSN is
// configured, and a connection failure downgrades to a warning so a
// review never fails because the database is away.
package history
