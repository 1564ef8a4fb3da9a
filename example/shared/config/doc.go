// Package config provides example database connection configurations for the
// supported connection types: pgx pool, sql.DB and sqlx.DB.
package config
