// Package postgres provides PostgreSQL implementations of the store
// interfaces. It uses database/sql with the pgx driver and maps
// database-level errors to the sentinel errors defined by the store package.
package postgres
