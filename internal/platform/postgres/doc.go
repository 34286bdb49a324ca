// Package postgres implements the store interfaces on PostgreSQL through
// database/sql with the pgx stdlib driver. It maps driver-level failures
// (unique violations, missing rows, foreign key violations) onto the
// store package's sentinel errors.
package postgres
