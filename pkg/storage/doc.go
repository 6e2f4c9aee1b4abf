// Package storage persists user food logs in SQLite.
//
// The store keeps a users table and an append-only food_log table.
// SQLite runs in WAL mode with a single writer connection, and all
// hot-path queries go through prepared statements.
package storage
