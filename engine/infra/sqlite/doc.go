// Package sqlite is the modernc.org/sqlite backed store for the development
// backend. It owns connection setup, embedded goose migrations, and the user
// and estimate repositories.
package sqlite
