// Package sqlite provides the dashboard client-state adapter backed by SQLite.
package sqlite
