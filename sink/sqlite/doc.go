// Package sqlite provides a sink.Store backed by SQLite through the pure Go
// modernc.org/sqlite driver.
//
// Records live in a content table keyed by (type, id); tags are kept both
// as a JSON column and in a content_tags table used by ByTag.
package sqlite
