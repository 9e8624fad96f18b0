// Package sink defines where extracted entries go after a successful run.
//
// A ContentSink stores opaque content addressed by (type, id) with a set of
// tags. Import converts lore entries into records and saves them. Two
// persistent implementations are provided: sink/badger, an embedded
// key-value store, and sink/sqlite.
//
// Import is only called once a run has finished without failures, so a
// store never receives a partial extraction.
package sink
