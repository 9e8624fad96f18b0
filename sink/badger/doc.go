// Package badger provides a sink.Store backed by BadgerDB.
//
// Records are serialized with mus-go and stored under rec:<type>:<id>.
// Every tag gets an index key tag:<tag>\x00<type>:<id> with an empty value
// so ByTag is a prefix scan. Saving a record replaces the index keys of its
// previous version in the same transaction.
package badger
