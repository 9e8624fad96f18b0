package extraction

import (
	"cmp"
	"slices"
	"unicode/utf8"

	"github.com/poiesic/lorekeeper/core"
)

// Dedup removes entries sharing a primary key. The first occurrence keeps its
// position and name; if a later duplicate carries longer content, that content
// replaces the first occurrence's.
func Dedup(entries []core.Entry) []core.Entry {
	index := make(map[string]int, len(entries))
	unique := make([]core.Entry, 0, len(entries))

	for _, e := range entries {
		pk := e.PrimaryKey()
		if i, seen := index[pk]; seen {
			if longer(e.Content, unique[i].Content) {
				unique[i].Content = e.Content
			}
			continue
		}
		index[pk] = len(unique)
		unique = append(unique, e)
	}
	return unique
}

// MergeGleaned folds gleaned entries into the primary list. On a primary-key
// collision the entry with the longer content is kept in the original slot;
// entries with new keys are appended.
func MergeGleaned(primary, gleaned []core.Entry) []core.Entry {
	index := make(map[string]int, len(primary)+len(gleaned))
	merged := make([]core.Entry, 0, len(primary)+len(gleaned))

	for _, e := range slices.Concat(primary, gleaned) {
		pk := e.PrimaryKey()
		if i, seen := index[pk]; seen {
			if longer(e.Content, merged[i].Content) {
				merged[i] = e
			}
			continue
		}
		index[pk] = len(merged)
		merged = append(merged, e)
	}
	return merged
}

// SortByPriority orders entries by descending priority. Entries with equal
// priority keep their relative order.
func SortByPriority(entries []core.Entry) {
	slices.SortStableFunc(entries, func(a, b core.Entry) int {
		return cmp.Compare(b.Priority, a.Priority)
	})
}

// Finalize deduplicates entries and, unless preserveOrder is set, sorts
// them by priority.
func Finalize(entries []core.Entry, preserveOrder bool) []core.Entry {
	out := Dedup(entries)
	if !preserveOrder {
		SortByPriority(out)
	}
	return out
}

func longer(a, b string) bool {
	return utf8.RuneCountInString(a) > utf8.RuneCountInString(b)
}
