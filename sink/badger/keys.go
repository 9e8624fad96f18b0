package badger

import (
	"bytes"
	"fmt"
	"strings"
)

// Key prefixes for different data types
const (
	recordPrefix = "rec"
	tagPrefix    = "tag"
)

// tagSep separates a tag from the record address in tag index keys, since
// tags may contain colons.
const tagSep = "\x00"

// makeRecordKey generates the primary key of a record.
// Format: rec:type:id
func makeRecordKey(contentType, id string) []byte {
	return []byte(fmt.Sprintf("%s:%s:%s", recordPrefix, contentType, id))
}

// makeTypePrefix generates the scan prefix of all records of a type.
func makeTypePrefix(contentType string) []byte {
	return []byte(fmt.Sprintf("%s:%s:", recordPrefix, contentType))
}

// makeTagKey generates a tag index key.
// Format: tag:tag\x00type:id
func makeTagKey(tag, contentType, id string) []byte {
	return []byte(fmt.Sprintf("%s:%s%s%s:%s", tagPrefix, tag, tagSep, contentType, id))
}

// makeTagPrefix generates the scan prefix of a tag index.
func makeTagPrefix(tag string) []byte {
	return []byte(fmt.Sprintf("%s:%s%s", tagPrefix, tag, tagSep))
}

// parseTagKey extracts the record address from a tag index key.
func parseTagKey(key []byte) (contentType, id string, ok bool) {
	i := bytes.Index(key, []byte(tagSep))
	if i < 0 {
		return "", "", false
	}
	contentType, id, ok = strings.Cut(string(key[i+len(tagSep):]), ":")
	return contentType, id, ok
}
