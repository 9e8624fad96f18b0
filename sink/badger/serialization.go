package badger

import (
	"errors"
	"time"

	"github.com/poiesic/lorekeeper/sink"
)

// marshalRecord serializes a Record to bytes.
func marshalRecord(r *sink.Record) []byte {
	buf := make([]byte, sink.RecordMUS.Size(*r))
	sink.RecordMUS.Marshal(*r, buf)
	return buf
}

// unmarshalRecord deserializes a Record from bytes. Timestamps come back in
// UTC and empty collections as nil.
func unmarshalRecord(data []byte) (*sink.Record, error) {
	r, _, err := sink.RecordMUS.Unmarshal(data)
	if err != nil {
		return nil, errors.Join(sink.ErrSerializationFailed, err)
	}
	if len(r.Data) == 0 {
		r.Data = nil
	}
	if len(r.Tags) == 0 {
		r.Tags = nil
	}
	if r.UpdatedAt.Equal(time.Time{}) {
		r.UpdatedAt = time.Time{}
	} else {
		r.UpdatedAt = r.UpdatedAt.UTC()
	}
	return &r, nil
}
