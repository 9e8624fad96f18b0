// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package sink

//go:generate go run ../cmd/musgen

import (
	"context"
	"fmt"
	"time"
)

// EntryType is the content type under which lore entries are saved.
const EntryType = "world_info"

// ExtractedTag is added to every imported entry.
const ExtractedTag = "extracted"

// Record is one stored content item.
type Record struct {
	Type      string
	ID        string
	Data      []byte
	Tags      []string
	UpdatedAt time.Time
}

// Validate checks that the record can be addressed.
func (r *Record) Validate() error {
	if r.Type == "" {
		return fmt.Errorf("%w: empty type", ErrInvalidRecord)
	}
	if r.ID == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidRecord)
	}
	return nil
}

// ContentSink receives extracted content. Saving an existing (type, id)
// replaces it.
type ContentSink interface {
	Save(ctx context.Context, contentType, id string, data []byte, tags []string) error
}

// Store is a ContentSink that can be read back.
// Implementations must be safe for concurrent use.
type Store interface {
	ContentSink

	// Get returns a record. Returns ErrNotFound if it does not exist.
	Get(ctx context.Context, contentType, id string) (*Record, error)

	// ByTag returns the records carrying tag, ordered by type and id.
	ByTag(ctx context.Context, tag string) ([]*Record, error)

	// Count returns the number of records of contentType.
	Count(ctx context.Context, contentType string) (int, error)

	// Close releases the underlying storage.
	Close() error
}
