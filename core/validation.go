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


package core

import (
	"fmt"
	"strings"
)

// ValidateEntry validates an Entry according to domain rules.
//
// Validation rules:
//   - Name must not be empty after trimming
//   - Content must not be empty after trimming
//
// NOT validated:
//   - Key (may be empty when the name was supplied explicitly)
//   - Comment (optional classification)
//   - Priority (any integer is accepted)
func ValidateEntry(entry *Entry) error {
	if entry == nil {
		return fmt.Errorf("%w: entry is nil", ErrInvalidEntry)
	}

	if strings.TrimSpace(entry.Name) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidEntry, ErrEmptyName)
	}

	if strings.TrimSpace(entry.Content) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidEntry, ErrEmptyContent)
	}

	return nil
}

// ValidateChunkRecord validates a ChunkRecord before it is journaled.
//
// Validation rules:
//   - Source must not be empty
//   - ChunkIndex must not be negative
//   - Attempts must be at least 1
func ValidateChunkRecord(record *ChunkRecord) error {
	if record == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidChunkRecord)
	}

	if record.Source == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunkRecord, ErrEmptySource)
	}

	if record.ChunkIndex < 0 {
		return fmt.Errorf("%w: %w", ErrInvalidChunkRecord, ErrNegativeChunkIndex)
	}

	if record.Attempts < 1 {
		return fmt.Errorf("%w: %w", ErrInvalidChunkRecord, ErrInvalidAttempts)
	}

	return nil
}
