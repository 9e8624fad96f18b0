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

import "errors"

// Domain validation errors
var (
	// ErrInvalidEntry indicates an Entry failed validation.
	ErrInvalidEntry = errors.New("invalid entry")

	// ErrInvalidChunkRecord indicates a ChunkRecord failed validation.
	ErrInvalidChunkRecord = errors.New("invalid chunk record")

	// ErrEmptyName indicates the entry Name field is empty.
	ErrEmptyName = errors.New("entry name cannot be empty")

	// ErrEmptyContent indicates the entry Content field is empty.
	ErrEmptyContent = errors.New("entry content cannot be empty")

	// ErrEmptySource indicates the record Source field is empty.
	ErrEmptySource = errors.New("record source cannot be empty")

	// ErrNegativeChunkIndex indicates a chunk index below zero.
	ErrNegativeChunkIndex = errors.New("chunk index cannot be negative")

	// ErrInvalidAttempts indicates a record with fewer than one attempt.
	ErrInvalidAttempts = errors.New("attempts must be at least 1")
)
