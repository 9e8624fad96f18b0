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


// Package extraction turns chunks of text into lore entries and merges the
// entries of many chunks into one set.
//
// # Extraction
//
// Extractor.Extract sends a system prompt and the chunk to the model, then
// recovers a JSON array from the reply. Replies are parsed leniently: the
// whole text, a fenced code block, or the widest bracketed span is accepted,
// and common model mistakes (unquoted keys, trailing commas) are repaired.
//
// With gleaning enabled a second call replays the first exchange and asks
// for anything that was missed. Gleaned entries replace existing ones only
// when their content is longer. A failed gleaning call is recorded in the
// result metadata and never fails the chunk.
//
// # Identity
//
// Two entries are duplicates when their primary keys match: the
// lower-cased name, or the lower-cased first key term when the name is
// empty. Output never contains two entries with the same primary key.
//
// # Merging
//
// Merger.Merge concatenates the entries of successful results. With
// LLMMerge enabled the model reconciles near-duplicates across the whole
// document; if that fails, local deduplication is used instead.
//
// Entries are sorted by descending priority unless PreserveOrder is set.
// PreserveOrder is forced on with LLMMerge so the model sees entries in
// document order.
package extraction
