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


// Package segment splits long documents into ordered chunks sized for a
// single model call.
//
// # Strategies
//
//   - StrategyFixed: windows of ChunkSize characters, cut at the nearest
//     paragraph break, line break or sentence end found in the second half
//     of the window, with Overlap characters of trailing context repeated at
//     the start of the next chunk.
//   - StrategyChapters: one segment per Markdown heading (outside fenced
//     code blocks), plus a leading preface segment. Segments longer than
//     ChapterMaxChars are re-split with the fixed strategy.
//   - StrategyAuto: chapters when at least MinHeadings headings are found,
//     fixed otherwise.
//
// All lengths are measured in characters (runes), never bytes, so
// multi-byte scripts are never cut mid-character.
//
// # Usage
//
//	chunks, err := segment.Segment(text, segment.DefaultOptions())
//	if err != nil {
//	    return err
//	}
//	for i, chunk := range chunks {
//	    // extract chunk i
//	}
//
// Segmentation is pure and safe for concurrent use.
package segment
