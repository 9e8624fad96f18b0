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


package extraction

// repairJSON attempts to fix common JSON formatting issues from LLM responses.
// It handles missing opening quotes before keys in JSON objects and trailing
// commas before a closing bracket or brace.
func repairJSON(s string) string {
	return stripTrailingCommas(quoteKeys(s))
}

// quoteKeys adds the missing opening quote before object keys.
// Example: `{name":"Aria"}` -> `{"name":"Aria"}`
func quoteKeys(s string) string {
	result := []rune(s)
	fixed := make([]rune, 0, len(result)+100)

	i := 0
	for i < len(result) {
		ch := result[i]

		// After { or , look for unquoted keys
		if ch != '{' && ch != ',' {
			fixed = append(fixed, ch)
			i++
			continue
		}
		fixed = append(fixed, ch)
		i++

		for i < len(result) && isSpace(result[i]) {
			fixed = append(fixed, result[i])
			i++
		}

		if i >= len(result) || result[i] == '"' || !isLetter(result[i]) {
			continue
		}

		keyStart := i
		for i < len(result) && (isLetter(result[i]) || result[i] == '_') {
			i++
		}

		// a closing quote followed by a colon marks a key that lost its opening quote
		if i+1 < len(result) && result[i] == '"' && result[i+1] == ':' {
			fixed = append(fixed, '"')
		}
		fixed = append(fixed, result[keyStart:i]...)
	}

	return string(fixed)
}

// stripTrailingCommas removes commas that directly precede ] or }, outside strings.
func stripTrailingCommas(s string) string {
	runes := []rune(s)
	out := make([]rune, 0, len(runes))
	inString := false
	escaped := false

	for i, ch := range runes {
		if inString {
			out = append(out, ch)
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		if ch == '"' {
			inString = true
			out = append(out, ch)
			continue
		}
		if ch == ',' {
			j := i + 1
			for j < len(runes) && isSpace(runes[j]) {
				j++
			}
			if j < len(runes) && (runes[j] == ']' || runes[j] == '}') {
				continue
			}
		}
		out = append(out, ch)
	}
	return string(out)
}

// isLetter returns true if the rune is an ASCII letter.
func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\n' || r == '\t' || r == '\r'
}
