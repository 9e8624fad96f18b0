package extraction

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// TextPlaceholder marks where the chunk text is inserted in user and
// gleaning templates.
const TextPlaceholder = "{text}"

// Prompt file names looked up in a prompts directory.
const (
	SystemPromptFile   = "system.txt"
	UserPromptFile     = "user.txt"
	GleaningPromptFile = "gleaning.txt"
	MergePromptFile    = "merge.txt"
)

const defaultSystemPrompt = `<role>You are a meticulous worldbuilding analyst.</role>
<task>Read the text and extract its world-building knowledge as lore entries: characters, places, factions, items, events, rules of the world and other recurring concepts.</task>
<format>
Output ONLY a JSON array. Do not include any preamble, explanation or markdown outside the array.
Each element is an object with these fields:
  "name":     the canonical name of the entity (unique within the array)
  "key":      comma-separated trigger terms (the name, aliases, nicknames)
  "content":  a self-contained description drawn only from the text
  "comment":  the entry category (character, location, faction, item, event, concept, ...)
  "priority": an integer from 1 to 100; higher for entities central to the story
</format>
<rules>
- Only include facts stated or clearly implied by the text. Do not invent.
- Merge everything known about one entity into a single entry.
- If nothing can be extracted, output [].
</rules>`

const defaultUserPrompt = `<input_text>
{text}
</input_text>
Extract the lore entries from the text above and output the JSON array.`

const defaultGleaningPrompt = `<task>Some entities or details were missed in your previous answer. Re-read the text and output ONLY a JSON array of entries that are new, or that add detail to entries you already produced. Use the same fields. Output [] if nothing was missed.</task>
<original_text>
{text}
</original_text>`

const defaultMergePrompt = `<role>You are an editor of a world-building knowledge base.</role>
<task>Merge and deduplicate a list of lore entries collected from consecutive parts of one document. Entries describing the same entity must become one entry that combines their content. Disambiguate different entities that share a name by adjusting the name.</task>
<rules>
- The input order follows the document timeline; keep that order.
- Output ONLY a JSON array; every element must have name, key, content, comment, priority and enabled.
- Every name must be unique.
</rules>`

const mergeUserPreamble = "Merge the following lore entries (JSON array) and output only the merged JSON array:\n"

// Prompts holds the instruction templates used for extraction, gleaning and
// model-assisted merging.
type Prompts struct {
	System   string
	User     string
	Gleaning string
	Merge    string
}

// DefaultPrompts returns the built-in prompt set.
func DefaultPrompts() Prompts {
	return Prompts{
		System:   defaultSystemPrompt,
		User:     defaultUserPrompt,
		Gleaning: defaultGleaningPrompt,
		Merge:    defaultMergePrompt,
	}
}

// LoadPrompts reads prompt templates from dir. Missing or empty files fall
// back to the built-in prompt. An empty dir returns the defaults.
func LoadPrompts(dir string) (Prompts, error) {
	p := DefaultPrompts()
	if dir == "" {
		return p, nil
	}

	info, err := os.Stat(dir)
	if err != nil {
		return p, fmt.Errorf("prompts dir: %w", err)
	}
	if !info.IsDir() {
		return p, fmt.Errorf("prompts dir: %s is not a directory", dir)
	}

	for _, f := range []struct {
		name   string
		target *string
	}{
		{SystemPromptFile, &p.System},
		{UserPromptFile, &p.User},
		{GleaningPromptFile, &p.Gleaning},
		{MergePromptFile, &p.Merge},
	} {
		body, err := readPromptFile(filepath.Join(dir, f.name))
		if err != nil {
			return p, err
		}
		if body != "" {
			*f.target = body
		}
	}
	return p, nil
}

func readPromptFile(path string) (string, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read prompt %s: %w", path, err)
	}
	return unwrapPrompt(string(b)), nil
}

var (
	promptTag   = regexp.MustCompile(`(?s)<prompt>(.*)</prompt>`)
	xmlDecl     = regexp.MustCompile(`<\?xml[^>]*\?>`)
	xmlComments = regexp.MustCompile(`(?s)<!--.*?-->`)
)

// unwrapPrompt returns the body of a <prompt> element, or the whole file
// without XML declarations and comments.
func unwrapPrompt(s string) string {
	if m := promptTag.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}
	s = xmlDecl.ReplaceAllString(s, "")
	s = xmlComments.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// render inserts text into a template. Templates without a placeholder get
// the text appended after a blank line.
func render(template, text string) string {
	if !strings.Contains(template, TextPlaceholder) {
		return template + "\n\n" + text
	}
	return strings.ReplaceAll(template, TextPlaceholder, text)
}

// UserMessage renders the primary user prompt for a chunk.
func (p Prompts) UserMessage(text string) string {
	return render(p.User, strings.TrimSpace(text))
}

// GleaningMessage renders the gleaning prompt for a chunk.
func (p Prompts) GleaningMessage(text string) string {
	return render(p.Gleaning, strings.TrimSpace(text))
}
