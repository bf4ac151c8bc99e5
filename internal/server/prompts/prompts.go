// Package prompts holds the instructions sent to the chat model by the
// recording worker and by the regenerate/rewrite note actions.
package prompts

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"github.com/Chris-Obeng/talkflo-app1/internal/server/models"
	"gopkg.in/yaml.v3"
)

// EnhanceSystemPrompt cleans up a raw transcript right after transcription.
const EnhanceSystemPrompt = `You are an expert text editor. Clean up the following voice transcript: remove filler words and false starts, fix grammar and punctuation, and split it into readable paragraphs. Keep the speaker's meaning, tone and language. Return only the edited text.`

// TitleSystemPrompt asks for the title of a freshly created note.
const TitleSystemPrompt = `Generate a concise, descriptive title (max 60 characters) for the following note. Return only the title, without quotes or trailing punctuation.`

// BaseSystemPrompt drives regenerate and rewrite.
const BaseSystemPrompt = `Voice Note Rewriter

You are an expert writing assistant that transforms raw voice transcriptions into clear, structured and polished written content while preserving the speaker's original intent and meaning.

Core tasks:
- Remove filler words, fix grammar and improve sentence structure
- Organize scattered thoughts into a logical flow
- Detect the content type (meeting notes, email, brainstorm and so on) and format it accordingly
- Highlight action items, decisions and key insights
- Keep the speaker's tone and voice while raising the level of professionalism

Quality standards:
- Do not over-formalize
- Use [unclear] for ambiguous passages
- Keep industry terms and context intact
- Put urgent items and deadlines first

Do not use markdown syntax like # or *. Your response must contain only the rewritten text. Do not add a title, an introduction or any conversational text.`

// Temperature used for every pipeline completion.
const Temperature float32 = 0.3

//go:embed styles.yaml
var stylesYAML []byte

type Style struct {
	System string `yaml:"system"`
	Task   string `yaml:"task"`
}

type Set struct {
	styles map[string]Style
}

// Load parses the embedded style templates.
func Load() (*Set, error) {
	return Parse(stylesYAML)
}

func Parse(data []byte) (*Set, error) {
	var doc struct {
		Styles map[string]Style `yaml:"styles"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse styles: %w", err)
	}
	for name, st := range doc.Styles {
		if strings.TrimSpace(st.Task) == "" {
			return nil, fmt.Errorf("style %q has no task", name)
		}
	}
	if doc.Styles == nil {
		doc.Styles = map[string]Style{}
	}
	return &Set{styles: doc.Styles}, nil
}

// Names lists the configured styles in lexical order.
func (s *Set) Names() []string {
	names := make([]string, 0, len(s.styles))
	for n := range s.styles {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Regenerate builds the prompt pair for re-deriving a note in style. Unknown
// styles fall back to asking for a reformat into the named style.
func (s *Set) Regenerate(style, transcript string, settings models.UserSettings) (system, user string) {
	st, ok := s.styles[style]
	if !ok {
		st = Style{Task: fmt.Sprintf("Please reformat the following transcript into a %s.", style)}
	}
	system = st.System
	if strings.TrimSpace(system) == "" {
		system = BaseSystemPrompt
	}
	return system, userPrompt(st.Task, transcript, settings)
}

// Rewrite builds the prompt pair for free-text rewrite instructions.
func Rewrite(instructions, transcript string, settings models.UserSettings) (system, user string) {
	return BaseSystemPrompt, userPrompt(instructions, transcript, settings)
}

func userPrompt(task, transcript string, settings models.UserSettings) string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(task))
	b.WriteString("\n")
	if v := deref(settings.OutputLanguage); v != "" {
		fmt.Fprintf(&b, "The output language must be %s.\n", v)
	}
	if v := deref(settings.WritingStyle); v != "" {
		fmt.Fprintf(&b, "The writing style should be: %s.\n", v)
	}
	if settings.WritingLength != nil && settings.WritingLength.Valid() {
		fmt.Fprintf(&b, "The output length should be %s.\n", *settings.WritingLength)
	}
	b.WriteString("\n---\n\n")
	b.WriteString(transcript)
	return b.String()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
