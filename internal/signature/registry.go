// Package signature detects which character wrote a comment and appends
// that character's closing signature block.
package signature

import (
	"errors"
	"fmt"
	"strings"
)

// CharacterBaseURL is where each character's profile lives; the character
// name is the final path segment.
const CharacterBaseURL = "https://github.com/SimHacker/tmnn7-8/tree/main/analysis/characters/"

// SignatureMark opens every signature block.
const SignatureMark = "— 🎭"

// ErrUnknownCharacter is returned when a name is not in the registry.
var ErrUnknownCharacter = errors.New("unknown character")

// Character is a persona that signs its comments.
type Character struct {
	Name  string
	Emoji string
}

// Marker is the link label that identifies the character in a comment body.
func (c Character) Marker() string {
	return "[*" + c.Name + "*]"
}

// Template is the block appended to the end of a signed comment.
func (c Character) Template() string {
	return fmt.Sprintf("\n\n%s%s %s(%s%s)", SignatureMark, c.Emoji, c.Marker(), CharacterBaseURL, c.Name)
}

// Registry is an ordered, read-only set of characters. Lookups and
// detection follow registration order.
type Registry struct {
	characters []Character
	templates  map[string]string
}

// NewRegistry builds a registry. Names must be unique and non-empty.
func NewRegistry(characters ...Character) (*Registry, error) {
	r := &Registry{
		characters: make([]Character, 0, len(characters)),
		templates:  make(map[string]string, len(characters)),
	}
	for _, c := range characters {
		if strings.TrimSpace(c.Name) == "" {
			return nil, errors.New("character name is required")
		}
		if _, dup := r.templates[c.Name]; dup {
			return nil, fmt.Errorf("duplicate character %q", c.Name)
		}
		r.characters = append(r.characters, c)
		r.templates[c.Name] = c.Template()
	}
	return r, nil
}

// Characters is the fixed cast.
var Characters = mustRegistry(
	Character{Name: "daFlute", Emoji: "📜"},
	Character{Name: "FearlessCrab", Emoji: "🦀"},
	Character{Name: "PureMonad", Emoji: "λ"},
	Character{Name: "WebScaleChad", Emoji: "🚀"},
	Character{Name: "planned-chaos", Emoji: "📊"},
	Character{Name: "GrokVibeCheck", Emoji: "🤖"},
)

func mustRegistry(characters ...Character) *Registry {
	r, err := NewRegistry(characters...)
	if err != nil {
		panic(err)
	}
	return r
}

// Names returns the character names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.characters))
	for i, c := range r.characters {
		names[i] = c.Name
	}
	return names
}

// Template returns the signature block for name.
func (r *Registry) Template(name string) (string, error) {
	tmpl, ok := r.templates[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownCharacter, name)
	}
	return tmpl, nil
}

// Detect returns the first character, in registration order, whose marker
// appears in body, or "" when none does. Position in the text is ignored.
func (r *Registry) Detect(body string) string {
	for _, c := range r.characters {
		if strings.Contains(body, c.Marker()) {
			return c.Name
		}
	}
	return ""
}
