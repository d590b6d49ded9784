package prompt

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	contractx "github.com/tanpawarit/Chative-Voice-Agents/agent/contract"
)

//go:embed template/*.txt
var templates embed.FS

// PromptSet holds the trimmed base instructions keyed by persona name.
type PromptSet map[string]string

// LoadPromptSet reads every embedded template once.
func LoadPromptSet() PromptSet {
	set := PromptSet{}
	entries, err := fs.ReadDir(templates, "template")
	if err != nil {
		return set
	}
	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".txt" {
			continue
		}
		raw, err := templates.ReadFile("template/" + entry.Name())
		if err != nil {
			continue
		}
		set[strings.TrimSuffix(entry.Name(), ".txt")] = strings.TrimSpace(string(raw))
	}
	return set
}

// Get returns the instructions for name, or ErrPromptMissing when none are embedded or they are blank.
func (s PromptSet) Get(name string) (string, error) {
	text, ok := s[strings.TrimSpace(name)]
	if !ok || text == "" {
		return "", fmt.Errorf("%w: %s", contractx.ErrPromptMissing, name)
	}
	return text, nil
}

func (s PromptSet) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
