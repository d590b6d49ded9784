package catalog

import "strings"

// Concept is one unit of tutor content.
type Concept struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	Summary        string `json:"summary"`
	SampleQuestion string `json:"sample_question,omitempty"`
}

func emptyConcepts() []Concept { return []Concept{} }

// LoadConcepts reads a JSON array of concepts.
func LoadConcepts(path string) ([]Concept, error) {
	return loadJSON(path, emptyConcepts)
}

func FindConcept(concepts []Concept, idOrTitle string) (Concept, bool) {
	want := strings.TrimSpace(idOrTitle)
	for _, c := range concepts {
		if strings.EqualFold(c.ID, want) || strings.EqualFold(c.Title, want) {
			return c, true
		}
	}
	return Concept{}, false
}
