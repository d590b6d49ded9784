package catalog

const DefaultMaxRounds = 4

type Scenario struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Setup      string   `json:"setup"`
	Difficulty string   `json:"difficulty,omitempty"`
	Tags       []string `json:"tags,omitempty"`
}

type ShowInfo struct {
	Name      string `json:"name,omitempty"`
	MaxRounds int    `json:"max_rounds,omitempty"`
}

// Show is the improv scenario document.
type Show struct {
	Scenarios    []Scenario `json:"scenarios"`
	Info         ShowInfo   `json:"show_info"`
	PlayerStyles []string   `json:"player_styles,omitempty"`
}

func EmptyShow() Show {
	return Show{Scenarios: []Scenario{}}
}

func LoadShow(path string) (Show, error) {
	return loadJSON(path, EmptyShow)
}

func (s Show) MaxRounds() int {
	if s.Info.MaxRounds > 0 {
		return s.Info.MaxRounds
	}
	return DefaultMaxRounds
}
