package story

// AgeGroup selects the narrative register of a generated story.
type AgeGroup string

const (
	AgeToddler    AgeGroup = "toddler"
	AgePreschool  AgeGroup = "preschool"
	AgeElementary AgeGroup = "elementary"
)

func ParseAgeGroup(s string) (AgeGroup, bool) {
	switch AgeGroup(s) {
	case AgeToddler, AgePreschool, AgeElementary:
		return AgeGroup(s), true
	}
	return "", false
}

type Character struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Personality string `json:"personality"`
}

type DialogueLine struct {
	Character string `json:"character"`
	Text      string `json:"text"`
}

type Scene struct {
	Number    int            `json:"number"`
	Title     string         `json:"title"`
	Setting   string         `json:"setting"`
	Narration string         `json:"narration"`
	Dialogue  []DialogueLine `json:"dialogue"`
	Actions   []string       `json:"actions"`
}

// Draft is the in-memory story produced by the LLM or the synthesizer,
// before it is persisted as scene rows.
type Draft struct {
	Title      string      `json:"title"`
	Characters []Character `json:"characters"`
	Scenes     []Scene     `json:"scenes"`
}
