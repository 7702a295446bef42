package story

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	minSceneCount = 3
	maxTitleLen   = 60

	fallbackName     = "Hero"
	fixedPersonality = "Cheerful, curious, and always ready to help"
	openingLine      = "What a beautiful day for an adventure!"
	closingLine      = "This was the best day ever!"
)

var (
	pairPattern = regexp.MustCompile(`(?i)\btwo\s+([a-z]+)(?:\s+and\s+([a-z]+))?`)

	// Ordered role patterns. The first match with a word longer than two
	// letters yields a name; later patterns may add more distinct names.
	rolePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(?:a|an|the)\s+([a-z]+)`),
		regexp.MustCompile(`(?i)\b([a-z]+)\s+(?:who|that|goes|wants|learns|finds)\b`),
		regexp.MustCompile(`(?i)\bstory\s+(?:of|about)\s+([a-z]+)`),
	}

	nonLetters = regexp.MustCompile(`[^a-zA-Z]`)
)

var themeKeywords = map[string][]string{
	"adventure":  {"adventure", "quest", "journey", "explore", "brave", "treasure"},
	"friendship": {"friend", "together", "help", "share", "kind"},
	"learning":   {"learn", "school", "teach", "discover", "count", "read"},
	"magic":      {"magic", "wizard", "fairy", "dragon", "enchanted", "spell"},
	"problem":    {"problem", "challenge", "lost", "fix", "solve", "stuck"},
}

type themeSet struct {
	adventure  bool
	friendship bool
	learning   bool
	magic      bool
	problem    bool
}

// sceneTemplate holds the three-part narrative skeleton for one age group.
// Each sentence interpolates the character list.
type sceneTemplate struct {
	intro  string
	middle string
	end    string
}

var ageTemplates = map[AgeGroup]sceneTemplate{
	AgeToddler: {
		intro:  "%s woke up with a big smile, ready for a brand new day.",
		middle: "%s looked around and saw something wonderful.",
		end:    "%s gave everyone a big hug and went home happy and sleepy.",
	},
	AgePreschool: {
		intro:  "Once upon a time, %s set off on a wonderful adventure.",
		middle: "Along the way, %s found something they had never seen before.",
		end:    "%s laughed and cheered, because everything had turned out just right.",
	},
	AgeElementary: {
		intro:  "%s had been waiting for this day for weeks, and it was finally here.",
		middle: "Just when everything seemed ordinary, %s stumbled onto a real mystery.",
		end:    "%s figured it all out in the end, and couldn't wait to tell everyone.",
	},
}

// middleVariation is one of the cycled middle-scene beats.
type middleVariation struct {
	title         string
	setting       string
	themedSetting string
	action        string
	usesTheme     func(themeSet) bool
}

var middleVariations = []middleVariation{
	{
		title:         "The Journey",
		setting:       "A sunny path winding through a meadow full of flowers",
		themedSetting: "A winding trail climbing into tall green mountains",
		action:        "They packed their things and started down the path.",
		usesTheme:     func(t themeSet) bool { return t.adventure },
	},
	{
		title:         "New Friends",
		setting:       "A clearing by a stream where the water sparkles",
		themedSetting: "A busy village square full of friendly faces",
		action:        "They waved hello and made a brand new friend.",
		usesTheme:     func(t themeSet) bool { return t.friendship },
	},
	{
		title:         "The Challenge",
		setting:       "A wobbly old bridge stretched across a deep ravine",
		themedSetting: "A tangled thicket blocking the only way forward",
		action:        "They worked together until the problem was solved.",
		usesTheme:     func(t themeSet) bool { return t.problem },
	},
	{
		title:         "The Discovery",
		setting:       "A quiet grove where the light fell in golden beams",
		themedSetting: "A hidden cave glittering with strange, gentle lights",
		action:        "They found something amazing hidden just out of sight.",
		usesTheme:     func(t themeSet) bool { return t.magic || t.learning },
	},
}

var middleExclamations = []string{
	"Let's go!",
	"Wow, look at that!",
	"We can do this!",
	"This is amazing!",
}

// Synthesize builds a complete story draft from a free-text prompt without
// calling any AI provider. It never fails: degenerate prompts fall through a
// chain of defaults, and sceneCount is clamped to a minimum of three.
func Synthesize(prompt string, sceneCount int, age AgeGroup) *Draft {
	if sceneCount < minSceneCount {
		sceneCount = minSceneCount
	}

	names := extractNames(prompt)
	themes := detectThemes(prompt)
	tpl := templateFor(age)
	cast := joinNames(names)

	scenes := make([]Scene, 0, sceneCount)
	scenes = append(scenes, openingScene(tpl, cast, names, themes))
	for i := 0; i < sceneCount-2; i++ {
		scenes = append(scenes, middleScene(i, tpl, cast, names, themes))
	}
	scenes = append(scenes, closingScene(tpl, cast, names))
	for i := range scenes {
		scenes[i].Number = i + 1
	}

	return &Draft{
		Title:      draftTitle(prompt, cast),
		Characters: buildCharacters(names, themes),
		Scenes:     scenes,
	}
}

func extractNames(prompt string) []string {
	if m := pairPattern.FindStringSubmatch(prompt); m != nil {
		if m[2] != "" {
			return appendUnique(appendUnique(nil, capitalize(m[1])), capitalize(m[2]))
		}
		base := capitalize(strings.TrimSuffix(strings.ToLower(m[1]), "s"))
		return []string{base + " One", base + " Two"}
	}

	var names []string
	for _, pattern := range rolePatterns {
		m := pattern.FindStringSubmatch(prompt)
		if m == nil || len(m[1]) <= 2 {
			continue
		}
		names = appendUnique(names, capitalize(m[1]))
	}
	if len(names) > 0 {
		return names
	}

	for _, token := range strings.Fields(prompt) {
		if len(token) <= 4 {
			continue
		}
		cleaned := nonLetters.ReplaceAllString(token, "")
		if cleaned != "" {
			return []string{capitalize(cleaned)}
		}
	}

	return []string{fallbackName}
}

func detectThemes(prompt string) themeSet {
	lower := strings.ToLower(prompt)
	has := func(theme string) bool {
		for _, keyword := range themeKeywords[theme] {
			if strings.Contains(lower, keyword) {
				return true
			}
		}
		return false
	}
	return themeSet{
		adventure:  has("adventure"),
		friendship: has("friendship"),
		learning:   has("learning"),
		magic:      has("magic"),
		problem:    has("problem"),
	}
}

func templateFor(age AgeGroup) sceneTemplate {
	if tpl, ok := ageTemplates[age]; ok {
		return tpl
	}
	return ageTemplates[AgePreschool]
}

func openingScene(tpl sceneTemplate, cast string, names []string, themes themeSet) Scene {
	setting := "A cozy little house at the edge of a friendly town"
	if themes.magic {
		setting = "A magical forest where the trees sparkle with tiny lights"
	}

	dialogue := make([]DialogueLine, len(names))
	for i, name := range names {
		dialogue[i] = DialogueLine{Character: name, Text: openingLine}
	}

	return Scene{
		Title:     "The Beginning",
		Setting:   setting,
		Narration: fmt.Sprintf(tpl.intro, cast),
		Dialogue:  dialogue,
		Actions:   []string{fmt.Sprintf("%s steps outside and looks around.", cast)},
	}
}

func middleScene(index int, tpl sceneTemplate, cast string, names []string, themes themeSet) Scene {
	variation := middleVariations[index%len(middleVariations)]

	narration := variation.action
	if index == 0 {
		narration = fmt.Sprintf(tpl.middle, cast)
	}

	setting := variation.setting
	if variation.usesTheme(themes) {
		setting = variation.themedSetting
	}

	return Scene{
		Title:     variation.title,
		Setting:   setting,
		Narration: narration,
		Dialogue: []DialogueLine{{
			Character: names[index%len(names)],
			Text:      middleExclamations[index%len(middleExclamations)],
		}},
		Actions: []string{variation.action},
	}
}

func closingScene(tpl sceneTemplate, cast string, names []string) Scene {
	return Scene{
		Title:     "The Happy Ending",
		Setting:   "A big celebration with balloons, streamers, and a table full of treats",
		Narration: fmt.Sprintf(tpl.end, cast),
		Dialogue:  []DialogueLine{{Character: names[0], Text: closingLine}},
		Actions:   []string{"Everyone cheers and celebrates together."},
	}
}

func buildCharacters(names []string, themes themeSet) []Character {
	trait := "brave"
	if themes.friendship {
		trait = "friendly"
	}
	loves := "making friends"
	if themes.adventure {
		loves = "adventures"
	}

	characters := make([]Character, len(names))
	for i, name := range names {
		characters[i] = Character{
			Name:        name,
			Description: fmt.Sprintf("A %s character who loves %s", trait, loves),
			Personality: fixedPersonality,
		}
	}
	return characters
}

func draftTitle(prompt, cast string) string {
	trimmed := strings.TrimSpace(prompt)
	if trimmed == "" {
		return "The Adventure of " + cast
	}
	runes := []rune(trimmed)
	if len(runes) > maxTitleLen {
		return string(runes[:maxTitleLen]) + "..."
	}
	return trimmed
}

func capitalize(word string) string {
	if word == "" {
		return word
	}
	runes := []rune(strings.ToLower(word))
	return strings.ToUpper(string(runes[0])) + string(runes[1:])
}

func joinNames(names []string) string {
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	case 2:
		return names[0] + " and " + names[1]
	}
	return strings.Join(names[:len(names)-1], ", ") + " and " + names[len(names)-1]
}

func appendUnique(names []string, name string) []string {
	for _, existing := range names {
		if existing == name {
			return names
		}
	}
	return append(names, name)
}
