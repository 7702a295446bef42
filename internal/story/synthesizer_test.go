package story

import (
	"reflect"
	"strings"
	"testing"
)

func TestSynthesizeSceneCount(t *testing.T) {
	for _, n := range []int{3, 5, 8} {
		draft := Synthesize("a brave rabbit", n, AgePreschool)
		if len(draft.Scenes) != n {
			t.Errorf("scene count = %d, want %d", len(draft.Scenes), n)
		}
		for i, scene := range draft.Scenes {
			if scene.Number != i+1 {
				t.Errorf("scenes[%d].Number = %d, want %d", i, scene.Number, i+1)
			}
		}
	}
}

func TestSynthesizeClampsSceneCount(t *testing.T) {
	draft := Synthesize("a fox", 1, AgeToddler)
	if len(draft.Scenes) != 3 {
		t.Errorf("scene count = %d, want 3", len(draft.Scenes))
	}
}

func TestExtractNames(t *testing.T) {
	tests := []struct {
		name   string
		prompt string
		want   []string
	}{
		{
			name:   "twoOfAKind",
			prompt: "two rabbits go on a picnic",
			want:   []string{"Rabbit One", "Rabbit Two"},
		},
		{
			name:   "twoNamed",
			prompt: "two cats and dogs have a race",
			want:   []string{"Cats", "Dogs"},
		},
		{
			name:   "rolePattern",
			prompt: "a dragon who learns to fly",
			want:   []string{"Dragon"},
		},
		{
			name:   "storyOf",
			prompt: "story of penguin",
			want:   []string{"Penguin"},
		},
		{
			name:   "longTokenFallback",
			prompt: "dinosaurs!",
			want:   []string{"Dinosaurs"},
		},
		{
			name:   "emptyPrompt",
			prompt: "",
			want:   []string{"Hero"},
		},
		{
			name:   "shortTokensOnly",
			prompt: "up up up",
			want:   []string{"Hero"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractNames(tt.prompt)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("extractNames(%q) = %v, want %v", tt.prompt, got, tt.want)
			}
		})
	}
}

func TestSynthesizeEmptyPrompt(t *testing.T) {
	draft := Synthesize("", 3, AgeToddler)

	if len(draft.Characters) != 1 || draft.Characters[0].Name != "Hero" {
		t.Errorf("characters = %+v, want single Hero", draft.Characters)
	}
	if draft.Title != "The Adventure of Hero" {
		t.Errorf("title = %q, want %q", draft.Title, "The Adventure of Hero")
	}
}

func TestSynthesizeDeterministic(t *testing.T) {
	first := Synthesize("two rabbits on an adventure", 5, AgeElementary)
	second := Synthesize("two rabbits on an adventure", 5, AgeElementary)

	if !reflect.DeepEqual(first, second) {
		t.Error("identical inputs produced different drafts")
	}
}

func TestSynthesizeTitleTruncation(t *testing.T) {
	long := strings.Repeat("a very long prompt ", 10)
	draft := Synthesize(long, 3, AgePreschool)

	if !strings.HasSuffix(draft.Title, "...") {
		t.Errorf("title %q not truncated with ellipsis", draft.Title)
	}
	if len([]rune(draft.Title)) != maxTitleLen+3 {
		t.Errorf("title length = %d, want %d", len([]rune(draft.Title)), maxTitleLen+3)
	}
}

func TestSynthesizeSceneStructure(t *testing.T) {
	draft := Synthesize("two rabbits and squirrels", 8, AgePreschool)

	if draft.Scenes[0].Title != "The Beginning" {
		t.Errorf("first scene title = %q", draft.Scenes[0].Title)
	}
	if len(draft.Scenes[0].Dialogue) != len(draft.Characters) {
		t.Errorf("opening dialogue lines = %d, want one per character (%d)",
			len(draft.Scenes[0].Dialogue), len(draft.Characters))
	}

	last := draft.Scenes[len(draft.Scenes)-1]
	if last.Title != "The Happy Ending" {
		t.Errorf("last scene title = %q", last.Title)
	}
	if len(last.Dialogue) != 1 || last.Dialogue[0].Character != draft.Characters[0].Name {
		t.Errorf("closing dialogue = %+v, want single line from %q", last.Dialogue, draft.Characters[0].Name)
	}

	// Middle scenes cycle through the four variations in order.
	wantTitles := []string{"The Journey", "New Friends", "The Challenge", "The Discovery", "The Journey", "New Friends"}
	for i, want := range wantTitles {
		if got := draft.Scenes[i+1].Title; got != want {
			t.Errorf("scenes[%d].Title = %q, want %q", i+1, got, want)
		}
	}

	// The first middle scene narrates the template's middle sentence, not the
	// variation action.
	if draft.Scenes[1].Narration == draft.Scenes[1].Actions[0] {
		t.Error("first middle scene should use the template middle narration")
	}
	if draft.Scenes[2].Narration != draft.Scenes[2].Actions[0] {
		t.Error("later middle scenes should narrate the variation action")
	}
}

func TestSynthesizeThemes(t *testing.T) {
	magic := Synthesize("a wizard casts a magic spell", 3, AgePreschool)
	if !strings.Contains(magic.Scenes[0].Setting, "magical") {
		t.Errorf("magic opening setting = %q", magic.Scenes[0].Setting)
	}

	plain := Synthesize("a turtle takes a nap", 3, AgePreschool)
	if strings.Contains(plain.Scenes[0].Setting, "magical") {
		t.Errorf("plain opening setting = %q", plain.Scenes[0].Setting)
	}

	friendly := Synthesize("a bear helps his friend", 3, AgePreschool)
	if !strings.Contains(friendly.Characters[0].Description, "friendly") {
		t.Errorf("friendship description = %q", friendly.Characters[0].Description)
	}

	adventurous := Synthesize("a bear goes on a quest for treasure", 3, AgePreschool)
	if !strings.Contains(adventurous.Characters[0].Description, "adventures") {
		t.Errorf("adventure description = %q", adventurous.Characters[0].Description)
	}
}

func TestJoinNames(t *testing.T) {
	tests := []struct {
		names []string
		want  string
	}{
		{[]string{"Ann"}, "Ann"},
		{[]string{"Ann", "Ben"}, "Ann and Ben"},
		{[]string{"Ann", "Ben", "Cat"}, "Ann, Ben and Cat"},
	}
	for _, tt := range tests {
		if got := joinNames(tt.names); got != tt.want {
			t.Errorf("joinNames(%v) = %q, want %q", tt.names, got, tt.want)
		}
	}
}

func TestParseAgeGroup(t *testing.T) {
	if _, ok := ParseAgeGroup("preschool"); !ok {
		t.Error("preschool should parse")
	}
	if _, ok := ParseAgeGroup("adult"); ok {
		t.Error("adult should not parse")
	}
}
