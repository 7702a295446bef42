package app

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	"image/png"
	"strings"

	"storytime/internal/story"
)

// narrationText flattens a scene into the text read aloud: narration first,
// then each dialogue line with attribution.
func narrationText(scene story.Scene) string {
	parts := make([]string, 0, len(scene.Dialogue)+1)
	if scene.Narration != "" {
		parts = append(parts, scene.Narration)
	}
	for _, line := range scene.Dialogue {
		parts = append(parts, fmt.Sprintf("%s said, %q", line.Character, line.Text))
	}
	return strings.Join(parts, " ")
}

// storyScript renders the whole draft as plain text for the session's
// script file.
func storyScript(draft *story.Draft) string {
	var b strings.Builder
	b.WriteString(draft.Title)
	b.WriteString("\n")
	for _, scene := range draft.Scenes {
		b.WriteString(fmt.Sprintf("\nScene %d: %s\n", scene.Number, scene.Title))
		b.WriteString(narrationText(scene))
		b.WriteString("\n")
	}
	return b.String()
}

func isValidImage(data []byte) bool {
	if len(data) < 100 {
		return false
	}
	if bytes.HasPrefix(data, []byte{0xFF, 0xD8, 0xFF}) {
		return true
	}
	if bytes.HasPrefix(data, []byte{0x89, 0x50, 0x4E, 0x47}) {
		return true
	}
	_, _, err := image.Decode(bytes.NewReader(data))
	return err == nil
}

var placeholderPalette = []color.RGBA{
	{R: 0x2E, G: 0x4A, B: 0x6F, A: 0xFF},
	{R: 0x4A, G: 0x6F, B: 0x2E, A: 0xFF},
	{R: 0x6F, G: 0x2E, B: 0x4A, A: 0xFF},
	{R: 0x6F, G: 0x5A, B: 0x2E, A: 0xFF},
}

// placeholderImage renders a solid-color frame used when no background art
// was generated for a scene.
func placeholderImage(width, height, sceneIndex int) ([]byte, error) {
	fill := placeholderPalette[sceneIndex%len(placeholderPalette)]
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetRGBA(x, y, fill)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode placeholder: %w", err)
	}
	return buf.Bytes(), nil
}
