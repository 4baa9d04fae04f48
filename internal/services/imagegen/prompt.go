package imagegen

import (
	"fmt"
	"strings"

	"storyreel/internal/scenes"
)

// globalStyle keeps characters and grading consistent across every scene
// of one story.
const globalStyle = "cinematic storytelling, ultra realistic, consistent characters, " +
	"natural proportions, no face distortion, sharp focus, film color grading"

// BuildPrompt composes the text-to-image prompt for one scene from its
// description and visual focus.
func BuildPrompt(scene scenes.Scene) string {
	description := strings.TrimSpace(scene.Description)
	focus := strings.TrimSpace(scene.VisualFocus)
	return fmt.Sprintf(
		"Scene %d: %s Visual composition: %s. Lighting is soft and cinematic, realistic shadows. High detail, 4K quality. %s.",
		scene.SceneID, description, focus, globalStyle)
}
