package llm

import (
	"encoding/json"
	"fmt"
)

const systemMessage = "You extract SHORT, VISUAL scenes from scripts for image generation. " +
	"Output MUST be valid JSON only, following the specified format exactly. " +
	"Each scene must have: scene_id, description, visual_focus."

type exampleScene struct {
	SceneID     int    `json:"scene_id"`
	Description string `json:"description"`
	VisualFocus string `json:"visual_focus"`
}

// BuildScenePrompt constructs the system and user messages that instruct the
// model to break a script into image-generation-ready scenes.
func BuildScenePrompt(script string) []ChatMessage {
	example, _ := json.MarshalIndent(exampleScene{
		SceneID:     1,
		Description: "A small village at dawn with mist floating above quiet mud houses and empty streets.",
		VisualFocus: "Wide shot, village at sunrise, misty atmosphere, calm and quiet",
	}, "", "  ")

	userMessage := fmt.Sprintf(
		"You are a cinematic scene breakdown expert.\n\n"+
			"TASK:\n"+
			"- Convert the script into structured image-generation scenes.\n\n"+
			"STRICT RULES:\n"+
			"- Output ONLY valid JSON\n"+
			"- No explanations, no markdown\n"+
			"- Each sentence = one scene\n"+
			"- description max 15 words, concise and visual\n"+
			"- visual_focus describes framing, camera, lighting, location, characters, mood\n\n"+
			"OUTPUT FORMAT:\n"+
			"{ \"Scenes\": [ { \"scene_id\": int, \"description\": str, \"visual_focus\": str } ] }\n\n"+
			"EXAMPLE SCENE:\n%s\n\n"+
			"SCRIPT:\n%s",
		example, script,
	)

	return []ChatMessage{
		{Role: "system", Content: systemMessage},
		{Role: "user", Content: userMessage},
	}
}
