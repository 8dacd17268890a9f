package generation

import (
	"encoding/json"
	"testing"

	"storyboard-server/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuggestionsPrompt(t *testing.T) {
	p := SuggestionsPrompt("a lighthouse keeper's last night", domain.LanguageFrench)

	assert.Contains(t, p, "suggest two main characters and a setting")
	assert.Contains(t, p, "Topic: \"a lighthouse keeper's last night\"\n")
	assert.Contains(t, p, "Language: French\n")
}

func TestStoryboardPrompt(t *testing.T) {
	input := domain.UserInput{Topic: "space whales", Duration: 65, Language: domain.LanguageJapanese, AspectRatio: domain.AspectRatioPortrait}
	suggestions := domain.Suggestions{
		Characters: []domain.Character{{Name: "Kai", Description: "a pilot"}, {Name: "Nami", Description: "a whale"}},
		Setting:    "the rings of Saturn",
	}

	p := StoryboardPrompt(input, suggestions, domain.SceneCount(input.Duration))

	assert.Contains(t, p, "exactly 7 scenes for a 65-second video")
	assert.Contains(t, p, "Language: Japanese\n")
	assert.Contains(t, p, "Characters: Kai: a pilot; Nami: a whale\n")
	assert.Contains(t, p, "Setting: the rings of Saturn\n")
	assert.Contains(t, p, `If none, write "None".`)
	assert.Contains(t, p, "conclude within the 7 scenes.")
}

func TestSchemas(t *testing.T) {
	var suggestions map[string]interface{}
	require.NoError(t, json.Unmarshal(SuggestionsSchema.Definition, &suggestions))
	assert.Equal(t, "object", suggestions["type"])
	assert.ElementsMatch(t, []interface{}{"characters", "setting"}, suggestions["required"])

	var storyboard map[string]interface{}
	require.NoError(t, json.Unmarshal(StoryboardSchema.Definition, &storyboard))
	assert.Equal(t, "array", storyboard["type"])
	items := storyboard["items"].(map[string]interface{})
	assert.ElementsMatch(t, []interface{}{"scene", "visual_prompt", "dialogue", "sound_effects"}, items["required"])

	assert.Equal(t, "object", rootType(SuggestionsSchema.Definition))
	assert.Equal(t, "array", rootType(StoryboardSchema.Definition))
	assert.Equal(t, "", rootType(json.RawMessage(`not json`)))
}
