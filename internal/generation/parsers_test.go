package generation

import (
	"errors"
	"testing"

	"storyboard-server/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanAIResponse(t *testing.T) {
	assert.Equal(t, `{"a":1}`, cleanAIResponse("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `[1]`, cleanAIResponse("```\n[1]\n```  "))
	assert.Equal(t, `{"a":1}`, cleanAIResponse("  {\"a\":1}\n"))
}

func TestParseSuggestions(t *testing.T) {
	t.Run("valid payload", func(t *testing.T) {
		s, err := ParseSuggestions(`{"characters":[{"name":"Ada","description":"an inventor"},{"name":"Bo","description":"a cat"}],"setting":"a foggy harbor"}`)
		require.NoError(t, err)
		assert.Equal(t, domain.Suggestions{
			Characters: []domain.Character{{Name: "Ada", Description: "an inventor"}, {Name: "Bo", Description: "a cat"}},
			Setting:    "a foggy harbor",
		}, s)
	})

	t.Run("fenced payload", func(t *testing.T) {
		s, err := ParseSuggestions("```json\n{\"characters\":[],\"setting\":\"moon\"}\n```")
		require.NoError(t, err)
		assert.Empty(t, s.Characters)
		assert.Equal(t, "moon", s.Setting)
	})

	malformed := map[string]string{
		"not json":           `Sure! Here are your characters`,
		"truncated":          `{"characters":[{"name":"Ada"`,
		"missing characters": `{"setting":"a foggy harbor"}`,
		"missing setting":    `{"characters":[]}`,
		"null setting":       `{"characters":[],"setting":null}`,
		"empty setting":      `{"characters":[],"setting":""}`,
		"null document":      `null`,
		"array document":     `[{"name":"Ada"}]`,
	}
	for name, raw := range malformed {
		t.Run(name, func(t *testing.T) {
			_, err := ParseSuggestions(raw)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedResponse))
			assert.Equal(t, msgUnparsableSuggestions, err.Error())
		})
	}
}

func TestParseStoryboard(t *testing.T) {
	t.Run("keeps order and numbering as received", func(t *testing.T) {
		scenes, err := ParseStoryboard(`[
			{"scene":2,"visual_prompt":"b","dialogue":"None","sound_effects":"None"},
			{"scene":1,"visual_prompt":"a","dialogue":"Hi","sound_effects":"rain"},
			{"scene":1,"visual_prompt":"c","dialogue":"None","sound_effects":"None"}
		]`)
		require.NoError(t, err)
		require.Len(t, scenes, 3)
		assert.Equal(t, []int{2, 1, 1}, []int{scenes[0].Scene, scenes[1].Scene, scenes[2].Scene})
		assert.Equal(t, "Hi", scenes[1].Dialogue)
		assert.Equal(t, "rain", scenes[1].SoundEffects)
	})

	t.Run("empty array", func(t *testing.T) {
		scenes, err := ParseStoryboard(`[]`)
		require.NoError(t, err)
		assert.NotNil(t, scenes)
		assert.Empty(t, scenes)
	})

	t.Run("one mistyped scene rejects the whole array", func(t *testing.T) {
		scenes, err := ParseStoryboard(`[
			{"scene":1,"visual_prompt":"a","dialogue":"None","sound_effects":"None"},
			{"scene":"2","visual_prompt":"b","dialogue":"None","sound_effects":"None"}
		]`)
		assert.Nil(t, scenes)
		assert.True(t, errors.Is(err, ErrMalformedResponse))
	})

	malformed := map[string]string{
		"object":       `{"scenes":[]}`,
		"not json":     `scene one: a robot`,
		"broken array": `[{"scene":1,`,
		"wrong types":  `[{"scene":"one","visual_prompt":"a","dialogue":"None","sound_effects":"None"}]`,
		"null":         `null`,
	}
	for name, raw := range malformed {
		t.Run(name, func(t *testing.T) {
			scenes, err := ParseStoryboard(raw)
			require.Error(t, err)
			assert.Nil(t, scenes)
			assert.True(t, errors.Is(err, ErrMalformedResponse))
			assert.Equal(t, msgUnparsableStoryboard, err.Error())
		})
	}
}
