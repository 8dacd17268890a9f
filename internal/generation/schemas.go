package generation

import "encoding/json"

// Schema описывает structured output для одного запроса.
type Schema struct {
	Name        string
	Description string
	Definition  json.RawMessage
}

// suggestionsSchemaDef объект с двумя персонажами и местом действия.
var suggestionsSchemaDef = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"characters": map[string]interface{}{
			"type":        "array",
			"description": "An array of characters for the story",
			"items": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"name":        map[string]interface{}{"type": "string", "description": "Character's name"},
					"description": map[string]interface{}{"type": "string", "description": "A brief description of the character"},
				},
				"required":             []string{"name", "description"},
				"additionalProperties": false,
			},
		},
		"setting": map[string]interface{}{
			"type":        "string",
			"description": "The setting of the story",
		},
	},
	"required":             []string{"characters", "setting"},
	"additionalProperties": false,
}

// storyboardSchemaDef массив сцен.
var storyboardSchemaDef = map[string]interface{}{
	"type": "array",
	"items": map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"scene":         map[string]interface{}{"type": "integer"},
			"visual_prompt": map[string]interface{}{"type": "string"},
			"dialogue":      map[string]interface{}{"type": "string"},
			"sound_effects": map[string]interface{}{"type": "string"},
		},
		"required":             []string{"scene", "visual_prompt", "dialogue", "sound_effects"},
		"additionalProperties": false,
	},
}

var (
	SuggestionsSchema = Schema{
		Name:        "story_suggestions",
		Description: "Two main characters and a setting for a short video",
		Definition:  mustMarshal(suggestionsSchemaDef),
	}
	StoryboardSchema = Schema{
		Name:        "storyboard",
		Description: "Ordered scenes of a short video",
		Definition:  mustMarshal(storyboardSchemaDef),
	}
)

func mustMarshal(v interface{}) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return data
}

// rootType возвращает значение "type" корня схемы.
func rootType(def json.RawMessage) string {
	var root struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(def, &root); err != nil {
		return ""
	}
	return root.Type
}
