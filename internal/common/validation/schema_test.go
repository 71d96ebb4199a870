package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSchema = `{
  "type": "object",
  "required": ["contentId", "tier"],
  "properties": {
    "contentId": {"type": "string", "minLength": 1},
    "tier": {"type": "string", "enum": ["adult", "elementary"]},
    "refs": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["book"],
        "properties": {"book": {"type": "string"}}
      }
    }
  }
}`

func TestSchema_Validate(t *testing.T) {
	schema := MustCompile(testSchema)

	tests := []struct {
		name      string
		doc       interface{}
		wantValid bool
		wantField string
	}{
		{"valid map", map[string]interface{}{"contentId": "c-1", "tier": "adult"}, true, ""},
		{"valid bytes", []byte(`{"contentId":"c-1","tier":"elementary"}`), true, ""},
		{"missing required", `{"tier":"adult"}`, false, "contentId"},
		{"bad enum", map[string]interface{}{"contentId": "c-1", "tier": "toddler"}, false, "tier"},
		{"nested required", `{"contentId":"c-1","tier":"adult","refs":[{}]}`, false, "refs"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := schema.Validate(tt.doc)
			require.NoError(t, err)
			assert.Equal(t, tt.wantValid, result.Valid)
			if tt.wantValid {
				assert.Empty(t, result.Errors)
				assert.Empty(t, result.Error())
				return
			}
			assert.True(t, result.HasErrors(tt.wantField), "errors: %v", result.GetErrorMessages())
			assert.NotEmpty(t, result.Error())
		})
	}
}

func TestSchema_ValidateMalformedJSON(t *testing.T) {
	schema := MustCompile(testSchema)
	_, err := schema.Validate(`{"contentId":`)
	assert.Error(t, err)
}

func TestCompile_InvalidSchema(t *testing.T) {
	_, err := Compile(`{"type": 12}`)
	assert.Error(t, err)

	assert.Panics(t, func() { MustCompile(`not json`) })
}
