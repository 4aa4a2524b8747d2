package schema_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vbhat161/configarray/schema"
)

func TestValidateRejectsBadFiles(t *testing.T) {
	s := schema.New(nil)
	err := s.Validate(map[string]any{"files": []any{}})
	require.Error(t, err)

	var verr *schema.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "files", verr.Key)
}

func TestValidateAcceptsStringAndAndGroupFiles(t *testing.T) {
	s := schema.New(nil)
	err := s.Validate(map[string]any{
		"name":  "example",
		"files": []any{"**/*.js", []any{"*.and.*", "*.js"}},
	})
	require.NoError(t, err)
}

func TestMergeDropsCoreKeys(t *testing.T) {
	s := schema.New(nil)
	merged := s.Merge([]map[string]any{
		{"name": "a", "files": []any{"*.js"}, "language": "JS"},
		{"ignores": []any{"*.test.js"}, "language": "TS"},
	})
	require.NotContains(t, merged, "name")
	require.NotContains(t, merged, "files")
	require.NotContains(t, merged, "ignores")
	require.Equal(t, "JS", merged["language"])
}

func TestDeepMergeStrategyCombinesNestedObjects(t *testing.T) {
	s := schema.New(map[string]schema.Strategy{
		"languageOptions": schema.DeepMergeStrategy(false),
	})

	merged := s.Merge([]map[string]any{
		{"languageOptions": map[string]any{"ecmaVersion": 2020, "sourceType": "module"}},
		{"languageOptions": map[string]any{"ecmaVersion": 2022}},
	})

	opts, ok := merged["languageOptions"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, 2022, opts["ecmaVersion"])
	require.Equal(t, "module", opts["sourceType"])
}

func TestDeepMergeStrategyRequiredValidation(t *testing.T) {
	strat := schema.DeepMergeStrategy(true)
	err := strat.Validate("not-an-object")
	require.Error(t, err)
}
