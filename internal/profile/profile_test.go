package profile

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeRejectsNonObject(t *testing.T) {
	t.Parallel()

	for _, raw := range []any{nil, "string", 42, true, []any{"a"}} {
		_, ok := Normalize(raw)
		assert.False(t, ok, "expected rejection for %T", raw)
	}
}

func TestNormalizeProjectsAllFields(t *testing.T) {
	t.Parallel()

	raw := map[string]any{
		"company_name":        "  Acme Corp  ",
		"company_description": "Widgets and more.",
		"poc":                 " Jane Smith ",
		"service_lines":       []any{"Tax", "tax", "Audit"},
		"tier1_keywords":      "cpa, accounting; bookkeeping",
		"tier2_keywords":      []any{},
		"emails":              []any{"info@acme.com", "INFO@ACME.COM"},
	}

	got, ok := Normalize(raw)
	require.True(t, ok)

	require.NotNil(t, got.CompanyName)
	assert.Equal(t, "Acme Corp", *got.CompanyName)
	require.NotNil(t, got.CompanyDescription)
	assert.Equal(t, "Widgets and more.", *got.CompanyDescription)
	require.NotNil(t, got.POC)
	assert.Equal(t, "Jane Smith", *got.POC)
	assert.Equal(t, []string{"Tax", "Audit"}, got.ServiceLines)
	assert.Equal(t, []string{"cpa", "accounting", "bookkeeping"}, got.Tier1Keywords)
	assert.Equal(t, []string{}, got.Tier2Keywords)
	assert.Equal(t, []string{"info@acme.com"}, got.Emails)
}

func TestNormalizeLegacyServiceLineFallback(t *testing.T) {
	t.Parallel()

	got, ok := Normalize(map[string]any{
		"company_name": "  ",
		"service_line": "A, B; C",
	})
	require.True(t, ok)

	assert.Nil(t, got.CompanyName)
	assert.Equal(t, []string{"A", "B", "C"}, got.ServiceLines)
	assert.Empty(t, got.Tier1Keywords)
	assert.Empty(t, got.Tier2Keywords)
	assert.Empty(t, got.Emails)
	assert.Nil(t, got.CompanyDescription)
	assert.Nil(t, got.POC)
}

func TestNormalizePluralKeyWinsOverLegacy(t *testing.T) {
	t.Parallel()

	got, ok := Normalize(map[string]any{
		"service_lines": []any{"Consulting"},
		"service_line":  "Ignored",
	})
	require.True(t, ok)
	assert.Equal(t, []string{"Consulting"}, got.ServiceLines)
}

func TestNormalizeIgnoresUnknownKeys(t *testing.T) {
	t.Parallel()

	got, ok := Normalize(map[string]any{
		"company_name": "Acme",
		"confidence":   0.9,
		"reasoning":    "found on homepage",
	})
	require.True(t, ok)
	require.NotNil(t, got.CompanyName)
	assert.Equal(t, "Acme", *got.CompanyName)
}

func TestNormalizeFromDecodedJSON(t *testing.T) {
	t.Parallel()

	var raw any
	err := json.Unmarshal([]byte(`{
		"company_name": "Acme",
		"service_lines": ["Tax", "Audit"],
		"emails": null,
		"poc": null
	}`), &raw)
	require.NoError(t, err)

	got, ok := Normalize(raw)
	require.True(t, ok)
	assert.Equal(t, []string{"Tax", "Audit"}, got.ServiceLines)
	assert.Equal(t, []string{}, got.Emails)
	assert.Nil(t, got.POC)
}

func TestProfileJSONShape(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(Empty())
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"company_name": null,
		"company_description": null,
		"service_lines": [],
		"tier1_keywords": [],
		"tier2_keywords": [],
		"emails": [],
		"poc": null
	}`, string(data))
}
