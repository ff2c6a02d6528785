package validation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaValidator_Seed(t *testing.T) {
	validator := NewSchemaValidator()

	tests := []struct {
		name      string
		data      string
		wantError bool
		errorMsg  string
	}{
		{
			name: "valid seed",
			data: `{
				"levels": {"u1": 3},
				"lands": [{"id": "L1", "owner_id": "u1", "category": "ore_mine", "reserve": "500"}],
				"tools": [{"id": "T1", "owner_id": "u1", "category": "pickaxe", "durability": 100}],
				"balances": [{"user_id": "u1", "resource": "food", "amount": "48"}]
			}`,
		},
		{
			name: "empty seed",
			data: `{}`,
		},
		{
			name:      "unknown land category",
			data:      `{"lands": [{"id": "L1", "owner_id": "u1", "category": "volcano"}]}`,
			wantError: true,
			errorMsg:  "/lands/0/category",
		},
		{
			name:      "tool missing durability",
			data:      `{"tools": [{"id": "T1", "owner_id": "u1", "category": "axe"}]}`,
			wantError: true,
			errorMsg:  "required",
		},
		{
			name:      "level below one",
			data:      `{"levels": {"u1": 0}}`,
			wantError: true,
			errorMsg:  "/levels/u1",
		},
		{
			name:      "unknown top level key",
			data:      `{"users": []}`,
			wantError: true,
			errorMsg:  "additionalProperties",
		},
		{
			name:      "invalid JSON",
			data:      `{"levels": }`,
			wantError: true,
			errorMsg:  "parse JSON",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateBytes([]byte(tt.data), SchemaSeed)
			if tt.wantError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorMsg)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestSchemaValidator_ValidateFile(t *testing.T) {
	validator := NewSchemaValidator()
	dataPath := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, os.WriteFile(dataPath, []byte(`{"levels": {"u1": 2}}`), 0644))

	assert.NoError(t, validator.ValidateFile(dataPath, SchemaSeed))
	assert.Error(t, validator.ValidateFile(filepath.Join(t.TempDir(), "missing.json"), SchemaSeed))
}

func TestSchemaValidator_UnknownSchema(t *testing.T) {
	err := NewSchemaValidator().ValidateBytes([]byte(`{}`), "missing.schema.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load schema")
}

func TestSchemaValidator_CachesCompiledSchema(t *testing.T) {
	v := NewSchemaValidator().(*validator)
	require.NoError(t, v.ValidateBytes([]byte(`{}`), SchemaSeed))
	require.NoError(t, v.ValidateBytes([]byte(`{}`), SchemaSeed))
	assert.Len(t, v.schemas, 1)
}
