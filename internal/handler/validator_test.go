package handler

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type categoryStruct struct {
	Category string `validate:"toolcategory"`
}

func TestValidator_ResourceValidation(t *testing.T) {
	InitValidator()
	v := GetValidator()

	tests := []struct {
		name     string
		resource string
		wantErr  bool
	}{
		{"iron", "iron", false},
		{"yld", "yld", false},
		{"uppercase", "STONE", false},
		{"empty", "", true},
		{"unknown", "gold", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateStruct(SetRateRequest{Resource: tt.resource})
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidator_ToolCategoryValidation(t *testing.T) {
	InitValidator()
	v := GetValidator()

	assert.NoError(t, v.ValidateStruct(categoryStruct{Category: ""}), "empty allowed when not required")
	assert.NoError(t, v.ValidateStruct(categoryStruct{Category: "Pickaxe"}))
	assert.Error(t, v.ValidateStruct(categoryStruct{Category: "shovel"}))
}

func TestValidator_StartSessionRequest(t *testing.T) {
	InitValidator()
	v := GetValidator()

	tests := []struct {
		name    string
		req     StartSessionRequest
		wantErr bool
	}{
		{"valid", StartSessionRequest{LandID: "land-1", ToolIDs: []string{"t-1", "t-2"}}, false},
		{"missing land", StartSessionRequest{ToolIDs: []string{"t-1"}}, true},
		{"land with newline", StartSessionRequest{LandID: "land\n1", ToolIDs: []string{"t-1"}}, true},
		{"nil tools", StartSessionRequest{LandID: "land-1"}, true},
		{"empty tools", StartSessionRequest{LandID: "land-1", ToolIDs: []string{}}, true},
		{"blank tool id", StartSessionRequest{LandID: "land-1", ToolIDs: []string{""}}, true},
		{"duplicate tool ids", StartSessionRequest{LandID: "land-1", ToolIDs: []string{"t-1", "t-1"}}, true},
		{"long tool id", StartSessionRequest{LandID: "land-1", ToolIDs: []string{strings.Repeat("x", 65)}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateStruct(tt.req)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFormatValidationError(t *testing.T) {
	InitValidator()
	err := GetValidator().ValidateStruct(StartSessionRequest{})
	require.Error(t, err)

	fields := FormatValidationError(err)
	assert.Equal(t, "This field is required", fields["landid"])
	assert.Equal(t, "This field is required", fields["toolids"])

	assert.Nil(t, FormatValidationError(nil))
	assert.Equal(t, "Invalid request format", FormatValidationError(assert.AnError)["error"])
}
