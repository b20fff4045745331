package naming

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLowerCamel(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"RandomNumber", "randomNumber"},
		{"CalcWindow", "calcWindow"},
		{"add", "add"},
		{"URL", "uRL"},
		{"X", "x"},
		{"", ""},
		{"Émile", "émile"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, LowerCamel(tt.in))
		})
	}
}

func TestValidateParameter(t *testing.T) {
	assert.NoError(t, ValidateParameter("points"))
	assert.NoError(t, ValidateParameter("bridge"))
	for _, name := range []string{"window", "globalThis", "arguments", "eval", "new", "1x"} {
		assert.Error(t, ValidateParameter(name), name)
	}
}

func TestValidateIdentifier(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{"simple", "add", false},
		{"camel", "randomNumber", false},
		{"dollar and underscore", "$_x1", false},
		{"empty", "", true},
		{"leading digit", "1add", true},
		{"dash", "add-one", true},
		{"dot", "calc.add", true},
		{"reserved", "delete", true},
		{"null byte", "a\x00b", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateIdentifier(tt.value, "name")
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
