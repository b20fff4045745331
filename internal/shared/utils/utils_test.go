package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestETag(t *testing.T) {
	tag := ETag([]byte("bridge"))
	assert.Len(t, tag, 18)
	assert.Equal(t, tag, ETag([]byte("bridge")))
	assert.NotEqual(t, tag, ETag([]byte("bridge2")))

	assert.True(t, MatchesETag(tag, tag))
	assert.True(t, MatchesETag(`"other", W/`+tag, tag))
	assert.True(t, MatchesETag("*", tag))
	assert.False(t, MatchesETag("", tag))
	assert.False(t, MatchesETag(`"other"`, tag))
}

func TestValidateMessage(t *testing.T) {
	assert.NoError(t, ValidateMessage(`bind:{"id":"1","name":"add","args":[]}`, 0))
	assert.Error(t, ValidateMessage(strings.Repeat("x", 11), 10))
	assert.Error(t, ValidateMessage("\xff\xfe", 0))
}

func TestValidateJSON(t *testing.T) {
	assert.NoError(t, ValidateJSON([]byte(`{"a":[1,2,{"b":3}]}`), 3))
	assert.Error(t, ValidateJSON([]byte(`[[[[1]]]]`), 2))
	assert.Error(t, ValidateJSON([]byte(`{`), 2))
}

func TestValidateAssetPath(t *testing.T) {
	tests := []struct {
		path    string
		wantErr bool
	}{
		{"index.html", false},
		{"js/main.js", false},
		{"", true},
		{"../secret", true},
		{"/etc/passwd", true},
		{"js/.hidden", true},
		{strings.Repeat("a", MaxAssetPath+1), true},
	}
	for _, tt := range tests {
		err := ValidateAssetPath(tt.path)
		if tt.wantErr {
			assert.Error(t, err, tt.path)
		} else {
			assert.NoError(t, err, tt.path)
		}
	}
}
