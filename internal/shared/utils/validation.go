package utils

import (
	"fmt"
	"io/fs"
	"strings"
	"unicode/utf8"

	"github.com/bytedance/sonic"
)

// Message limits
const (
	MaxMessageSize = 1 * 1024 * 1024 // 1MB - single page message
	MaxJSONDepth   = 32
	MaxAssetPath   = 512
)

// ValidateMessage checks one inbound page message for size and encoding.
func ValidateMessage(message string, maxSize int) error {
	if maxSize <= 0 {
		maxSize = MaxMessageSize
	}
	if len(message) > maxSize {
		return fmt.Errorf("message size %d bytes exceeds maximum %d bytes", len(message), maxSize)
	}
	if !utf8.ValidString(message) {
		return fmt.Errorf("message is not valid UTF-8")
	}
	return nil
}

// ValidateJSON checks that data is JSON nested no deeper than maxDepth.
func ValidateJSON(data []byte, maxDepth int) error {
	var js interface{}
	if err := sonic.Unmarshal(data, &js); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return ValidateJSONDepth(js, maxDepth)
}

// ValidateJSONDepth checks if JSON nesting depth is within limits
func ValidateJSONDepth(data interface{}, maxDepth int) error {
	return checkDepth(data, 0, maxDepth)
}

func checkDepth(data interface{}, currentDepth int, maxDepth int) error {
	if currentDepth > maxDepth {
		return fmt.Errorf("JSON nesting depth %d exceeds maximum %d", currentDepth, maxDepth)
	}

	switch v := data.(type) {
	case map[string]interface{}:
		for _, value := range v {
			if err := checkDepth(value, currentDepth+1, maxDepth); err != nil {
				return err
			}
		}
	case []interface{}:
		for _, value := range v {
			if err := checkDepth(value, currentDepth+1, maxDepth); err != nil {
				return err
			}
		}
	}

	return nil
}

// ValidateAssetPath checks a resource path requested under a window's app
// scheme. Paths are slash separated, relative and free of dot segments.
func ValidateAssetPath(p string) error {
	if p == "" {
		return fmt.Errorf("asset path is required")
	}
	if len(p) > MaxAssetPath {
		return fmt.Errorf("asset path must be at most %d characters", MaxAssetPath)
	}
	if !fs.ValidPath(p) {
		return fmt.Errorf("invalid asset path %q", p)
	}
	for _, segment := range strings.Split(p, "/") {
		if strings.HasPrefix(segment, ".") {
			return fmt.Errorf("hidden asset path %q", p)
		}
	}
	return nil
}
