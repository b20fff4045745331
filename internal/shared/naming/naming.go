// Package naming holds the identifier rules shared by the runtime registry
// and the offline generator, so both sides derive the same exposed names.
package naming

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxIdentifierLength bounds exposed binding and window names.
const MaxIdentifierLength = 128

// IdentifierPattern matches a plain JavaScript identifier (ASCII subset).
var IdentifierPattern = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// Reserved words that cannot be used as bare member names in generated stubs.
var reserved = map[string]struct{}{
	"break": {}, "case": {}, "catch": {}, "class": {}, "const": {}, "continue": {},
	"debugger": {}, "default": {}, "delete": {}, "do": {}, "else": {}, "export": {},
	"extends": {}, "finally": {}, "for": {}, "function": {}, "if": {}, "import": {},
	"in": {}, "instanceof": {}, "new": {}, "return": {}, "super": {}, "switch": {},
	"this": {}, "throw": {}, "try": {}, "typeof": {}, "var": {}, "void": {},
	"while": {}, "with": {}, "yield": {}, "let": {}, "static": {}, "enum": {},
	"await": {}, "null": {}, "true": {}, "false": {},
}

// Parameter names the generated forwarder body depends on. A parameter with
// one of these names would shadow it.
var shadowing = map[string]struct{}{
	"window": {}, "globalThis": {}, "arguments": {}, "eval": {},
}

// LowerCamel lowercases the first rune only: "RandomNumber" -> "randomNumber",
// "URL" -> "uRL".
func LowerCamel(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}

// IsIdentifier reports whether s can be used as a member name in page script.
func IsIdentifier(s string) bool {
	if !IdentifierPattern.MatchString(s) {
		return false
	}
	_, isReserved := reserved[s]
	return !isReserved
}

// ValidateIdentifier validates an exposed name with length and content checks.
func ValidateIdentifier(value, fieldName string) error {
	if value == "" {
		return fmt.Errorf("%s is required", fieldName)
	}
	if len(value) > MaxIdentifierLength {
		return fmt.Errorf("%s must not exceed %d characters", fieldName, MaxIdentifierLength)
	}
	if strings.Contains(value, "\x00") {
		return fmt.Errorf("%s contains invalid characters", fieldName)
	}
	if !IsIdentifier(value) {
		return fmt.Errorf("%s %q is not a valid script identifier", fieldName, value)
	}
	return nil
}

// ValidateParameter is ValidateIdentifier for binding parameter names, which
// additionally must not shadow the globals a forwarder reads.
func ValidateParameter(value string) error {
	if err := ValidateIdentifier(value, "parameter name"); err != nil {
		return err
	}
	if _, ok := shadowing[value]; ok {
		return fmt.Errorf("parameter name %q shadows a page global", value)
	}
	return nil
}
