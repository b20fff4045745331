package source

import (
	"fmt"
	"go/ast"
	"strings"

	"github.com/GriffinCanCode/webbridge/internal/shared/naming"
)

// Directive marks a method as a binding.
const Directive = "//bridge:bind"

type directive struct {
	name   string
	global bool
}

// parseDirective finds the binding directive in a doc comment.
func parseDirective(doc *ast.CommentGroup) (directive, bool, error) {
	var d directive
	if doc == nil {
		return d, false, nil
	}
	found := false
	for _, c := range doc.List {
		rest, ok := strings.CutPrefix(c.Text, Directive)
		if !ok || (rest != "" && rest[0] != ' ' && rest[0] != '\t') {
			continue
		}
		if found {
			return d, false, fmt.Errorf("duplicate %s directive", Directive)
		}
		found = true
		for _, opt := range strings.Fields(rest) {
			switch {
			case opt == "global":
				d.global = true
			case strings.HasPrefix(opt, "name="):
				d.name = strings.TrimPrefix(opt, "name=")
				if err := naming.ValidateIdentifier(d.name, "name"); err != nil {
					return d, false, err
				}
			default:
				return d, false, fmt.Errorf("unknown %s option %q", Directive, opt)
			}
		}
	}
	return d, found, nil
}
