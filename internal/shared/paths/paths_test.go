package paths

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWindowRoutes(t *testing.T) {
	w := For("calcWindow")

	assert.Equal(t, "/windows/calcWindow/", w.Page())
	assert.Equal(t, "/windows/calcWindow/manifest", w.Manifest())
	assert.Equal(t, "/windows/calcWindow/bridge.js", w.Script())
	assert.Equal(t, "/windows/calcWindow/ws", w.Socket())
	assert.Equal(t, "/windows/calcWindow/app/css/site.css", w.Asset("css/site.css"))
	assert.Equal(t, "/windows/calcWindow/app/x.js", w.Asset("../../x.js"))
	assert.Equal(t, "/windows/a%20b/", For("a b").Page())
}
