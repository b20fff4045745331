package bindgen

import (
	"strings"

	"github.com/GriffinCanCode/webbridge/internal/bindgen/meta"
	"github.com/GriffinCanCode/webbridge/internal/bridge/script"
)

// Stubs renders a self-contained page script: the runtime installer
// followed by one forwarder per binding.
func Stubs(snap *meta.Snapshot, namespace string) string {
	var sb strings.Builder
	sb.WriteString(header)
	sb.WriteString(script.Bootstrap(namespace))
	sb.WriteString("\n")
	for _, w := range snap.Windows {
		sb.WriteString(script.WindowInit(namespace, w.Namespace()))
		for _, m := range w.Methods {
			sb.WriteString(script.Stub(namespace, w.Namespace(), stubSpec(m)))
		}
	}
	return sb.String()
}

func stubSpec(m meta.Method) script.StubSpec {
	params := make([]string, len(m.Params))
	for i, p := range m.Params {
		params[i] = p.Name
	}
	return script.StubSpec{Name: m.Exposed(), Params: params, Global: m.Global}
}
