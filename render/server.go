package render

import (
	"fmt"
	"strings"
)

// serverConfig renders odin_server.cfg.
func serverConfig(b *Build) ([]byte, error) {
	stanza, err := b.Control.AdapterStanza()
	if err != nil {
		return nil, err
	}

	var s strings.Builder
	s.WriteString("[server]\n")
	s.WriteString("debug_mode = 0\n")
	fmt.Fprintf(&s, "http_port = %d\n", b.Control.Port)
	fmt.Fprintf(&s, "http_addr = %s\n", b.Control.IP)
	s.WriteString("static_path = ./static\n")
	fmt.Fprintf(&s, "adapters = %s\n", strings.Join(b.Profile.AdapterNames(), ", "))
	s.WriteString("\n[tornado]\n")
	s.WriteString("logging = error\n")
	s.WriteString("\n")
	s.WriteString(stanza)
	s.WriteString("\n")
	for _, a := range b.Profile.Adapters {
		fmt.Fprintf(&s, "\n[adapter.%s]\nmodule = %s\n", a.Name, a.Module)
	}

	return []byte(s.String()), nil
}
