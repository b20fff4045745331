// Package protocol implements the bridge wire format.
//
// Bridge traffic shares one text channel with arbitrary application messages.
// Every bridge envelope is JSON prefixed with a fixed tag; anything without
// the tag belongs to the generic message handler and is passed through as-is.
//
// Wire Envelopes:
//
//	Request:  bind:{"id":"<token>","name":"<exposedName>","args":[<value>, ...]}
//	Response: bind:{"id":"<token>","ret":<value>}
//	Fault:    bind:{"id":"<token>","ret":null,"error":{"code":"...","message":"..."}}
//
// Values inside envelopes stay opaque (json.RawMessage) so each side decodes
// them into its own native types.
//
// Example Usage:
//
//	req, _ := protocol.NewRequest(id, "add", 2, 3)
//	text, _ := protocol.EncodeRequest(req)
//	// ... transport ...
//	req, err := protocol.DecodeRequest(text)
package protocol
