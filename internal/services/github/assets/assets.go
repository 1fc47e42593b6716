// Package assets embeds the GitHub connector's discovery template and message catalogs
package assets

import (
	"embed"
	"io/fs"
)

// MessagesDir is the catalog directory inside Messages
const MessagesDir = "messages"

//go:embed messages/*.yaml
var messages embed.FS

//go:embed discovery.json
var discovery []byte

// Messages returns the embedded catalogs for i18n.Load
func Messages() fs.FS { return messages }

// Discovery returns a copy of the discovery template
func Discovery() []byte { return append([]byte(nil), discovery...) }
