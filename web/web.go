// Package web embeds the browser gallery client served by the proxy.
package web

import (
	"embed"
	"io/fs"
)

//go:embed index.html script.js style.css
var assets embed.FS

// IndexFile is the page holding the gallery elements.
const IndexFile = "index.html"

// Assets returns the embedded files rooted at the package directory.
func Assets() fs.FS {
	return assets
}
