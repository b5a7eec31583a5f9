// Package data embeds the site templates and label profiles shipped with the
// binary.
package data

import "embed"

//go:embed templates
var Templates embed.FS
