package web

import "embed"

// Templates embeds the quotation document skeletons.
//
//go:embed templates/**/*.html
var Templates embed.FS
