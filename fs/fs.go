package appfs

import "embed"

// FS holds embedded application assets: seed data, SQL migrations and
// email templates.
//go:embed data migrations templates
var FS embed.FS
