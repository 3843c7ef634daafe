// Package web carries the console's templates and static assets in the
// binary.
package web

import "embed"

// Templates holds layouts, partials and pages.
//
//go:embed templates/layouts/*.html templates/partials/*.html templates/pages/*.html
var Templates embed.FS

// Static holds stylesheets served under /static/.
//
//go:embed static/css/*.css
var Static embed.FS
