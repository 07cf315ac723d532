// Package web carries the embedded single-page interface.
package web

import _ "embed"

//go:embed index.html
var Index []byte
