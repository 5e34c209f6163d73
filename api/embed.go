// Package api carries the OpenAPI description of the HTTP surface.
package api

import _ "embed"

// OpenAPI is api/openapi.yaml as shipped with the binary.
//
//go:embed openapi.yaml
var OpenAPI []byte
