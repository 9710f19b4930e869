// Package api embeds the OpenAPI document served by the HTTP API.
package api

import _ "embed"

//go:embed openapi.yml
var OpenAPISpec []byte
