// Package api содержит OpenAPI-описание сервиса, отдаваемое Swagger UI.
package api

import _ "embed"

//go:embed openapi.json
var OpenAPISpec []byte
