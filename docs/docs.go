// Package docs registers the OpenAPI description of the proxy routes with swag.
// Keep it in sync with the annotations in internal/transport/http/catproxy.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/": {
            "get": {
                "description": "Fixed greeting; never calls the upstream API",
                "produces": ["text/plain"],
                "tags": ["Proxy"],
                "summary": "Liveness greeting",
                "responses": {
                    "200": {"description": "greeting", "schema": {"type": "string"}}
                }
            }
        },
        "/api/cat": {
            "get": {
                "description": "Relays one random image from the upstream search API verbatim",
                "produces": ["application/json"],
                "tags": ["Proxy"],
                "summary": "Random cat image",
                "responses": {
                    "200": {"description": "upstream body", "schema": {"type": "array", "items": {"$ref": "#/definitions/catapi.Image"}}},
                    "500": {"description": "upstream failure", "schema": {"$ref": "#/definitions/httptransport.ErrorResponse"}}
                }
            }
        },
        "/api/cats": {
            "get": {
                "description": "Relays a gallery of six images from the upstream search API verbatim",
                "produces": ["application/json"],
                "tags": ["Proxy"],
                "summary": "Cat gallery",
                "responses": {
                    "200": {"description": "upstream body", "schema": {"type": "array", "items": {"$ref": "#/definitions/catapi.Image"}}},
                    "500": {"description": "upstream failure", "schema": {"$ref": "#/definitions/httptransport.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "catapi.Image": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "url": {"type": "string"},
                "width": {"type": "integer"},
                "height": {"type": "integer"}
            }
        },
        "httptransport.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:25000",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Cat Gallery Proxy API",
	Description:      "Proxy to the public cat image search API",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
