// Package docs registers the OpenAPI description served at /swagger.
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
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["system"],
                "summary": "Health check",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/auth/sign-up": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Sign up",
                "parameters": [{"description": "Credentials", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/credentials"}}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}
            }
        },
        "/auth/sign-in": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Sign in",
                "parameters": [{"description": "Credentials", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/credentials"}}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "401": {"description": "Unauthorized"}}
            }
        },
        "/config/{uuid}": {
            "post": {
                "description": "Accepts a signed meross envelope and answers like the plug would. Without a uuid the first registered device answers.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["protocol"],
                "summary": "Device protocol endpoint",
                "parameters": [
                    {"type": "string", "description": "Device uuid", "name": "uuid", "in": "path", "required": true},
                    {"description": "Request envelope", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/message"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/message"}}, "400": {"description": "Bad Request"}, "404": {"description": "Not Found"}}
            }
        },
        "/api/v1/devices": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["devices"],
                "summary": "List devices",
                "responses": {"200": {"description": "count, devices"}, "401": {"description": "Unauthorized"}}
            }
        },
        "/api/v1/devices/{uuid}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["devices"],
                "summary": "Device descriptor snapshot",
                "parameters": [{"type": "string", "description": "Device uuid", "name": "uuid", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}, "404": {"description": "Not Found"}}
            }
        },
        "/api/v1/devices/{uuid}/electricity": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Advances the power random walk and returns the new reading.",
                "produces": ["application/json"],
                "tags": ["devices"],
                "summary": "Sample electricity",
                "parameters": [{"type": "string", "description": "Device uuid", "name": "uuid", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/electricity"}}, "401": {"description": "Unauthorized"}, "404": {"description": "Not Found"}}
            }
        },
        "/api/v1/devices/{uuid}/consumptionx": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Integrates energy up to now and returns the daily ledger.",
                "produces": ["application/json"],
                "tags": ["devices"],
                "summary": "Sample consumption",
                "parameters": [{"type": "string", "description": "Device uuid", "name": "uuid", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/consumptionx"}}, "401": {"description": "Unauthorized"}, "404": {"description": "Not Found"}}
            }
        },
        "/api/v1/logs": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Filter events by device and date (RFC3339, 'YYYY-MM-DD HH:MM:SS', or 'YYYY-MM-DD'). A date-only 'to' is end of day inclusive.",
                "produces": ["application/json"],
                "tags": ["logs"],
                "summary": "List device events",
                "parameters": [
                    {"type": "string", "description": "Device uuid", "name": "uuid", "in": "query"},
                    {"type": "string", "description": "Start of range", "name": "from", "in": "query"},
                    {"type": "string", "description": "End of range", "name": "to", "in": "query"},
                    {"enum": ["ROLLOVER", "EVICT", "ERROR"], "type": "string", "description": "Event type", "name": "type", "in": "query"}
                ],
                "responses": {"200": {"description": "count, events"}, "400": {"description": "Bad Request"}, "401": {"description": "Unauthorized"}, "500": {"description": "Internal Server Error"}}
            }
        }
    },
    "definitions": {
        "credentials": {
            "type": "object",
            "required": ["username", "password"],
            "properties": {"username": {"type": "string"}, "password": {"type": "string"}}
        },
        "message": {
            "type": "object",
            "properties": {
                "header": {
                    "type": "object",
                    "properties": {
                        "messageId": {"type": "string"},
                        "namespace": {"type": "string", "example": "Appliance.Control.Electricity"},
                        "method": {"type": "string", "example": "GET"},
                        "payloadVersion": {"type": "integer"},
                        "from": {"type": "string"},
                        "timestamp": {"type": "integer"},
                        "timestampMs": {"type": "integer"},
                        "sign": {"type": "string"}
                    }
                },
                "payload": {"type": "object"}
            }
        },
        "electricity": {
            "type": "object",
            "properties": {
                "electricity": {
                    "type": "object",
                    "properties": {
                        "channel": {"type": "integer"},
                        "current": {"type": "integer", "description": "mA"},
                        "voltage": {"type": "integer", "description": "0.1 V"},
                        "power": {"type": "integer", "description": "mW"}
                    }
                }
            }
        },
        "consumptionx": {
            "type": "object",
            "properties": {
                "consumptionx": {
                    "type": "array",
                    "items": {
                        "type": "object",
                        "properties": {
                            "date": {"type": "string", "example": "2023-03-01"},
                            "time": {"type": "integer"},
                            "value": {"type": "integer", "description": "Wh"}
                        }
                    }
                }
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Meross plug emulator API",
	Description:      "Emulated meross smart plugs with electricity and consumption namespaces.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
