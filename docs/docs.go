// Package docs holds the OpenAPI description served at /swagger.
// Regenerate with: swag init -g cmd/api/main.go
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
                "tags": ["health"],
                "summary": "Readiness probe",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handler.errorPayload"}}
                }
            }
        },
        "/reports": {
            "get": {
                "produces": ["application/json"],
                "tags": ["reports"],
                "summary": "List or search reports",
                "parameters": [
                    {"type": "string", "description": "caller identity", "name": "X-User-ID", "in": "header", "required": true},
                    {"type": "string", "description": "case-insensitive substring", "name": "q", "in": "query"},
                    {"type": "boolean", "description": "include soft-deleted reports", "name": "include_deleted", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["reports"],
                "summary": "Create report",
                "parameters": [
                    {"description": "report", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/service.ReportInput"}}
                ],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/model.Report"}}}
            }
        },
        "/reports/{id}": {
            "get": {
                "tags": ["reports"],
                "summary": "Get report",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/model.Report"}}}
            },
            "delete": {
                "tags": ["reports"],
                "summary": "Delete report",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"204": {"description": "No Content"}}
            },
            "patch": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["reports"],
                "summary": "Update report",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"description": "patch", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/service.ReportPatch"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/model.Report"}}}
            }
        },
        "/reports/{id}/documents": {
            "get": {
                "produces": ["application/json"],
                "tags": ["documents"],
                "summary": "List or search documents of a report",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"type": "string", "description": "case-insensitive substring", "name": "q", "in": "query"},
                    {"type": "boolean", "description": "include soft-deleted documents", "name": "include_deleted", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["documents"],
                "summary": "Upload document",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"type": "file", "description": "document", "name": "file", "in": "formData", "required": true}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/model.Document"}},
                    "409": {"description": "identical content already uploaded", "schema": {"$ref": "#/definitions/handler.errorPayload"}}
                }
            }
        },
        "/documents/{id}": {
            "get": {
                "tags": ["documents"],
                "summary": "Get document",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/model.Document"}}}
            },
            "delete": {
                "tags": ["documents"],
                "summary": "Delete document",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"204": {"description": "No Content"}}
            },
            "patch": {
                "tags": ["documents"],
                "summary": "Update document",
                "parameters": [
                    {"type": "string", "name": "id", "in": "path", "required": true},
                    {"description": "patch", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/service.DocumentPatch"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/model.Document"}}}
            }
        },
        "/documents/{id}/parse": {
            "post": {
                "tags": ["documents"],
                "summary": "Parse document",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/model.Document"}}}
            }
        },
        "/documents/{id}/download": {
            "get": {
                "tags": ["documents"],
                "summary": "Download document",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"307": {"description": "Temporary Redirect"}}
            }
        }
    },
    "definitions": {
        "handler.errorEnvelope": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "existing_id": {"type": "string"}
            }
        },
        "handler.errorPayload": {
            "type": "object",
            "properties": {
                "request_id": {"type": "string"},
                "error": {"$ref": "#/definitions/handler.errorEnvelope"}
            }
        },
        "model.Report": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "user_id": {"type": "string"},
                "title": {"type": "string"},
                "description": {"type": "string"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"},
                "deleted_at": {"type": "string"}
            }
        },
        "model.Document": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "report_id": {"type": "string"},
                "filename": {"type": "string"},
                "file_hash": {"type": "string"},
                "storage_path": {"type": "string"},
                "parsed_content": {"type": "string"},
                "notes": {"type": "string"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"},
                "deleted_at": {"type": "string"}
            }
        },
        "service.ReportInput": {
            "type": "object",
            "properties": {"title": {"type": "string"}, "description": {"type": "string"}}
        },
        "service.ReportPatch": {
            "type": "object",
            "properties": {"title": {"type": "string"}, "description": {"type": "string"}}
        },
        "service.DocumentPatch": {
            "type": "object",
            "properties": {"filename": {"type": "string"}, "notes": {"type": "string"}}
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "DocVault API",
	Description:      "Reports and documents with soft delete, content deduplication and parsing.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
