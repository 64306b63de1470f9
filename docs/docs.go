// Package docs holds the OpenAPI document served at /swagger.
// Regenerate with: swag init -g cmd/app/main.go -o docs
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "license": {
            "name": "Apache 2.0",
            "url": "http://www.apache.org/licenses/LICENSE-2.0.html"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/auth/telegram": {
            "post": {
                "tags": ["auth"],
                "summary": "Log in with Telegram init-data",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "body", "name": "input", "schema": {"$ref": "#/definitions/auth.telegramRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/service.Result"}},
                    "401": {"description": "INVALID_INIT_DATA, INIT_DATA_EXPIRED or MISSING_USER_DATA", "schema": {"$ref": "#/definitions/middleware.ErrorResponse"}}
                }
            }
        },
        "/auth/register": {
            "post": {
                "tags": ["auth"],
                "summary": "Register with email and password",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "body", "name": "input", "required": true, "schema": {"$ref": "#/definitions/auth.credentialsRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/service.Result"}},
                    "409": {"description": "EMAIL_TAKEN", "schema": {"$ref": "#/definitions/middleware.ErrorResponse"}}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["auth"],
                "summary": "Log in with email and password",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "body", "name": "input", "required": true, "schema": {"$ref": "#/definitions/auth.credentialsRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/service.Result"}},
                    "401": {"description": "INVALID_CREDENTIALS", "schema": {"$ref": "#/definitions/middleware.ErrorResponse"}}
                }
            }
        },
        "/auth/me": {
            "get": {
                "security": [{"BearerAuth": []}, {"TelegramInitData": []}],
                "tags": ["auth"],
                "summary": "Current user",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.User"}}
                }
            }
        },
        "/projects": {
            "get": {
                "security": [{"BearerAuth": []}, {"TelegramInitData": []}],
                "tags": ["projects"],
                "summary": "List owned and joined projects",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.Membership"}}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}, {"TelegramInitData": []}],
                "tags": ["projects"],
                "summary": "Create a project",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "body", "name": "input", "required": true, "schema": {"$ref": "#/definitions/project.createRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.Project"}},
                    "409": {"description": "PROJECT_NAME_TAKEN", "schema": {"$ref": "#/definitions/middleware.ErrorResponse"}}
                }
            }
        },
        "/projects/join": {
            "post": {
                "security": [{"BearerAuth": []}, {"TelegramInitData": []}],
                "tags": ["sharing"],
                "summary": "Join a project by share code",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "body", "name": "input", "required": true, "schema": {"$ref": "#/definitions/project.joinRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Summary"}},
                    "404": {"description": "Unknown code", "schema": {"$ref": "#/definitions/middleware.ErrorResponse"}},
                    "409": {"description": "Already owner or member", "schema": {"$ref": "#/definitions/middleware.ErrorResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/middleware.ErrorResponse"}}
                }
            }
        },
        "/projects/{id}": {
            "get": {
                "security": [{"BearerAuth": []}, {"TelegramInitData": []}],
                "tags": ["projects"],
                "summary": "Open a project with its content",
                "produces": ["application/json"],
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Summary"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/middleware.ErrorResponse"}}
                }
            },
            "patch": {
                "security": [{"BearerAuth": []}, {"TelegramInitData": []}],
                "tags": ["projects"],
                "summary": "Rename or describe a project",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"type": "integer", "name": "id", "in": "path", "required": true},
                    {"in": "body", "name": "input", "required": true, "schema": {"$ref": "#/definitions/project.updateRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Project"}},
                    "403": {"description": "NOT_OWNER", "schema": {"$ref": "#/definitions/middleware.ErrorResponse"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}, {"TelegramInitData": []}],
                "tags": ["projects"],
                "summary": "Delete a project",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "204": {"description": "No Content"},
                    "403": {"description": "NOT_OWNER", "schema": {"$ref": "#/definitions/middleware.ErrorResponse"}}
                }
            }
        },
        "/projects/{id}/share": {
            "post": {
                "security": [{"BearerAuth": []}, {"TelegramInitData": []}],
                "tags": ["sharing"],
                "summary": "Get or create the project share code",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "integer", "name": "id", "in": "path", "required": true},
                    {"type": "boolean", "name": "rotate", "in": "query", "description": "Replace the existing code"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/project.ShareResponse"}},
                    "403": {"description": "Not the owner", "schema": {"$ref": "#/definitions/middleware.ErrorResponse"}},
                    "503": {"description": "No free code found", "schema": {"$ref": "#/definitions/middleware.ErrorResponse"}}
                }
            }
        },
        "/projects/{id}/members": {
            "get": {
                "security": [{"BearerAuth": []}, {"TelegramInitData": []}],
                "tags": ["sharing"],
                "summary": "List project members",
                "produces": ["application/json"],
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.Member"}}}
                }
            }
        },
        "/projects/{id}/members/{userId}": {
            "delete": {
                "security": [{"BearerAuth": []}, {"TelegramInitData": []}],
                "tags": ["sharing"],
                "summary": "Remove a member",
                "parameters": [
                    {"type": "integer", "name": "id", "in": "path", "required": true},
                    {"type": "integer", "name": "userId", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/middleware.ErrorResponse"}}
                }
            }
        },
        "/projects/{id}/categories": {
            "get": {
                "security": [{"BearerAuth": []}, {"TelegramInitData": []}],
                "tags": ["categories"],
                "summary": "List project categories",
                "produces": ["application/json"],
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.Category"}}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}, {"TelegramInitData": []}],
                "tags": ["categories"],
                "summary": "Create a category",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"type": "integer", "name": "id", "in": "path", "required": true},
                    {"in": "body", "name": "input", "required": true, "schema": {"$ref": "#/definitions/category.createRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.Category"}}
                }
            }
        },
        "/projects/{id}/tasks": {
            "get": {
                "security": [{"BearerAuth": []}, {"TelegramInitData": []}],
                "tags": ["tasks"],
                "summary": "List project tasks",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "integer", "name": "id", "in": "path", "required": true},
                    {"type": "integer", "name": "categoryId", "in": "query"},
                    {"type": "boolean", "name": "completed", "in": "query"},
                    {"enum": ["LOW", "MEDIUM", "HIGH"], "type": "string", "name": "priority", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.Task"}}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}, {"TelegramInitData": []}],
                "tags": ["tasks"],
                "summary": "Create a task",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"type": "integer", "name": "id", "in": "path", "required": true},
                    {"in": "body", "name": "input", "required": true, "schema": {"$ref": "#/definitions/task.createRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.Task"}}
                }
            }
        },
        "/telegram/send-button": {
            "post": {
                "security": [{"BearerAuth": []}, {"TelegramInitData": []}],
                "tags": ["telegram"],
                "summary": "Send the Mini App launch button",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "body", "name": "input", "required": true, "schema": {"$ref": "#/definitions/http.sendButtonRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "503": {"description": "Bot not configured", "schema": {"$ref": "#/definitions/middleware.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "auth.credentialsRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string", "example": "alice@example.com"},
                "password": {"type": "string", "example": "correct horse"}
            }
        },
        "auth.telegramRequest": {
            "type": "object",
            "properties": {
                "initData": {"type": "string", "example": "query_id=...&user=...&auth_date=...&hash=..."}
            }
        },
        "category.createRequest": {
            "type": "object",
            "required": ["name"],
            "properties": {
                "name": {"type": "string", "example": "Work"},
                "color": {"type": "string", "example": "#3390EC"}
            }
        },
        "http.sendButtonRequest": {
            "type": "object",
            "required": ["chatId"],
            "properties": {
                "chatId": {"type": "integer", "example": 987654321}
            }
        },
        "middleware.ErrorResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean", "example": false},
                "error": {
                    "type": "object",
                    "properties": {
                        "code": {"type": "string"},
                        "message": {"type": "string"},
                        "details": {"type": "object"}
                    }
                },
                "timestamp": {"type": "string"},
                "request_id": {"type": "string"},
                "path": {"type": "string"},
                "method": {"type": "string"}
            }
        },
        "models.Category": {
            "type": "object",
            "properties": {
                "id": {"type": "integer", "example": 1},
                "projectId": {"type": "integer", "example": 1},
                "name": {"type": "string", "example": "Work"},
                "color": {"type": "string", "example": "#3390EC"},
                "createdAt": {"type": "string"},
                "updatedAt": {"type": "string"}
            }
        },
        "models.Member": {
            "type": "object",
            "properties": {
                "userId": {"type": "integer", "example": 2},
                "username": {"type": "string", "example": "bob"},
                "firstName": {"type": "string", "example": "Bob"},
                "lastName": {"type": "string"},
                "joinedAt": {"type": "string"}
            }
        },
        "models.Membership": {
            "type": "object",
            "properties": {
                "id": {"type": "integer", "example": 1},
                "name": {"type": "string", "example": "Groceries"},
                "description": {"type": "string"},
                "ownerId": {"type": "integer", "example": 1},
                "shareCode": {"type": "string", "example": "AB12CD"},
                "role": {"type": "string", "enum": ["owner", "member"]},
                "createdAt": {"type": "string"},
                "updatedAt": {"type": "string"}
            }
        },
        "models.Project": {
            "type": "object",
            "properties": {
                "id": {"type": "integer", "example": 1},
                "name": {"type": "string", "example": "Groceries"},
                "description": {"type": "string"},
                "ownerId": {"type": "integer", "example": 1},
                "shareCode": {"type": "string", "example": "AB12CD"},
                "createdAt": {"type": "string"},
                "updatedAt": {"type": "string"}
            }
        },
        "models.Summary": {
            "type": "object",
            "properties": {
                "id": {"type": "integer", "example": 1},
                "name": {"type": "string", "example": "Groceries"},
                "description": {"type": "string"},
                "ownerId": {"type": "integer", "example": 1},
                "role": {"type": "string", "enum": ["owner", "member"]},
                "categories": {"type": "array", "items": {"$ref": "#/definitions/models.Category"}},
                "tasks": {"type": "array", "items": {"$ref": "#/definitions/models.Task"}}
            }
        },
        "models.Task": {
            "type": "object",
            "properties": {
                "id": {"type": "integer", "example": 1},
                "projectId": {"type": "integer", "example": 1},
                "categoryId": {"type": "integer", "example": 3},
                "title": {"type": "string", "example": "Buy milk"},
                "description": {"type": "string"},
                "priority": {"type": "string", "enum": ["LOW", "MEDIUM", "HIGH"]},
                "dueDate": {"type": "string"},
                "completed": {"type": "boolean"},
                "createdAt": {"type": "string"},
                "updatedAt": {"type": "string"}
            }
        },
        "models.User": {
            "type": "object",
            "properties": {
                "id": {"type": "integer", "example": 1},
                "telegramId": {"type": "string", "example": "987654321"},
                "email": {"type": "string", "example": "alice@example.com"},
                "username": {"type": "string", "example": "alice"},
                "firstName": {"type": "string", "example": "Alice"},
                "lastName": {"type": "string"},
                "createdAt": {"type": "string"},
                "updatedAt": {"type": "string"}
            }
        },
        "project.ShareResponse": {
            "type": "object",
            "properties": {
                "shareCode": {"type": "string", "example": "AB12CD"}
            }
        },
        "project.createRequest": {
            "type": "object",
            "required": ["name"],
            "properties": {
                "name": {"type": "string", "example": "Groceries"},
                "description": {"type": "string", "example": "Weekly shopping"}
            }
        },
        "project.joinRequest": {
            "type": "object",
            "required": ["code"],
            "properties": {
                "code": {"type": "string", "example": "AB12CD"}
            }
        },
        "project.updateRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "description": {"type": "string"}
            }
        },
        "service.Result": {
            "type": "object",
            "properties": {
                "access_token": {"type": "string"},
                "expires_at": {"type": "string"},
                "user": {"$ref": "#/definitions/models.User"}
            }
        },
        "task.createRequest": {
            "type": "object",
            "required": ["title"],
            "properties": {
                "title": {"type": "string", "example": "Buy milk"},
                "description": {"type": "string"},
                "priority": {"type": "string", "enum": ["LOW", "MEDIUM", "HIGH"]},
                "dueDate": {"type": "string"},
                "categoryId": {"type": "integer", "example": 1}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "\"Bearer <token>\" issued by /auth/telegram, /auth/login or /auth/register",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        },
        "TelegramInitData": {
            "description": "Raw Telegram Mini App init-data string",
            "type": "apiKey",
            "name": "X-Telegram-Init-Data",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:3000",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "Todo Mini App API",
	Description:      "Backend of a Telegram Mini App for shared to-do projects.\nClients authenticate with a bearer session token or with raw Telegram init-data.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
