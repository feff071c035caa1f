// Package docs holds the OpenAPI document served under /swagger.
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
                "responses": {"200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}}
            }
        },
        "/auth/sign-up": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Register an operator",
                "parameters": [{"description": "Credentials", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.authCredentials"}}],
                "responses": {
                    "200": {"description": "id", "schema": {"type": "object", "additionalProperties": {"type": "integer"}}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "409": {"description": "Conflict", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/auth/sign-in": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Issue an access token",
                "parameters": [{"description": "Credentials", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.authCredentials"}}],
                "responses": {
                    "200": {"description": "token", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "401": {"description": "Unauthorized", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/v1/clock/state": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["clock"],
                "summary": "Get panel state",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/timecircuits.PanelSnapshot"}},
                    "401": {"description": "Unauthorized", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "503": {"description": "Service Unavailable", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/v1/keypad/event": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["keypad"],
                "summary": "Send a keypad event",
                "parameters": [{"description": "Input event", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.KeypadEventRequest"}}],
                "responses": {
                    "202": {"description": "status, state", "schema": {"type": "object", "additionalProperties": true}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "503": {"description": "Service Unavailable", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/v1/keypad/sequence": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Presses and releases each digit in order, then ENTER when enter is true.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["keypad"],
                "summary": "Type a digit sequence",
                "parameters": [{"description": "Digits", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.KeypadSequenceRequest"}}],
                "responses": {
                    "202": {"description": "status, state", "schema": {"type": "object", "additionalProperties": true}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "503": {"description": "Service Unavailable", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/v1/travel": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Travels to the destination time. Without a body a short travel is made.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["travel"],
                "summary": "Time travel",
                "parameters": [{"description": "Travel options", "name": "body", "in": "body", "schema": {"$ref": "#/definitions/handlers.TravelRequest"}}],
                "responses": {
                    "202": {"description": "status, state", "schema": {"type": "object", "additionalProperties": true}},
                    "503": {"description": "Service Unavailable", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/v1/travel/return": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["travel"],
                "summary": "Return from time travel",
                "responses": {
                    "202": {"description": "status, state", "schema": {"type": "object", "additionalProperties": true}},
                    "503": {"description": "Service Unavailable", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/v1/power": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["clock"],
                "summary": "Switch displays on or off",
                "parameters": [{"description": "Power state", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.PowerRequest"}}],
                "responses": {
                    "202": {"description": "status, state", "schema": {"type": "object", "additionalProperties": true}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/v1/alarm": {
            "put": {
                "security": [{"BearerAuth": []}],
                "description": "Sets hour, minute and weekday mode. The alarm is enabled unless enabled is false.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["clock"],
                "summary": "Set the alarm",
                "parameters": [{"description": "Alarm", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.AlarmRequest"}}],
                "responses": {
                    "202": {"description": "status, state", "schema": {"type": "object", "additionalProperties": true}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/v1/logs": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Filter events by date (RFC3339, 'YYYY-MM-DD HH:MM:SS', or 'YYYY-MM-DD'). A date-only 'to' covers the whole day.",
                "produces": ["application/json"],
                "tags": ["logs"],
                "summary": "List panel events",
                "parameters": [
                    {"type": "string", "example": "2025-08-01", "description": "Start of range", "name": "from", "in": "query"},
                    {"type": "string", "example": "2025-08-31", "description": "End of range", "name": "to", "in": "query"},
                    {"enum": ["TRAVEL", "RETURN", "KEYPAD", "RTC_GLITCH", "NTP_SYNC", "ROLLOVER", "RESTART", "POWER", "ALARM", "REMINDER", "COUNTDOWN"], "type": "string", "description": "Event type", "name": "type", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "count, events", "schema": {"type": "object", "additionalProperties": true}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        }
    },
    "definitions": {
        "handlers.authCredentials": {
            "type": "object",
            "required": ["password", "username"],
            "properties": {
                "password": {"type": "string", "example": "88mph"},
                "username": {"type": "string", "example": "doc"}
            }
        },
        "handlers.KeypadEventRequest": {
            "type": "object",
            "required": ["kind"],
            "properties": {
                "key": {"type": "string", "example": "7"},
                "kind": {"type": "string", "example": "key_pressed"}
            }
        },
        "handlers.KeypadSequenceRequest": {
            "type": "object",
            "properties": {
                "digits": {"type": "string", "example": "102619850121"},
                "enter": {"type": "boolean", "example": true}
            }
        },
        "handlers.TravelRequest": {
            "type": "object",
            "properties": {"long": {"type": "boolean", "example": true}}
        },
        "handlers.AlarmRequest": {
            "type": "object",
            "required": ["hour", "minute"],
            "properties": {
                "enabled": {"type": "boolean", "example": true},
                "hour": {"type": "integer", "example": 7},
                "minute": {"type": "integer", "example": 30},
                "weekday": {"type": "string", "enum": ["daily", "workdays", "weekends", "sun", "mon", "tue", "wed", "thu", "fri", "sat"], "example": "workdays"}
            }
        },
        "handlers.PowerRequest": {
            "type": "object",
            "required": ["on"],
            "properties": {"on": {"type": "boolean", "example": true}}
        },
        "timecircuits.DisplayState": {
            "type": "object",
            "properties": {
                "brightness": {"type": "integer"},
                "colon": {"type": "boolean"},
                "day": {"type": "integer"},
                "hour": {"type": "integer"},
                "id": {"type": "string"},
                "lamp_test": {"type": "boolean"},
                "message": {"type": "boolean"},
                "minute": {"type": "integer"},
                "month": {"type": "integer"},
                "night_mode": {"type": "boolean"},
                "on": {"type": "boolean"},
                "text": {"type": "string"},
                "year": {"type": "integer"}
            }
        },
        "timecircuits.PanelSnapshot": {
            "type": "object",
            "properties": {
                "alarm": {"type": "string"},
                "countdown": {"type": "string"},
                "departed": {"$ref": "#/definitions/timecircuits.DisplayState"},
                "destination": {"$ref": "#/definitions/timecircuits.DisplayState"},
                "offset_minutes": {"type": "integer"},
                "pending_entry": {"type": "string"},
                "phase": {"type": "string"},
                "powered": {"type": "boolean"},
                "present": {"$ref": "#/definitions/timecircuits.DisplayState"},
                "reminder": {"type": "string"},
                "rotation_paused": {"type": "boolean"},
                "updated_at": {"type": "string"}
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
	Title:            "Time Circuits API",
	Description:      "Keypad, travel and state endpoints of the time circuits panel.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
