package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "CrewCall API",
        "description": "Volunteer coordination service for event staffing",
        "version": "0.1.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Events", "description": "Event management"},
        {"name": "Positions", "description": "Staffing positions and rosters"},
        {"name": "Signups", "description": "Volunteer signups"},
        {"name": "Check-In", "description": "Day-of volunteer check-in"},
        {"name": "Dashboard", "description": "Coordinator dashboard"},
        {"name": "Exports", "description": "Roster exports"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"}
                }
            }
        },
        "/events": {
            "get": {
                "tags": ["Events"],
                "summary": "List events",
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"},
                    {"name": "sort", "in": "query", "type": "string"},
                    {"name": "order", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Events"],
                "summary": "Create event",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateEventRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/events/{id}": {
            "get": {
                "tags": ["Events"],
                "summary": "Get event",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Events"],
                "summary": "Update event",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateEventRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Events"],
                "summary": "Delete event",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/events/{id}/roster": {
            "post": {
                "tags": ["Exports"],
                "summary": "Generate a roster export",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/positions": {
            "get": {
                "tags": ["Positions"],
                "summary": "List positions",
                "parameters": [
                    {"name": "eventId", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"},
                    {"name": "sort", "in": "query", "type": "string"},
                    {"name": "order", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Positions"],
                "summary": "Create position",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreatePositionRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/positions/{id}": {
            "get": {
                "tags": ["Positions"],
                "summary": "Get position",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Positions"],
                "summary": "Update position",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdatePositionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Positions"],
                "summary": "Delete position",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/positions/{id}/roster/import": {
            "post": {
                "tags": ["Positions"],
                "summary": "Import roster CSV",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "file", "in": "formData", "required": true, "type": "file"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/signups": {
            "get": {
                "tags": ["Signups"],
                "summary": "List signups",
                "parameters": [
                    {"name": "positionId", "in": "query", "type": "string"},
                    {"name": "arrived", "in": "query", "type": "boolean"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Signups"],
                "summary": "Create signup",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateSignupRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/signups/{id}": {
            "delete": {
                "tags": ["Signups"],
                "summary": "Delete signup",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/checkin/{positionId}": {
            "get": {
                "tags": ["Check-In"],
                "summary": "Resolve a check-in session for a position",
                "parameters": [
                    {"name": "positionId", "in": "path", "required": true, "type": "string"},
                    {"name": "lat", "in": "query", "type": "number"},
                    {"name": "lon", "in": "query", "type": "number"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Check-In"],
                "summary": "Submit a volunteer arrival",
                "parameters": [
                    {"name": "positionId", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SubmitCheckInRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/dashboard/positions": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Staffing overview for the selected event",
                "parameters": [
                    {"name": "eventId", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/dashboard/issues": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Live issue feed",
                "parameters": [
                    {"name": "eventId", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/dashboard/selection": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Get the persisted event selection",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Dashboard"],
                "summary": "Persist the event selection",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/Selection"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exports/download": {
            "get": {
                "tags": ["Exports"],
                "summary": "Download a generated export",
                "parameters": [
                    {"name": "token", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File"}
                }
            }
        }
    },
    "definitions": {
        "Event": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "date": {"type": "string"},
                "time": {"type": "string"},
                "location": {"type": "string"},
                "organizer_id": {"type": "string"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "Position": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "event_id": {"type": "string"},
                "name": {"type": "string"},
                "description": {"type": "string"},
                "skill_level": {"type": "string"},
                "needed": {"type": "integer"},
                "filled": {"type": "integer"},
                "latitude": {"type": "number"},
                "longitude": {"type": "number"}
            }
        },
        "Signup": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "position_id": {"type": "string"},
                "volunteer_name": {"type": "string"},
                "email": {"type": "string"},
                "phone": {"type": "string"},
                "start_time": {"type": "string"},
                "end_time": {"type": "string"},
                "arrived": {"type": "boolean"}
            }
        },
        "CreateEventRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "date": {"type": "string"},
                "time": {"type": "string"},
                "location": {"type": "string"}
            },
            "required": ["name", "date"]
        },
        "UpdateEventRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "date": {"type": "string"},
                "time": {"type": "string"},
                "location": {"type": "string"}
            },
            "required": ["name", "date"]
        },
        "CreatePositionRequest": {
            "type": "object",
            "properties": {
                "event_id": {"type": "string"},
                "name": {"type": "string"},
                "description": {"type": "string"},
                "skill_level": {"type": "string"},
                "needed": {"type": "integer"},
                "latitude": {"type": "number"},
                "longitude": {"type": "number"}
            },
            "required": ["event_id", "name", "needed"]
        },
        "UpdatePositionRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "description": {"type": "string"},
                "skill_level": {"type": "string"},
                "needed": {"type": "integer"},
                "latitude": {"type": "number"},
                "longitude": {"type": "number"}
            },
            "required": ["name", "needed"]
        },
        "CreateSignupRequest": {
            "type": "object",
            "properties": {
                "position_id": {"type": "string"},
                "volunteer_name": {"type": "string"},
                "email": {"type": "string"},
                "phone": {"type": "string"},
                "start_time": {"type": "string"},
                "end_time": {"type": "string"}
            },
            "required": ["position_id", "volunteer_name", "start_time", "end_time"]
        },
        "SubmitCheckInRequest": {
            "type": "object",
            "properties": {
                "signup_id": {"type": "string"}
            },
            "required": ["signup_id"]
        },
        "Selection": {
            "type": "object",
            "properties": {
                "event_id": {"type": "string"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
