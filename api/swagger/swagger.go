package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "TechFront Academy API",
        "description": "Administration dashboard backend: fee ledger, enrollments and reporting",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Auth", "description": "Authentication and staff accounts"},
        {"name": "Students", "description": "Learner records and registration approvals"},
        {"name": "Courses", "description": "Course catalog"},
        {"name": "Enrollments", "description": "Course subscriptions and lifecycle states"},
        {"name": "Fees", "description": "Fee ledger writes and waiver approvals"},
        {"name": "Ledger", "description": "Flattened fee report"},
        {"name": "Analytics", "description": "Collection dashboards"},
        {"name": "Exports", "description": "Asynchronous report exports"},
        {"name": "Certificates", "description": "Completion certificates"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Authenticate a staff account",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/refresh": {
            "post": {
                "tags": ["Auth"],
                "summary": "Rotate a refresh token",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/auth/accounts": {
            "post": {
                "tags": ["Auth"],
                "summary": "Provision a staff account (admin)",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students": {
            "get": {
                "tags": ["Students"],
                "summary": "List students",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string", "enum": ["active", "inactive", "all"]},
                    {"name": "course_id", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Students"],
                "summary": "Register a student; non-admin submissions are staged",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "201": {"description": "Created"},
                    "202": {"description": "Staged for approval"}
                }
            }
        },
        "/students/pending": {
            "get": {
                "tags": ["Students"],
                "summary": "List staged registrations (admin)",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/pending/{id}/approve": {
            "post": {
                "tags": ["Students"],
                "summary": "Approve a staged registration (admin)",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {
                    "201": {"description": "Created"}
                }
            }
        },
        "/students/{id}": {
            "get": {
                "tags": ["Students"],
                "summary": "Student detail with enrollments",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/{id}/courses": {
            "post": {
                "tags": ["Enrollments"],
                "summary": "Enroll a student in an additional course (admin)",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {
                    "201": {"description": "Created"},
                    "409": {"description": "Already enrolled"}
                }
            }
        },
        "/students/{id}/courses/{courseId}": {
            "delete": {
                "tags": ["Enrollments"],
                "summary": "Remove a course subscription, fee history retained (admin)",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "204": {"description": "Removed"}
                }
            }
        },
        "/students/{id}/courses/{courseId}/status": {
            "put": {
                "tags": ["Enrollments"],
                "summary": "Transition course lifecycle state (admin)",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "204": {"description": "Updated"}
                }
            }
        },
        "/students/{id}/courses/{courseId}/fees": {
            "get": {
                "tags": ["Fees"],
                "summary": "Fee history for a student and course",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/{id}/courses/{courseId}/certificate": {
            "get": {
                "tags": ["Certificates"],
                "summary": "Completion certificate PDF",
                "security": [{"BearerAuth": []}],
                "produces": ["application/pdf"],
                "responses": {
                    "200": {"description": "PDF bytes"},
                    "412": {"description": "Course not completed"}
                }
            }
        },
        "/courses": {
            "get": {
                "tags": ["Courses"],
                "summary": "List courses",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Courses"],
                "summary": "Create course (admin)",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "201": {"description": "Created"}
                }
            }
        },
        "/fees": {
            "post": {
                "tags": ["Fees"],
                "summary": "Record a payment or waiver for a billing month",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Committed"},
                    "202": {"description": "Staged for approval"},
                    "400": {"description": "Over payment"}
                }
            }
        },
        "/fees/pending": {
            "get": {
                "tags": ["Fees"],
                "summary": "List staged waivers (admin)",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/fees/pending/{id}/approve": {
            "post": {
                "tags": ["Fees"],
                "summary": "Approve a staged waiver (admin)",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {
                    "200": {"description": "Materialized"}
                }
            }
        },
        "/ledger": {
            "get": {
                "tags": ["Ledger"],
                "summary": "Flattened fee ledger report for a month window",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "from_month", "in": "query", "type": "string", "required": true},
                    {"name": "from_year", "in": "query", "type": "integer", "required": true},
                    {"name": "to_month", "in": "query", "type": "string", "required": true},
                    {"name": "to_year", "in": "query", "type": "integer", "required": true},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "course_id", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Inverted or malformed range"}
                }
            }
        },
        "/analytics/collections": {
            "get": {
                "tags": ["Analytics"],
                "summary": "Monthly collection figures",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exports": {
            "post": {
                "tags": ["Exports"],
                "summary": "Queue a ledger export",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "202": {"description": "Queued"}
                }
            }
        },
        "/exports/{id}": {
            "get": {
                "tags": ["Exports"],
                "summary": "Export job status",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exports/download": {
            "get": {
                "tags": ["Exports"],
                "summary": "Download a rendered export via signed token",
                "parameters": [{"name": "token", "in": "query", "type": "string", "required": true}],
                "responses": {
                    "200": {"description": "File bytes"},
                    "401": {"description": "Invalid or expired token"}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
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
