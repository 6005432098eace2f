package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "UniNav Advisor API",
        "description": "Academic record extraction and degree planning service",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "tags": [
        {"name": "Authentication", "description": "Advisor sign-in and session management"},
        {"name": "Transcripts", "description": "Transcript ingestion and record versions"},
        {"name": "Plans", "description": "Course recommendations and graduation estimates"},
        {"name": "Exports", "description": "Asynchronous document generation"},
        {"name": "Users", "description": "Advisor account administration"},
        {"name": "Admin", "description": "Operational insight endpoints"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Sign in with email and password",
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
                "tags": ["Authentication"],
                "summary": "Exchange a refresh token for a new access token",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RefreshTokenRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid or revoked token"}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Revoke the current refresh token",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/auth/change-password": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Change the caller's password",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ChangePasswordRequest"}}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Describe the authenticated user",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/transcripts": {
            "post": {
                "tags": ["Transcripts"],
                "summary": "Upload and parse a transcript document",
                "security": [{"BearerAuth": []}],
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "file", "in": "formData", "required": true, "type": "file"},
                    {"name": "studentKey", "in": "formData", "type": "string"},
                    {"name": "currentTerm", "in": "formData", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Duplicate of the latest version", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "201": {"description": "New version stored", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Document could not be parsed"}
                }
            }
        },
        "/records/{id}": {
            "get": {
                "tags": ["Transcripts"],
                "summary": "Fetch a record version by ID",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown record"}
                }
            }
        },
        "/students/{studentKey}/record": {
            "get": {
                "tags": ["Transcripts"],
                "summary": "Fetch the latest record for a student",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "studentKey", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "No records for student"}
                }
            }
        },
        "/students/{studentKey}/versions": {
            "get": {
                "tags": ["Transcripts"],
                "summary": "List record versions, newest first",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "studentKey", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/{studentKey}/digest": {
            "get": {
                "tags": ["Transcripts"],
                "summary": "Render a plain-text summary of the latest record",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "studentKey", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/{studentKey}/diff": {
            "get": {
                "tags": ["Transcripts"],
                "summary": "Compare two record versions",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "studentKey", "in": "path", "required": true, "type": "string"},
                    {"name": "from", "in": "query", "required": true, "type": "string"},
                    {"name": "to", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/{studentKey}/plan": {
            "post": {
                "tags": ["Plans"],
                "summary": "Generate a semester-by-semester course plan",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "studentKey", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "schema": {"$ref": "#/definitions/PlanRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "No records for student"}
                }
            }
        },
        "/students/{studentKey}/graduation": {
            "get": {
                "tags": ["Plans"],
                "summary": "Estimate semesters until graduation",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "studentKey", "in": "path", "required": true, "type": "string"},
                    {"name": "velocity", "in": "query", "type": "number"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exports": {
            "post": {
                "tags": ["Exports"],
                "summary": "Queue an export job",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ExportRequest"}}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exports/{id}": {
            "get": {
                "tags": ["Exports"],
                "summary": "Check export job progress",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Job belongs to another advisor"}
                }
            }
        },
        "/exports/{id}/download": {
            "get": {
                "tags": ["Exports"],
                "summary": "Download a finished export with a signed token",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "token", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File stream"},
                    "403": {"description": "Invalid or expired token"}
                }
            }
        },
        "/users": {
            "get": {
                "tags": ["Users"],
                "summary": "List users",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "role", "in": "query", "type": "string"},
                    {"name": "active", "in": "query", "type": "boolean"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Users"],
                "summary": "Create a user",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateUserRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/users/{id}": {
            "get": {
                "tags": ["Users"],
                "summary": "Get a user",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown user"}
                }
            },
            "delete": {
                "tags": ["Users"],
                "summary": "Deactivate a user",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/admin/metrics": {
            "get": {
                "tags": ["Admin"],
                "summary": "Snapshot of runtime counters",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["email", "password"]
        },
        "RefreshTokenRequest": {
            "type": "object",
            "properties": {
                "refresh_token": {"type": "string"}
            },
            "required": ["refresh_token"]
        },
        "ChangePasswordRequest": {
            "type": "object",
            "properties": {
                "old_password": {"type": "string"},
                "new_password": {"type": "string"}
            },
            "required": ["old_password", "new_password"]
        },
        "LoginResponse": {
            "type": "object",
            "properties": {
                "access_token": {"type": "string"},
                "refresh_token": {"type": "string"},
                "expires_in": {"type": "integer"},
                "user": {"$ref": "#/definitions/UserInfo"},
                "issued_at": {"type": "string"}
            }
        },
        "UserInfo": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "email": {"type": "string"},
                "full_name": {"type": "string"},
                "role": {"type": "string", "enum": ["ADMIN", "ADVISOR"]}
            }
        },
        "CreateUserRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "full_name": {"type": "string"},
                "role": {"type": "string", "enum": ["ADMIN", "ADVISOR"]},
                "active": {"type": "boolean"},
                "password": {"type": "string"}
            },
            "required": ["email", "full_name", "role", "password"]
        },
        "RecordHeader": {
            "type": "object",
            "properties": {
                "student_name": {"type": "string"},
                "student_id": {"type": "string"},
                "major": {"type": "string"},
                "advisor": {"type": "string"},
                "gpa": {"type": "number"},
                "credits_completed": {"type": "number"},
                "credits_in_progress": {"type": "number"},
                "credits_remaining": {"type": "number"},
                "credits_required": {"type": "number"},
                "classification": {"type": "string"}
            }
        },
        "CourseRecord": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "title": {"type": "string"},
                "credits": {"type": "number"},
                "grade": {"type": "string"},
                "term": {"type": "string"},
                "status": {"type": "string", "enum": ["COMPLETED", "IN_PROGRESS", "REMAINING"]},
                "category": {"type": "string"},
                "status_assumed": {"type": "boolean"},
                "category_assumed": {"type": "boolean"}
            }
        },
        "StudentAcademicRecord": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "student_key": {"type": "string"},
                "header": {"$ref": "#/definitions/RecordHeader"},
                "courses": {"type": "array", "items": {"$ref": "#/definitions/CourseRecord"}},
                "current_term": {"type": "string"},
                "low_confidence": {"type": "boolean"},
                "warnings": {"type": "array", "items": {"type": "string"}},
                "fingerprint": {"type": "string"},
                "source_format": {"type": "string"},
                "uploaded_at": {"type": "string"}
            }
        },
        "VersionDiff": {
            "type": "object",
            "properties": {
                "student_key": {"type": "string"},
                "from_record_id": {"type": "string"},
                "to_record_id": {"type": "string"},
                "added": {"type": "array", "items": {"$ref": "#/definitions/CourseRecord"}},
                "removed": {"type": "array", "items": {"$ref": "#/definitions/CourseRecord"}},
                "transitions": {"type": "array", "items": {"type": "object"}},
                "anomalies": {"type": "array", "items": {"type": "object"}}
            }
        },
        "PlanRequest": {
            "type": "object",
            "properties": {
                "semesters": {"type": "integer"},
                "maxCredits": {"type": "number"},
                "velocity": {"type": "number"}
            }
        },
        "RecommendationPlan": {
            "type": "object",
            "properties": {
                "record_id": {"type": "string"},
                "student_key": {"type": "string"},
                "semesters": {"type": "array", "items": {"type": "object"}},
                "blocked": {"type": "array", "items": {"type": "object"}},
                "graduation_estimate": {"$ref": "#/definitions/GraduationEstimate"},
                "max_credits_per_semester": {"type": "number"},
                "current_term": {"type": "string"}
            }
        },
        "GraduationEstimate": {
            "type": "object",
            "properties": {
                "credits_remaining": {"type": "number"},
                "credit_velocity": {"type": "number"},
                "semesters_remaining": {"type": "integer"},
                "expected_term": {"type": "string"}
            }
        },
        "ExportRequest": {
            "type": "object",
            "properties": {
                "kind": {"type": "string", "enum": ["record_digest", "plan"]},
                "studentKey": {"type": "string"},
                "recordId": {"type": "string"},
                "format": {"type": "string", "enum": ["csv", "pdf"]},
                "semesters": {"type": "integer"},
                "maxCredits": {"type": "number"},
                "velocity": {"type": "number"}
            },
            "required": ["kind", "studentKey", "format"]
        },
        "ExportStatusResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "kind": {"type": "string"},
                "status": {"type": "string", "enum": ["QUEUED", "PROCESSING", "FINISHED", "FAILED"]},
                "progress": {"type": "integer"},
                "resultUrl": {"type": "string"},
                "error": {"type": "string"}
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
