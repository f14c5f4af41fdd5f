package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Evaluer API",
        "description": "Hierarchical grade aggregation: response, assignment, module, subject and overall grades.",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": ["http", "https"],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Grades", "description": "Grade writes, cascade and point reads"},
        {"name": "Transcripts", "description": "Per-student grade exports"}
    ],
    "paths": {
        "/grades/assignment": {
            "put": {
                "tags": ["Grades"],
                "summary": "Update a response grade and recompute its ancestors",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateResponseGradeRequest"}}
                ],
                "responses": {
                    "204": {"description": "Stored"},
                    "400": {"description": "Invalid payload", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "500": {"description": "Cascade stage failed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/grades/assignments/{assignmentId}": {
            "get": {
                "tags": ["Grades"],
                "summary": "Get an assignment grade",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "assignmentId", "in": "path", "required": true, "type": "integer"},
                    {"name": "student_id", "in": "query", "required": true, "type": "integer"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/GradeEnvelope"}}}
            }
        },
        "/grades/assignments/{assignmentId}/responses/{responseId}": {
            "get": {
                "tags": ["Grades"],
                "summary": "Get a response grade",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "assignmentId", "in": "path", "required": true, "type": "integer"},
                    {"name": "responseId", "in": "path", "required": true, "type": "integer"},
                    {"name": "student_id", "in": "query", "required": true, "type": "integer"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/GradeEnvelope"}}}
            }
        },
        "/grades/assignments/{assignmentId}/override": {
            "put": {
                "tags": ["Grades"],
                "summary": "Override an assignment grade without recomputing module, subject or overall grades",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "assignmentId", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SetAssignmentGradeRequest"}}
                ],
                "responses": {
                    "204": {"description": "Stored"},
                    "400": {"description": "Invalid payload", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/grades/modules": {
            "get": {
                "tags": ["Grades"],
                "summary": "Get a module grade",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "student_id", "in": "query", "required": true, "type": "integer"},
                    {"name": "module_id", "in": "query", "required": true, "type": "integer"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/GradeEnvelope"}}}
            }
        },
        "/grades/subjects": {
            "get": {
                "tags": ["Grades"],
                "summary": "Get a subject grade",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "student_id", "in": "query", "required": true, "type": "integer"},
                    {"name": "subject_id", "in": "query", "required": true, "type": "integer"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/GradeEnvelope"}}}
            }
        },
        "/grades/overall": {
            "get": {
                "tags": ["Grades"],
                "summary": "Get a student's overall grade",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "student_id", "in": "query", "required": true, "type": "integer"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/GradeEnvelope"}}}
            }
        },
        "/grades/weights": {
            "get": {
                "tags": ["Grades"],
                "summary": "Get the grading scale and configured weights of one level",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "subject_id", "in": "query", "type": "integer"},
                    {"name": "module_id", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/WeightsEnvelope"}},
                    "400": {"description": "Both subject_id and module_id set", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/grades/recalculate": {
            "post": {
                "tags": ["Grades"],
                "summary": "Recompute module, subject and overall grades from stored assignment grades",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RecalculateModuleRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/grades/recalculate/async": {
            "post": {
                "tags": ["Grades"],
                "summary": "Queue a module recalculation; failed runs are retried in the background",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RecalculateModuleRequest"}}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "503": {"description": "Queue full", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/grades/students/{studentId}/transcript": {
            "get": {
                "tags": ["Transcripts"],
                "summary": "Get a student's transcript as JSON, CSV or PDF",
                "security": [{"BearerAuth": []}],
                "produces": ["application/json", "text/csv", "application/pdf"],
                "parameters": [
                    {"name": "studentId", "in": "path", "required": true, "type": "integer"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["json", "csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Unsupported format", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "UpdateResponseGradeRequest": {
            "type": "object",
            "required": ["student_id", "response_id", "assignment_id", "module_id", "subject_id", "new_grade"],
            "properties": {
                "student_id": {"type": "integer"},
                "response_id": {"type": "integer"},
                "assignment_id": {"type": "integer"},
                "module_id": {"type": "integer"},
                "subject_id": {"type": "integer"},
                "new_grade": {"type": "number", "minimum": 1, "maximum": 10}
            }
        },
        "SetAssignmentGradeRequest": {
            "type": "object",
            "required": ["student_id", "module_id", "grade"],
            "properties": {
                "student_id": {"type": "integer"},
                "module_id": {"type": "integer"},
                "grade": {"type": "number", "minimum": 0, "maximum": 10}
            }
        },
        "RecalculateModuleRequest": {
            "type": "object",
            "required": ["student_id", "module_id", "subject_id"],
            "properties": {
                "student_id": {"type": "integer"},
                "module_id": {"type": "integer"},
                "subject_id": {"type": "integer"}
            }
        },
        "GradeValue": {
            "type": "object",
            "properties": {"grade": {"type": "number"}}
        },
        "GradeEnvelope": {
            "type": "object",
            "properties": {"data": {"$ref": "#/definitions/GradeValue"}}
        },
        "WeightsView": {
            "type": "object",
            "properties": {
                "base_score": {"type": "number"},
                "minimum_score": {"type": "number"},
                "level": {"type": "string", "enum": ["subject", "module", "exercise"]},
                "weights": {"type": "object", "additionalProperties": {"type": "number"}}
            }
        },
        "WeightsEnvelope": {
            "type": "object",
            "properties": {"data": {"$ref": "#/definitions/WeightsView"}}
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
