package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Fieldlab API",
        "description": "Field sample collection, lab review and patient results",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Auth", "description": "Registration, login and profile"},
        {"name": "Admin", "description": "User approval and activation"},
        {"name": "Field Collector", "description": "Patient intake and sample collection"},
        {"name": "Lab Tech", "description": "Sample review"},
        {"name": "Patient", "description": "Lab results"},
        {"name": "Files", "description": "Signed image links"}
    ],
    "paths": {
        "/health": {
            "get": {"summary": "Health check", "responses": {"200": {"description": "OK"}}}
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {"200": {"description": "Ready"}, "503": {"description": "Dependency unavailable"}}
            }
        },
        "/metrics": {
            "get": {"summary": "Prometheus metrics", "produces": ["text/plain"], "responses": {"200": {"description": "OK"}}}
        },
        "/api/v1/auth/register": {
            "post": {
                "tags": ["Auth"],
                "summary": "Register an account",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/UserInfo"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Admin registration closed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Username taken", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Exchange credentials for a token",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/LoginResponse"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Pending approval or inactive", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/auth/admin-status": {
            "get": {"tags": ["Auth"], "summary": "Whether an approved admin exists", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/AdminStatus"}}}}
        },
        "/api/v1/auth/me": {
            "get": {"tags": ["Auth"], "security": [{"BearerAuth": []}], "summary": "Current user", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/UserInfo"}}}}
        },
        "/api/v1/profile": {
            "get": {"tags": ["Auth"], "security": [{"BearerAuth": []}], "summary": "Full profile", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/User"}}}}
        },
        "/api/v1/profile/change-password": {
            "post": {
                "tags": ["Auth"],
                "security": [{"BearerAuth": []}],
                "summary": "Change password",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/ChangePasswordRequest"}}],
                "responses": {"204": {"description": "Changed"}, "400": {"description": "Current password mismatch"}}
            }
        },
        "/api/v1/admin/users": {
            "get": {
                "tags": ["Admin"],
                "security": [{"BearerAuth": []}],
                "summary": "List users",
                "parameters": [
                    {"in": "query", "name": "role", "type": "string"},
                    {"in": "query", "name": "approved", "type": "boolean"},
                    {"in": "query", "name": "active", "type": "boolean"},
                    {"in": "query", "name": "search", "type": "string"},
                    {"in": "query", "name": "page", "type": "integer"},
                    {"in": "query", "name": "page_size", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/User"}}}}
            }
        },
        "/api/v1/admin/users/{id}": {
            "patch": {
                "tags": ["Admin"],
                "security": [{"BearerAuth": []}],
                "summary": "Approve, reject, activate or deactivate a user",
                "parameters": [
                    {"in": "path", "name": "id", "required": true, "type": "string"},
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/UserActionRequest"}}
                ],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Unknown action"}, "404": {"description": "User not found"}}
            }
        },
        "/api/v1/field_collector/patients": {
            "get": {"tags": ["Field Collector"], "security": [{"BearerAuth": []}], "summary": "List patients", "responses": {"200": {"description": "OK"}}},
            "post": {
                "tags": ["Field Collector"],
                "security": [{"BearerAuth": []}],
                "summary": "Register a patient and provision an account",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/CreatePatientRequest"}}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/CreatePatientResponse"}}, "409": {"description": "Username collision"}}
            }
        },
        "/api/v1/field_collector/patients/search": {
            "get": {
                "tags": ["Field Collector"],
                "security": [{"BearerAuth": []}],
                "summary": "Search patients by name, phone or email",
                "parameters": [{"in": "query", "name": "q", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/v1/field_collector/patients/{id}": {
            "get": {
                "tags": ["Field Collector"],
                "security": [{"BearerAuth": []}],
                "summary": "Get a patient",
                "parameters": [{"in": "path", "name": "id", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}
            }
        },
        "/api/v1/field_collector/samples": {
            "get": {"tags": ["Field Collector"], "security": [{"BearerAuth": []}], "summary": "List samples", "responses": {"200": {"description": "OK"}}},
            "post": {
                "tags": ["Field Collector"],
                "security": [{"BearerAuth": []}],
                "summary": "Record a sample collection",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"in": "formData", "name": "patientId", "required": true, "type": "string"},
                    {"in": "formData", "name": "patientName", "type": "string"},
                    {"in": "formData", "name": "sampleType", "type": "string"},
                    {"in": "formData", "name": "notes", "type": "string"},
                    {"in": "formData", "name": "images", "required": true, "type": "file"}
                ],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/SampleCollection"}}, "413": {"description": "Upload too large"}}
            }
        },
        "/api/v1/lab_tech/samples": {
            "get": {
                "tags": ["Lab Tech"],
                "security": [{"BearerAuth": []}],
                "summary": "List samples",
                "parameters": [
                    {"in": "query", "name": "labStatus", "type": "string", "enum": ["pending", "approved", "rejected"]},
                    {"in": "query", "name": "patientId", "type": "string"},
                    {"in": "query", "name": "page", "type": "integer"},
                    {"in": "query", "name": "page_size", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/SampleCollection"}}}}
            }
        },
        "/api/v1/lab_tech/samples/{id}": {
            "get": {
                "tags": ["Lab Tech"],
                "security": [{"BearerAuth": []}],
                "summary": "Get a sample",
                "parameters": [{"in": "path", "name": "id", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/SampleCollection"}}}
            }
        },
        "/api/v1/lab_tech/samples/{id}/review": {
            "post": {
                "tags": ["Lab Tech"],
                "security": [{"BearerAuth": []}],
                "summary": "Approve or reject a sample",
                "parameters": [
                    {"in": "path", "name": "id", "required": true, "type": "string"},
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/ReviewSampleRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/SampleCollection"}}, "400": {"description": "Rejection without comments"}}
            }
        },
        "/api/v1/patient/results": {
            "get": {"tags": ["Patient"], "security": [{"BearerAuth": []}], "summary": "Own lab results", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/PatientResults"}}}}
        },
        "/api/v1/patient/results/export": {
            "get": {
                "tags": ["Patient"],
                "security": [{"BearerAuth": []}],
                "summary": "Download lab results",
                "produces": ["application/pdf", "text/csv"],
                "parameters": [{"in": "query", "name": "format", "type": "string", "enum": ["pdf", "csv"]}],
                "responses": {"200": {"description": "File"}}
            }
        },
        "/api/v1/files/{id}": {
            "get": {
                "tags": ["Files"],
                "summary": "Download an image through a signed link",
                "parameters": [
                    {"in": "path", "name": "id", "required": true, "type": "string"},
                    {"in": "query", "name": "token", "required": true, "type": "string"}
                ],
                "responses": {"200": {"description": "Image"}, "403": {"description": "Invalid or expired link"}}
            }
        }
    },
    "definitions": {
        "RegisterRequest": {
            "type": "object",
            "required": ["username", "password", "role", "firstName", "lastName"],
            "properties": {
                "username": {"type": "string"},
                "password": {"type": "string"},
                "role": {"type": "string", "enum": ["admin", "field_collector", "lab_tech", "patient"]},
                "firstName": {"type": "string"},
                "middleName": {"type": "string"},
                "lastName": {"type": "string"},
                "suffix": {"type": "string"},
                "email": {"type": "string"}
            }
        },
        "LoginRequest": {
            "type": "object",
            "required": ["username", "password"],
            "properties": {"username": {"type": "string"}, "password": {"type": "string"}}
        },
        "LoginResponse": {
            "type": "object",
            "properties": {
                "access_token": {"type": "string"},
                "token_type": {"type": "string"},
                "expires_in": {"type": "integer"},
                "issued_at": {"type": "string", "format": "date-time"},
                "user": {"$ref": "#/definitions/UserInfo"}
            }
        },
        "ChangePasswordRequest": {
            "type": "object",
            "required": ["currentPassword", "newPassword"],
            "properties": {"currentPassword": {"type": "string"}, "newPassword": {"type": "string"}}
        },
        "AdminStatus": {
            "type": "object",
            "properties": {"hasApprovedAdmins": {"type": "boolean"}, "approvedAdminCount": {"type": "integer"}}
        },
        "UserInfo": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "username": {"type": "string"},
                "role": {"type": "string"},
                "firstName": {"type": "string"},
                "lastName": {"type": "string"},
                "email": {"type": "string"},
                "isApproved": {"type": "boolean"},
                "isActive": {"type": "boolean"},
                "namespace": {"type": "string"}
            }
        },
        "User": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "username": {"type": "string"},
                "role": {"type": "string"},
                "firstName": {"type": "string"},
                "lastName": {"type": "string"},
                "email": {"type": "string"},
                "patientId": {"type": "string"},
                "isApproved": {"type": "boolean"},
                "isActive": {"type": "boolean"},
                "lastLogin": {"type": "string", "format": "date-time"},
                "createdAt": {"type": "string", "format": "date-time"},
                "updatedAt": {"type": "string", "format": "date-time"}
            }
        },
        "UserActionRequest": {
            "type": "object",
            "required": ["action"],
            "properties": {"action": {"type": "string", "enum": ["approve", "reject", "activate", "deactivate"]}}
        },
        "CreatePatientRequest": {
            "type": "object",
            "required": ["firstName", "lastName"],
            "properties": {
                "firstName": {"type": "string"},
                "middleName": {"type": "string"},
                "lastName": {"type": "string"},
                "dateOfBirth": {"type": "string"},
                "gender": {"type": "string", "enum": ["male", "female", "other"]},
                "phoneNumber": {"type": "string"},
                "email": {"type": "string"},
                "address": {"type": "string"}
            }
        },
        "CreatePatientResponse": {
            "type": "object",
            "properties": {
                "patient": {"type": "object"},
                "account": {
                    "type": "object",
                    "properties": {"username": {"type": "string"}, "otp": {"type": "string"}}
                }
            }
        },
        "SampleImage": {
            "type": "object",
            "properties": {
                "imageId": {"type": "string"},
                "filename": {"type": "string"},
                "contentType": {"type": "string"},
                "size": {"type": "integer"},
                "url": {"type": "string"}
            }
        },
        "SampleCollection": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "patientId": {"type": "string"},
                "patientName": {"type": "string"},
                "sampleType": {"type": "string"},
                "notes": {"type": "string"},
                "images": {"type": "array", "items": {"$ref": "#/definitions/SampleImage"}},
                "collectedBy": {"type": "string"},
                "collectionDate": {"type": "string", "format": "date-time"},
                "labStatus": {"type": "string", "enum": ["pending", "approved", "rejected"]},
                "labComments": {"type": "string"},
                "reviewedBy": {"type": "string"},
                "reviewedAt": {"type": "string", "format": "date-time"}
            }
        },
        "ReviewSampleRequest": {
            "type": "object",
            "required": ["status"],
            "properties": {"status": {"type": "string", "enum": ["approved", "rejected"]}, "comments": {"type": "string"}}
        },
        "PatientResults": {
            "type": "object",
            "properties": {
                "results": {
                    "type": "array",
                    "items": {
                        "type": "object",
                        "properties": {
                            "id": {"type": "string"},
                            "sampleType": {"type": "string"},
                            "collectionDate": {"type": "string", "format": "date-time"},
                            "labStatus": {"type": "string"},
                            "labComments": {"type": "string"},
                            "reviewedAt": {"type": "string", "format": "date-time"}
                        }
                    }
                },
                "patientInfo": {"type": "object"}
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
