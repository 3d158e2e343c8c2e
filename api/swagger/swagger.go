package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "CourseMart API",
        "description": "Storefront and back-office API for the course marketplace",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http",
        "https"
    ],
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "in": "header",
            "name": "Authorization"
        }
    },
    "tags": [
        {
            "name": "Auth"
        },
        {
            "name": "Catalog"
        },
        {
            "name": "Cart"
        },
        {
            "name": "Checkout"
        },
        {
            "name": "Student"
        },
        {
            "name": "Admin"
        },
        {
            "name": "Transfers"
        }
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": [
                    "Auth"
                ],
                "summary": "Login with email and password",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "$ref": "#/responses/Error"
                    }
                },
                "parameters": [
                    {
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/LoginRequest"
                        }
                    }
                ]
            }
        },
        "/auth/logout": {
            "post": {
                "tags": [
                    "Auth"
                ],
                "summary": "Revoke the current session",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "$ref": "#/responses/Error"
                    },
                    "401": {
                        "$ref": "#/responses/Error"
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/auth/me": {
            "get": {
                "tags": [
                    "Auth"
                ],
                "summary": "Current user",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "$ref": "#/responses/Error"
                    },
                    "401": {
                        "$ref": "#/responses/Error"
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/catalog/courses": {
            "get": {
                "tags": [
                    "Catalog"
                ],
                "summary": "List published courses",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "$ref": "#/responses/Error"
                    }
                },
                "parameters": [
                    {
                        "name": "search",
                        "in": "query",
                        "type": "string",
                        "required": false
                    },
                    {
                        "name": "category",
                        "in": "query",
                        "type": "integer",
                        "required": false
                    },
                    {
                        "name": "sort",
                        "in": "query",
                        "type": "string",
                        "required": false,
                        "description": "price_asc or price_desc"
                    },
                    {
                        "name": "page",
                        "in": "query",
                        "type": "integer",
                        "required": false
                    }
                ]
            }
        },
        "/catalog/courses/{slug}": {
            "get": {
                "tags": [
                    "Catalog"
                ],
                "summary": "Course detail with curriculum",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "$ref": "#/responses/Error"
                    }
                },
                "parameters": [
                    {
                        "name": "slug",
                        "in": "path",
                        "type": "string",
                        "required": true
                    }
                ]
            }
        },
        "/catalog/categories": {
            "get": {
                "tags": [
                    "Catalog"
                ],
                "summary": "List categories",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "$ref": "#/responses/Error"
                    }
                }
            }
        },
        "/courses/{courseId}/enrollment": {
            "get": {
                "tags": [
                    "Catalog"
                ],
                "summary": "Enrollment and cart status for a course",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "$ref": "#/responses/Error"
                    }
                },
                "parameters": [
                    {
                        "name": "courseId",
                        "in": "path",
                        "type": "integer",
                        "required": true
                    }
                ]
            }
        },
        "/cart": {
            "get": {
                "tags": [
                    "Cart"
                ],
                "summary": "Load the cart",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "$ref": "#/responses/Error"
                    },
                    "401": {
                        "$ref": "#/responses/Error"
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/cart/items": {
            "post": {
                "tags": [
                    "Cart"
                ],
                "summary": "Add a course to the cart",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "$ref": "#/responses/Error"
                    },
                    "401": {
                        "$ref": "#/responses/Error"
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/AddToCartRequest"
                        }
                    }
                ]
            }
        },
        "/cart/items/{courseId}": {
            "delete": {
                "tags": [
                    "Cart"
                ],
                "summary": "Remove a course from the cart",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "$ref": "#/responses/Error"
                    },
                    "401": {
                        "$ref": "#/responses/Error"
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "courseId",
                        "in": "path",
                        "type": "integer",
                        "required": true
                    }
                ]
            }
        },
        "/checkout": {
            "get": {
                "tags": [
                    "Checkout"
                ],
                "summary": "Checkout view",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "$ref": "#/responses/Error"
                    },
                    "401": {
                        "$ref": "#/responses/Error"
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/checkout/method": {
            "put": {
                "tags": [
                    "Checkout"
                ],
                "summary": "Select a payment method",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "$ref": "#/responses/Error"
                    },
                    "401": {
                        "$ref": "#/responses/Error"
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/SelectMethodRequest"
                        }
                    }
                ]
            }
        },
        "/checkout/paystack/init": {
            "post": {
                "tags": [
                    "Checkout"
                ],
                "summary": "Prepare the Paystack popup",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "$ref": "#/responses/Error"
                    },
                    "401": {
                        "$ref": "#/responses/Error"
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/checkout/paystack/complete": {
            "post": {
                "tags": [
                    "Checkout"
                ],
                "summary": "Record a Paystack payment and enroll",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "$ref": "#/responses/Error"
                    },
                    "401": {
                        "$ref": "#/responses/Error"
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/CompletePaystackRequest"
                        }
                    }
                ]
            }
        },
        "/checkout/paystack/cancel": {
            "post": {
                "tags": [
                    "Checkout"
                ],
                "summary": "Close the Paystack popup",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "$ref": "#/responses/Error"
                    },
                    "401": {
                        "$ref": "#/responses/Error"
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/checkout/bank/proceed": {
            "post": {
                "tags": [
                    "Checkout"
                ],
                "summary": "Show bank transfer details",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "$ref": "#/responses/Error"
                    },
                    "401": {
                        "$ref": "#/responses/Error"
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/checkout/bank/submit": {
            "post": {
                "tags": [
                    "Checkout"
                ],
                "summary": "Submit transfer evidence",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "$ref": "#/responses/Error"
                    },
                    "401": {
                        "$ref": "#/responses/Error"
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "email",
                        "in": "formData",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "full_name",
                        "in": "formData",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "phone_number",
                        "in": "formData",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "evidence",
                        "in": "formData",
                        "type": "file",
                        "required": true
                    }
                ],
                "consumes": [
                    "multipart/form-data"
                ]
            }
        },
        "/receipts/download": {
            "get": {
                "tags": [
                    "Checkout"
                ],
                "summary": "Download a signed receipt",
                "produces": [
                    "application/pdf"
                ],
                "parameters": [
                    {
                        "name": "token",
                        "in": "query",
                        "type": "string",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "PDF receipt"
                    },
                    "404": {
                        "$ref": "#/responses/Error"
                    }
                }
            }
        },
        "/student/courses": {
            "get": {
                "tags": [
                    "Student"
                ],
                "summary": "Enrolled courses",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "$ref": "#/responses/Error"
                    },
                    "401": {
                        "$ref": "#/responses/Error"
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ]
            }
        },
        "/student/courses/{slug}": {
            "get": {
                "tags": [
                    "Student"
                ],
                "summary": "Course player with progress",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "$ref": "#/responses/Error"
                    },
                    "401": {
                        "$ref": "#/responses/Error"
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "slug",
                        "in": "path",
                        "type": "string",
                        "required": true
                    }
                ]
            }
        },
        "/student/courses/{slug}/lectures/{lectureId}/progress": {
            "post": {
                "tags": [
                    "Student"
                ],
                "summary": "Report a playback tick",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "$ref": "#/responses/Error"
                    },
                    "401": {
                        "$ref": "#/responses/Error"
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "slug",
                        "in": "path",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "lectureId",
                        "in": "path",
                        "type": "integer",
                        "required": true
                    },
                    {
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/PlaybackTick"
                        }
                    }
                ]
            },
            "delete": {
                "tags": [
                    "Student"
                ],
                "summary": "Reset lecture progress",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "$ref": "#/responses/Error"
                    },
                    "401": {
                        "$ref": "#/responses/Error"
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "slug",
                        "in": "path",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "lectureId",
                        "in": "path",
                        "type": "integer",
                        "required": true
                    }
                ]
            }
        },
        "/admin/resources/{resource}": {
            "get": {
                "tags": [
                    "Admin"
                ],
                "summary": "List records",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "$ref": "#/responses/Error"
                    },
                    "401": {
                        "$ref": "#/responses/Error"
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "resource",
                        "in": "path",
                        "type": "string",
                        "required": true,
                        "description": "categories, courses, chapters or lectures"
                    }
                ]
            },
            "post": {
                "tags": [
                    "Admin"
                ],
                "summary": "Create a record",
                "responses": {
                    "201": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "$ref": "#/responses/Error"
                    },
                    "401": {
                        "$ref": "#/responses/Error"
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "resource",
                        "in": "path",
                        "type": "string",
                        "required": true
                    }
                ],
                "consumes": [
                    "application/x-www-form-urlencoded"
                ]
            }
        },
        "/admin/resources/{resource}/{id}": {
            "put": {
                "tags": [
                    "Admin"
                ],
                "summary": "Update a record",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "$ref": "#/responses/Error"
                    },
                    "401": {
                        "$ref": "#/responses/Error"
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "resource",
                        "in": "path",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "id",
                        "in": "path",
                        "type": "integer",
                        "required": true
                    }
                ],
                "consumes": [
                    "application/x-www-form-urlencoded"
                ]
            },
            "delete": {
                "tags": [
                    "Admin"
                ],
                "summary": "Delete a record",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "$ref": "#/responses/Error"
                    },
                    "401": {
                        "$ref": "#/responses/Error"
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "resource",
                        "in": "path",
                        "type": "string",
                        "required": true
                    },
                    {
                        "name": "id",
                        "in": "path",
                        "type": "integer",
                        "required": true
                    }
                ]
            }
        },
        "/admin/users": {
            "get": {
                "tags": [
                    "Admin"
                ],
                "summary": "List users",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "$ref": "#/responses/Error"
                    },
                    "401": {
                        "$ref": "#/responses/Error"
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "role",
                        "in": "query",
                        "type": "string",
                        "required": false
                    }
                ]
            }
        },
        "/admin/users/{id}/role": {
            "put": {
                "tags": [
                    "Admin"
                ],
                "summary": "Change a user's role",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "$ref": "#/responses/Error"
                    },
                    "401": {
                        "$ref": "#/responses/Error"
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "integer",
                        "required": true
                    },
                    {
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/UpdateRoleRequest"
                        }
                    }
                ]
            }
        },
        "/admin/transfers": {
            "get": {
                "tags": [
                    "Transfers"
                ],
                "summary": "List bank transfers",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "$ref": "#/responses/Error"
                    },
                    "401": {
                        "$ref": "#/responses/Error"
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "filter",
                        "in": "query",
                        "type": "string",
                        "required": false,
                        "description": "pending, success, failed or all"
                    }
                ]
            }
        },
        "/admin/transfers/export": {
            "get": {
                "tags": [
                    "Transfers"
                ],
                "summary": "Export bank transfers",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "text/csv",
                    "application/pdf"
                ],
                "parameters": [
                    {
                        "name": "filter",
                        "in": "query",
                        "type": "string",
                        "required": false,
                        "description": "pending, success, failed or all"
                    },
                    {
                        "name": "format",
                        "in": "query",
                        "type": "string",
                        "required": false,
                        "description": "csv or pdf"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Export file"
                    }
                }
            }
        },
        "/admin/transfers/{id}/verify": {
            "post": {
                "tags": [
                    "Transfers"
                ],
                "summary": "Verify or reject a transfer",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "$ref": "#/responses/Error"
                    },
                    "401": {
                        "$ref": "#/responses/Error"
                    }
                },
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "integer",
                        "required": true
                    },
                    {
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/VerifyTransferRequest"
                        }
                    }
                ]
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "properties": {
                "email": {
                    "type": "string"
                },
                "password": {
                    "type": "string"
                }
            },
            "required": [
                "email",
                "password"
            ]
        },
        "AddToCartRequest": {
            "type": "object",
            "properties": {
                "course_id": {
                    "type": "integer"
                }
            },
            "required": [
                "course_id"
            ]
        },
        "SelectMethodRequest": {
            "type": "object",
            "properties": {
                "method": {
                    "type": "string"
                }
            },
            "required": [
                "method"
            ]
        },
        "CompletePaystackRequest": {
            "type": "object",
            "properties": {
                "reference": {
                    "type": "string"
                }
            },
            "required": [
                "reference"
            ]
        },
        "PlaybackTick": {
            "type": "object",
            "properties": {
                "current_time": {
                    "type": "number"
                },
                "duration": {
                    "type": "number"
                }
            },
            "required": [
                "current_time",
                "duration"
            ]
        },
        "UpdateRoleRequest": {
            "type": "object",
            "properties": {
                "role": {
                    "type": "string"
                }
            },
            "required": [
                "role"
            ]
        },
        "VerifyTransferRequest": {
            "type": "object",
            "required": [
                "status"
            ],
            "properties": {
                "status": {
                    "type": "string",
                    "enum": [
                        "success",
                        "failed"
                    ]
                }
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {
                    "type": "integer"
                },
                "page_size": {
                    "type": "integer"
                },
                "total_count": {
                    "type": "integer"
                },
                "total_pages": {
                    "type": "integer"
                }
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {
                    "type": "string"
                },
                "message": {
                    "type": "string"
                },
                "status": {
                    "type": "integer"
                }
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {
                    "type": "object"
                },
                "error": {
                    "$ref": "#/definitions/APIError"
                },
                "pagination": {
                    "$ref": "#/definitions/Pagination"
                },
                "meta": {
                    "type": "object"
                }
            }
        }
    },
    "responses": {
        "Error": {
            "description": "Error envelope",
            "schema": {
                "$ref": "#/definitions/ResponseEnvelope"
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
