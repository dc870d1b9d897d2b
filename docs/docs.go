// Package docs 由 swag init 生成，路由注解变更后重新生成
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
        "/cycles/{cycle}/review-test": {
            "post": {
                "security": [{"ApiKeyAuth": []}],
                "description": "根据本周期四套已完成考试的错题和高优先级题目，生成 180 题的第五套复习卷",
                "produces": ["application/json"],
                "tags": ["复习卷"],
                "summary": "生成复习卷",
                "parameters": [
                    {"type": "integer", "description": "周期", "name": "cycle", "in": "path", "required": true}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/util.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/util.Response"}},
                    "409": {"description": "考试未完成或正在生成", "schema": {"$ref": "#/definitions/util.Response"}},
                    "422": {"description": "考试数据损坏或题量不足", "schema": {"$ref": "#/definitions/util.Response"}},
                    "503": {"description": "考试记录存储不可用", "schema": {"$ref": "#/definitions/util.Response"}}
                }
            }
        },
        "/cycles/{cycle}/review-test/progress": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "produces": ["application/json"],
                "tags": ["复习卷"],
                "summary": "复习卷生成进度",
                "parameters": [
                    {"type": "integer", "description": "周期", "name": "cycle", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/util.Response"}}
                }
            }
        },
        "/cycles/{cycle}/review-test/progress/ws": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "description": "WebSocket，先推送当前进度，之后每次阶段切换推送一次，到达 done 或 failed 后关闭",
                "tags": ["复习卷"],
                "summary": "复习卷生成进度推送",
                "parameters": [
                    {"type": "integer", "description": "周期", "name": "cycle", "in": "path", "required": true},
                    {"type": "string", "description": "浏览器无法设置请求头时通过查询参数传递令牌", "name": "token", "in": "query"}
                ],
                "responses": {}
            }
        },
        "/cycles/{cycle}/sessions": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "produces": ["application/json"],
                "tags": ["考试"],
                "summary": "周期内的考试列表",
                "parameters": [
                    {"type": "integer", "description": "周期", "name": "cycle", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/util.Response"}}
                }
            }
        },
        "/exam-sessions/{id}": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "description": "返回考试记录及题目，复习卷生成后前端用它加载试卷",
                "produces": ["application/json"],
                "tags": ["考试"],
                "summary": "获取考试记录",
                "parameters": [
                    {"type": "string", "description": "考试记录ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/util.Response"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/util.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/util.Response"}}
                }
            }
        },
        "/health": {
            "get": {
                "description": "检查数据库和 Redis 连接",
                "produces": ["application/json"],
                "tags": ["系统"],
                "summary": "健康检查",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/util.Response"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/util.Response"}}
                }
            }
        }
    },
    "definitions": {
        "util.Response": {
            "type": "object",
            "properties": {
                "code": {"type": "integer"},
                "data": {},
                "message": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "ApiKeyAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "考前复习 后端 API",
	Description:      "周期考试与自适应复习卷服务。",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
