package response

// 业务状态码，写入响应体 status_code，沿用 HTTP 语义
const (
	CodeOK              = 0
	CodeBadRequest      = 400 // 参数校验失败、状态流转非法
	CodeUnauthorized    = 401
	CodeForbidden       = 403
	CodeNotFound        = 404
	CodeTooManyRequests = 429
	CodeInternal        = 500
)
