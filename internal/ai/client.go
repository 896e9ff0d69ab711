package ai

import "docqa/pkg/aiinterface"

// 重新导出aiinterface包的类型
// 这样ai包的使用者无需引入子包, 同时避免了子包对父包的依赖
type (
	GenerationClient = aiinterface.GenerationClient
	EmbeddingClient  = aiinterface.EmbeddingClient
	ClientConfig     = aiinterface.ClientConfig
	ClientError      = aiinterface.ClientError
	ErrorType        = aiinterface.ErrorType
)

// 重新导出常量
const (
	ErrorTypeAuth          = aiinterface.ErrorTypeAuth
	ErrorTypeRateLimit     = aiinterface.ErrorTypeRateLimit
	ErrorTypeInvalidParams = aiinterface.ErrorTypeInvalidParams
	ErrorTypeServerError   = aiinterface.ErrorTypeServerError
	ErrorTypeNetwork       = aiinterface.ErrorTypeNetwork
	ErrorTypeUnknown       = aiinterface.ErrorTypeUnknown
)
