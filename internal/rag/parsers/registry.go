package parsers

import (
	"path/filepath"
	"strings"
)

// Registry 解析器注册表, 按扩展名路由到对应解析器
type Registry struct {
	parsers []Parser
}

// NewRegistry 创建注册表并注册内置解析器
func NewRegistry() *Registry {
	return &Registry{
		parsers: []Parser{
			NewPDFParser(),
			NewTextParser(),
		},
	}
}

// ForFile 根据文件名选择解析器, 不支持的格式返回 nil
func (r *Registry) ForFile(filename string) Parser {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, p := range r.parsers {
		if p.CanParse(ext) {
			return p
		}
	}
	return nil
}

// Supported 判断文件是否为受支持的格式
func (r *Registry) Supported(filename string) bool {
	return r.ForFile(filename) != nil
}
