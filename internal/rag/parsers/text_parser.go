package parsers

import (
	"fmt"
	"io"
	"strings"
)

// TextParser 纯文本/Markdown 解析器, 整个文件作为一个逻辑单元
type TextParser struct{}

// NewTextParser 创建纯文本解析器
func NewTextParser() *TextParser {
	return &TextParser{}
}

// Parse 读取全部内容作为单个逻辑单元
func (p *TextParser) Parse(reader io.Reader) ([]string, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("读取文本内容失败: %w", err)
	}

	content := string(data)
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("文件内容为空")
	}

	return []string{content}, nil
}

// SupportedExtensions 支持的文件扩展名
func (p *TextParser) SupportedExtensions() []string {
	return []string{".txt", ".md"}
}

// CanParse 检查是否可以解析指定扩展名的文件
func (p *TextParser) CanParse(extension string) bool {
	extension = strings.ToLower(extension)
	for _, ext := range p.SupportedExtensions() {
		if ext == extension {
			return true
		}
	}
	return false
}
