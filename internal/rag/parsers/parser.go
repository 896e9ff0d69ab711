package parsers

import "io"

// Parser 文件解析器
// 将一个源文件解析为若干逻辑单元(PDF 按页, 纯文本整体为一个单元)
type Parser interface {
	// Parse 解析文件内容, 返回按阅读顺序排列的逻辑单元文本
	Parse(reader io.Reader) ([]string, error)

	// CanParse 检查是否可以解析指定扩展名的文件
	CanParse(extension string) bool
}
