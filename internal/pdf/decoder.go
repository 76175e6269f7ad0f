package pdf

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PageSource 单页文本来源,每页独立解码
type PageSource interface {
	Text() (string, error)
}

// Document 解码后的PDF
type Document struct {
	Metadata map[string]string
	Pages    []PageSource
}

// Decoder PDF二进制解码器
type Decoder interface {
	Decode(data []byte) (*Document, error)
}

// MetadataKeys Info字典中读取的字段
var MetadataKeys = []string{"Title", "Author", "Subject", "Keywords", "Creator", "Producer", "CreationDate", "ModDate"}

// LedongthucDecoder 基于 github.com/ledongthuc/pdf 的解码器
type LedongthucDecoder struct{}

// Decode 解析PDF结构并读取Info字典。解析库内部的panic会被转换为错误。
func (LedongthucDecoder) Decode(data []byte) (doc *Document, err error) {
	defer func() {
		if r := recover(); r != nil {
			doc = nil
			err = fmt.Errorf("PDF结构损坏: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("打开PDF失败: %w", err)
	}

	doc = &Document{Metadata: map[string]string{}}

	info := reader.Trailer().Key("Info")
	if !info.IsNull() {
		for _, key := range MetadataKeys {
			if v := strings.TrimSpace(info.Key(key).Text()); v != "" {
				doc.Metadata[key] = v
			}
		}
	}

	for i := 1; i <= reader.NumPage(); i++ {
		doc.Pages = append(doc.Pages, ledongthucPage{page: reader.Page(i)})
	}
	return doc, nil
}

type ledongthucPage struct {
	page pdf.Page
}

func (p ledongthucPage) Text() (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("页面解码失败: %v", r)
		}
	}()
	if p.page.V.IsNull() {
		return "", nil
	}
	return p.page.GetPlainText(nil)
}
