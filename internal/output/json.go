package output

import (
	"encoding/json"
	"io"

	"github.com/RecoveryAshes/webscraper/internal/models"
)

// JSONSerializer 字段原样输出,两空格缩进
type JSONSerializer struct{}

func (JSONSerializer) Format() string    { return FormatJSON }
func (JSONSerializer) Extension() string { return "json" }

func (JSONSerializer) RenderContent(w io.Writer, r *models.ContentRecord) error {
	return writeJSON(w, r)
}

func (JSONSerializer) RenderPDF(w io.Writer, r *models.PdfRecord) error {
	return writeJSON(w, r)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
