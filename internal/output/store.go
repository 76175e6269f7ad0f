package output

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/RecoveryAshes/webscraper/internal/metrics"
	"github.com/RecoveryAshes/webscraper/internal/models"
)

// Store 把记录写入输出目录,目录由调用方创建
type Store struct {
	Dir string
	now func() time.Time
}

// NewStore 创建Store
func NewStore(dir string) *Store {
	return &Store{Dir: dir, now: time.Now}
}

func (s *Store) clock() time.Time {
	if s.now == nil {
		return time.Now()
	}
	return s.now()
}

// SaveContent 以域名为文件名保存网页记录
func (s *Store) SaveContent(r *models.ContentRecord, ser Serializer) (string, error) {
	name := GenerateFilename(r.Domain, ser.Extension(), s.clock())
	return s.write(name, ser, func(f *bufio.Writer) error {
		return ser.RenderContent(f, r)
	})
}

// SavePDF 以PDF文件主名为文件名保存PDF记录
func (s *Store) SavePDF(r *models.PdfRecord, ser Serializer) (string, error) {
	base := pdfBase(r.Path)
	if r.SourcePath != "" {
		base = pdfBase(r.SourcePath)
	}
	name := GenerateFilename(base, ser.Extension(), s.clock())
	return s.write(name, ser, func(f *bufio.Writer) error {
		return ser.RenderPDF(f, r)
	})
}

func (s *Store) write(name string, ser Serializer, render func(*bufio.Writer) error) (outPath string, err error) {
	outPath = filepath.Join(s.Dir, name)
	f, err := os.Create(outPath)
	if err != nil {
		return "", fmt.Errorf("创建输出文件失败: %w", err)
	}
	defer func() {
		closeErr := f.Close()
		if err == nil && closeErr != nil {
			err = fmt.Errorf("关闭输出文件失败: %w", closeErr)
		}
		// 写入失败时不留下残缺文件
		if err != nil {
			if rmErr := os.Remove(outPath); rmErr != nil && !os.IsNotExist(rmErr) {
				log.Warn().Err(rmErr).Str("path", outPath).Msg("删除残缺输出文件失败")
			}
			outPath = ""
		}
	}()

	bw := bufio.NewWriter(f)
	if err := render(bw); err != nil {
		return "", fmt.Errorf("渲染%s输出失败: %w", ser.Format(), err)
	}
	if err := bw.Flush(); err != nil {
		return "", fmt.Errorf("写入输出文件失败: %w", err)
	}
	if err := f.Sync(); err != nil {
		return "", fmt.Errorf("写入输出文件失败: %w", err)
	}

	metrics.RecordsSaved.WithLabelValues(ser.Format()).Inc()
	log.Debug().Str("path", outPath).Str("format", ser.Format()).Msg("记录已保存")
	return outPath, nil
}
