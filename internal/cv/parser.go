package cv

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"code.sajari.com/docconv"
)

// Parser extracts plain text from uploaded CV documents. Files are written
// to uploadsDir as transient parse inputs, not retained as blobs.
type Parser struct {
	uploadsDir string
}

// ParsedDocument is the text form of one uploaded CV.
type ParsedDocument struct {
	Filename string
	FileType string
	FileSize int64
	FullText string
}

func NewParser(uploadsDir string) *Parser {
	return &Parser{uploadsDir: uploadsDir}
}

// ParseFile extracts text from PDF/DOCX/TXT files.
func (p *Parser) ParseFile(filename string, reader io.Reader) (*ParsedDocument, error) {
	filePath := filepath.Join(p.uploadsDir, filepath.Base(filename))
	if err := os.MkdirAll(p.uploadsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create uploads dir: %w", err)
	}

	file, err := os.Create(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	size, err := io.Copy(file, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to save file: %w", err)
	}

	fileType := strings.ToLower(filepath.Ext(filename))
	var text string

	switch fileType {
	case ".pdf", ".docx", ".doc", ".rtf", ".odt":
		res, err := docconv.ConvertPath(filePath)
		if err != nil {
			return nil, fmt.Errorf("failed to parse document: %w", err)
		}
		text = res.Body
	case ".txt":
		content, err := os.ReadFile(filePath)
		if err != nil {
			return nil, fmt.Errorf("failed to read text file: %w", err)
		}
		text = string(content)
	default:
		return nil, fmt.Errorf("unsupported file type: %s", fileType)
	}

	return &ParsedDocument{
		Filename: filepath.Base(filename),
		FileType: fileType,
		FileSize: size,
		FullText: text,
	}, nil
}
