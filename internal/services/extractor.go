package services

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
	"go.uber.org/zap"

	"hireny/job-board/internal/logger"
)

const (
	msgPDFEmpty  = "[Warning: The PDF appears to be empty or image-based. Please try a text-based PDF.]"
	msgDOCXEmpty = "[No text content found in DOCX]"

	// Signed object-store links usually answer with a redirect.
	maxDownloadRedirects = 5
)

// Extractor turns a stored résumé into plain text. It never fails: problems are
// reported as a bracketed diagnostic string that flows into the prompt.
type Extractor interface {
	Extract(source string) string
	ExtractBytes(data []byte, ext string) string
}

type extractor struct {
	downloadTimeout time.Duration
	log             *zap.Logger
}

func NewExtractor(downloadTimeout time.Duration, log *zap.Logger) Extractor {
	if downloadTimeout <= 0 {
		downloadTimeout = 30 * time.Second
	}
	return &extractor{
		downloadTimeout: downloadTimeout,
		log:             logger.OrNop(log),
	}
}

// ExtensionOf returns the lowercase extension of a path or URL without the
// dot. Query strings and fragments are ignored.
func ExtensionOf(source string) string {
	if i := strings.IndexAny(source, "?#"); i >= 0 {
		source = source[:i]
	}
	return strings.TrimPrefix(strings.ToLower(path.Ext(source)), ".")
}

func IsRemote(source string) bool {
	s := strings.ToLower(source)
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func (e *extractor) Extract(source string) string {
	ext := ExtensionOf(source)
	e.log.Debug("extracting resume text", zap.String("source", source), zap.String("ext", ext))

	var data []byte
	if IsRemote(source) {
		code, body, errs := fiber.Get(source).
			Timeout(e.downloadTimeout).
			MaxRedirectsCount(maxDownloadRedirects).
			Bytes()
		if len(errs) > 0 {
			return fmt.Sprintf("[Error reading resume file: %s]", errors.Join(errs...))
		}
		if code < 200 || code > 299 {
			return fmt.Sprintf("[Error: Could not download resume file. Status: %d]", code)
		}
		data = body
	} else {
		b, err := os.ReadFile(source)
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Sprintf("[Error: File not found at %s]", source)
		}
		if err != nil {
			return fmt.Sprintf("[Error reading resume file: %s]", err)
		}
		data = b
	}

	return e.ExtractBytes(data, ext)
}

func (e *extractor) ExtractBytes(data []byte, ext string) string {
	switch ext {
	case "txt":
		return strings.ToValidUTF8(string(data), "�")
	case "pdf":
		return extractPDF(data)
	case "docx", "doc":
		return extractDOCX(data)
	}

	if ext == "" {
		ext = "unknown"
	}
	return fmt.Sprintf("[Unsupported file format: %s] Please upload a PDF, DOCX, or TXT file.", ext)
}

func extractPDF(data []byte) (text string) {
	// The parser panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			text = fmt.Sprintf("[Error parsing PDF: %v]", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return fmt.Sprintf("[Error parsing PDF: %s]", err)
	}

	var textBuilder strings.Builder
	totalPage := r.NumPage()

	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		pageText, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}

		textBuilder.WriteString(pageText)
		textBuilder.WriteString("\n\n")
	}

	text = strings.TrimSpace(textBuilder.String())
	if text == "" {
		return msgPDFEmpty
	}
	return text
}

func extractDOCX(data []byte) string {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return fmt.Sprintf("[Error parsing DOCX: %s]", err)
	}
	defer doc.Close()

	text, err := documentXMLText(doc.Editable().GetContent())
	if err != nil {
		return fmt.Sprintf("[Error parsing DOCX: %s]", err)
	}
	if text == "" {
		return msgDOCXEmpty
	}
	return text
}

// documentXMLText flattens WordprocessingML into text, one line per paragraph.
func documentXMLText(content string) (string, error) {
	dec := xml.NewDecoder(strings.NewReader(content))
	var b strings.Builder
	inText := false

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				b.WriteString("\t")
			case "br":
				b.WriteString("\n")
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				b.WriteString("\n")
			}
		case xml.CharData:
			if inText {
				b.Write(t)
			}
		}
	}

	return strings.TrimSpace(b.String()), nil
}
