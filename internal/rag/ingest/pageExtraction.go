package ingest

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/akolanti/docqa/internal/domain/commonModels"
	"github.com/dslipak/pdf"
	"github.com/gabriel-vasile/mimetype"
	"github.com/lu4p/cat"
)

type rawPage struct {
	Number  int    `json:"number"`
	Content string `json:"content"`
}

// extractedDoc keeps the page count the document declares, pages that could
// not be read are missing from Pages but still counted.
type extractedDoc struct {
	Pages      []rawPage
	TotalPages int
}

type docFormat struct {
	docType   commonModels.DocType
	extension string
	label     string
}

// detectFormat sniffs the content, the file name is not trusted.
func detectFormat(content []byte) (docFormat, error) {
	if len(content) == 0 {
		return docFormat{}, fmt.Errorf("%w: empty document", commonModels.ErrDocumentParse)
	}
	mime := mimetype.Detect(content).String()
	base := strings.TrimSpace(strings.SplitN(mime, ";", 2)[0])

	switch base {
	case "application/pdf":
		return docFormat{docType: commonModels.PDF, extension: ".pdf", label: "PDF"}, nil
	case "application/vnd.openxmlformats-officedocument.wordprocessingml.document":
		return docFormat{docType: commonModels.DOCX, extension: ".docx", label: "DOCX"}, nil
	case "application/vnd.oasis.opendocument.text":
		return docFormat{docType: commonModels.DOCX, extension: ".odt", label: "ODT"}, nil
	case "text/rtf", "application/rtf":
		return docFormat{docType: commonModels.DOCX, extension: ".rtf", label: "RTF"}, nil
	case "text/plain":
		return docFormat{docType: commonModels.TXT, extension: ".txt", label: "TXT"}, nil
	default:
		return docFormat{docType: commonModels.ERR}, fmt.Errorf("%w: %s", commonModels.ErrUnsupportedFormat, mime)
	}
}

func extractText(path string, format docFormat) (extractedDoc, error) {
	switch format.docType {
	case commonModels.PDF:
		return extractPDF(path)
	case commonModels.DOCX, commonModels.TXT:
		return extractdocxTxtRtf(path)
	default:
		return extractedDoc{}, fmt.Errorf("%w: %s", commonModels.ErrUnsupportedFormat, format.docType)
	}
}

func extractPDF(path string) (extractedDoc, error) {
	logger.Debug("extractPDF", "attempting extraction", path)
	f, err := os.Open(path)
	if err != nil {
		return extractedDoc{}, fmt.Errorf("%w: failed to open pdf: %v", commonModels.ErrDocumentParse, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return extractedDoc{}, fmt.Errorf("%w: failed to stat pdf: %v", commonModels.ErrDocumentParse, err)
	}

	reader, err := newPDFReader(f, info.Size())
	if err != nil {
		logger.Error("failed opening of pdf file")
		return extractedDoc{}, fmt.Errorf("%w: failed to open pdf: %v", commonModels.ErrDocumentParse, err)
	}

	var pages []rawPage
	numPages := reader.NumPage()
	logger.Debug("extractPDF", "number of pages", numPages)
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			logger.Debug("extractPDF", "null page", i)
			continue
		}

		content, err := protectExtract(page)
		if err != nil {
			// Log warning but continue with other pages
			logger.Warn("Error parsing page content", "page", i, "error", err)
			continue
		}

		pages = append(pages, rawPage{
			Number:  i - 1,
			Content: content,
		})
	}
	return extractedDoc{Pages: pages, TotalPages: numPages}, nil
}

// the pdf package panics on some malformed cross reference tables
func newPDFReader(f *os.File, size int64) (r *pdf.Reader, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("malformed pdf: %v", rec)
		}
	}()
	return pdf.NewReader(f, size)
}

// File reads a .odt, .docx, .rtf or plaintext file and returns the content as a string
func extractdocxTxtRtf(path string) (extractedDoc, error) {
	text, err := cat.File(path)
	if err != nil {
		logger.Error("Error extracting content from doc")
		return extractedDoc{}, fmt.Errorf("%w: failed to extract document: %v", commonModels.ErrDocumentParse, err)
	}

	//these formats carry no page boundaries, the whole text is page 0
	return extractedDoc{
		Pages:      []rawPage{{Number: 0, Content: text}},
		TotalPages: 1,
	}, nil
}

func protectExtract(page pdf.Page) (string, error) {
	type result struct {
		content string
		err     error
	}
	resChan := make(chan result, 1)

	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				resChan <- result{"", fmt.Errorf("page extraction panic: %v", rec)}
			}
		}()
		content, err := page.GetPlainText(nil)
		resChan <- result{content, err}
	}()
	select {
	case r := <-resChan:
		return r.content, r.err
	case <-time.After(pageExtractTimeout):
		logger.Error("pageExtract", "timeout")
		return "", errors.New("timeout")
	}
}
