package transcript

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ledongthuc/pdf"
	"github.com/xuri/excelize/v2"

	"github.com/uninav/advisor-api/internal/models"
)

// ExtractText turns raw document bytes into plain text, sniffing the format
// from the content itself. Line structure is preserved because the
// recognizer works line by line. When no extractable text results the error
// is a ParseError with KindEmptyDocument.
func ExtractText(data []byte) (models.DocumentFormat, string, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return "", "", emptyDocumentError(nil)
	}

	switch {
	case bytes.HasPrefix(data, []byte("%PDF-")):
		text, err := extractPDF(data)
		return finishExtraction(models.FormatPDF, text, err)

	case bytes.HasPrefix(data, []byte("PK\x03\x04")):
		zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
		if err != nil {
			return "", "", emptyDocumentError(err)
		}
		if hasZipEntry(zr, "word/document.xml") {
			text, err := extractDOCX(zr)
			return finishExtraction(models.FormatDOCX, text, err)
		}
		if hasZipEntry(zr, "xl/workbook.xml") {
			text, err := extractXLSX(data)
			return finishExtraction(models.FormatXLSX, text, err)
		}
		return "", "", emptyDocumentError(fmt.Errorf("unsupported archive layout"))

	case looksLikeHTML(data):
		text, err := extractHTML(data)
		return finishExtraction(models.FormatHTML, text, err)

	case mostlyPrintable(data):
		return finishExtraction(models.FormatText, string(data), nil)

	default:
		return "", "", emptyDocumentError(fmt.Errorf("unrecognized binary content"))
	}
}

func finishExtraction(format models.DocumentFormat, text string, err error) (models.DocumentFormat, string, error) {
	if err != nil {
		return "", "", emptyDocumentError(err)
	}
	normalized := normalizeText(text)
	if normalized == "" {
		return "", "", emptyDocumentError(fmt.Errorf("document yielded no text"))
	}
	return format, normalized, nil
}

// extractPDF reads text row by row to keep line boundaries. The underlying
// reader panics on some malformed files, so that is translated to an error.
func extractPDF(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf reader: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	var sb strings.Builder
	for pageNo := 1; pageNo <= reader.NumPage(); pageNo++ {
		page := reader.Page(pageNo)
		if page.V.IsNull() {
			continue
		}
		rows, rowErr := page.GetTextByRow()
		if rowErr != nil {
			continue
		}
		for _, row := range rows {
			var line strings.Builder
			for _, fragment := range row.Content {
				if line.Len() > 0 {
					line.WriteByte(' ')
				}
				line.WriteString(fragment.S)
			}
			if line.Len() > 0 {
				sb.WriteString(line.String())
				sb.WriteByte('\n')
			}
		}
	}

	if sb.Len() == 0 {
		// Fall back to the flat reader when row extraction found nothing.
		plain, plainErr := reader.GetPlainText()
		if plainErr != nil {
			return "", fmt.Errorf("pdf text: %w", plainErr)
		}
		var buf bytes.Buffer
		if _, copyErr := io.Copy(&buf, plain); copyErr != nil {
			return "", fmt.Errorf("pdf text: %w", copyErr)
		}
		return buf.String(), nil
	}

	return sb.String(), nil
}

// extractDOCX walks word/document.xml emitting one line per paragraph and
// one line per table row, with cells joined by spaces.
func extractDOCX(zr *zip.Reader) (string, error) {
	entry := findZipEntry(zr, "word/document.xml")
	if entry == nil {
		return "", fmt.Errorf("document.xml missing")
	}

	rc, err := entry.Open()
	if err != nil {
		return "", fmt.Errorf("open document.xml: %w", err)
	}
	defer rc.Close()

	decoder := xml.NewDecoder(rc)
	var sb strings.Builder
	inText := false
	cellDepth := 0

	for {
		tok, tokErr := decoder.Token()
		if tokErr == io.EOF {
			break
		}
		if tokErr != nil {
			return "", fmt.Errorf("parse document.xml: %w", tokErr)
		}

		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "t":
				inText = true
			case "tc":
				cellDepth++
			case "tab":
				sb.WriteByte(' ')
			case "br":
				sb.WriteByte('\n')
			}
		case xml.EndElement:
			switch el.Name.Local {
			case "t":
				inText = false
			case "tc":
				if cellDepth > 0 {
					cellDepth--
				}
			case "p":
				if cellDepth > 0 {
					sb.WriteByte(' ')
				} else {
					sb.WriteByte('\n')
				}
			case "tr":
				sb.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				sb.Write(el)
			}
		}
	}

	return sb.String(), nil
}

// extractXLSX renders each sheet row as one line, cells joined by spaces.
func extractXLSX(data []byte) (string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	var sb strings.Builder
	for _, sheet := range f.GetSheetList() {
		rows, rowErr := f.GetRows(sheet)
		if rowErr != nil {
			continue
		}
		for _, row := range rows {
			cells := make([]string, 0, len(row))
			for _, cell := range row {
				trimmed := strings.TrimSpace(cell)
				if trimmed != "" {
					cells = append(cells, trimmed)
				}
			}
			if len(cells) > 0 {
				sb.WriteString(strings.Join(cells, "  "))
				sb.WriteByte('\n')
			}
		}
	}

	return sb.String(), nil
}

// extractHTML keeps one line per block element; table rows join their cells.
func extractHTML(data []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	doc.Find("script, style, noscript").Remove()

	var lines []string
	appendLine := func(line string) {
		line = strings.TrimSpace(line)
		if line == "" {
			return
		}
		if len(lines) > 0 && lines[len(lines)-1] == line {
			return
		}
		lines = append(lines, line)
	}

	blocks := doc.Find("h1, h2, h3, h4, h5, h6, p, li, tr")
	if blocks.Length() == 0 {
		appendLine(doc.Text())
	} else {
		blocks.Each(func(_ int, s *goquery.Selection) {
			if goquery.NodeName(s) == "tr" {
				var cells []string
				s.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
					text := strings.TrimSpace(cell.Text())
					if text != "" {
						cells = append(cells, text)
					}
				})
				appendLine(strings.Join(cells, "  "))
				return
			}
			appendLine(s.Text())
		})
	}

	return strings.Join(lines, "\n"), nil
}

func hasZipEntry(zr *zip.Reader, name string) bool {
	return findZipEntry(zr, name) != nil
}

func findZipEntry(zr *zip.Reader, name string) *zip.File {
	for _, f := range zr.File {
		if f.Name == name {
			return f
		}
	}
	return nil
}

func looksLikeHTML(data []byte) bool {
	head := strings.ToLower(string(data[:min(len(data), 1024)]))
	return strings.Contains(head, "<html") ||
		strings.Contains(head, "<!doctype html") ||
		strings.Contains(head, "<body")
}

// mostlyPrintable treats content as plain text when it is NUL free and
// overwhelmingly printable.
func mostlyPrintable(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	sample := data[:min(len(data), 4096)]
	printable := 0
	for _, b := range sample {
		if b == 0 {
			return false
		}
		if b == '\n' || b == '\r' || b == '\t' || (b >= 0x20 && b < 0x7f) || b >= 0x80 {
			printable++
		}
	}
	return float64(printable)/float64(len(sample)) > 0.9
}

// normalizeText canonicalizes line endings, collapses runs of spaces within
// lines, and drops leading/trailing blank lines.
func normalizeText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.ReplaceAll(text, "\x00", "")

	rawLines := strings.Split(text, "\n")
	lines := make([]string, 0, len(rawLines))
	blankRun := 0
	for _, line := range rawLines {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			blankRun++
			if blankRun == 1 && len(lines) > 0 {
				lines = append(lines, "")
			}
			continue
		}
		blankRun = 0
		lines = append(lines, strings.Join(fields, " "))
	}
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	return strings.Join(lines, "\n")
}
