package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/akolanti/docqa/internal/domain/commonModels"
)

var topics = []string{"alpha", "bravo", "charlie", "delta", "echo", "foxtrot", "golf", "hotel"}

// sentences are unique so overlaps can be located unambiguously
func sentenceText(n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteString(" ")
		}
		fmt.Fprintf(&b, "Sentence number %d talks about %s.", i, topics[i%len(topics)])
	}
	return b.String()
}

func overlapLen(prev, cur string) int {
	for k := min(len(prev), len(cur)); k > 0; k-- {
		if strings.HasSuffix(prev, cur[:k]) {
			return k
		}
	}
	return 0
}

func reconstruct(chunks []string) string {
	if len(chunks) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(chunks[0])
	for i := 1; i < len(chunks); i++ {
		b.WriteString(chunks[i][overlapLen(chunks[i-1], chunks[i]):])
	}
	return b.String()
}

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"report.pdf", "report_pdf"},
		{"my-report v2.final.pdf", "my_report_v2_final_pdf"},
		{"plain", "plain"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := NormalizeName(tt.in); got != tt.expected {
			t.Errorf("NormalizeName(%q) = %q; want %q", tt.in, got, tt.expected)
		}
	}
}

func TestSplitKeepSeparator(t *testing.T) {
	tests := []struct {
		text     string
		sep      string
		expected []string
	}{
		{"a.b.c", ".", []string{"a.", "b.", "c"}},
		{"a.b.", ".", []string{"a.", "b."}},
		{"one\n\ntwo", "\n\n", []string{"one\n\n", "two"}},
		{"héy", "", []string{"h", "é", "y"}},
		{"none", "?", []string{"none"}},
	}

	for _, tt := range tests {
		got := splitKeepSeparator(tt.text, tt.sep)
		if strings.Join(got, "|") != strings.Join(tt.expected, "|") {
			t.Errorf("splitKeepSeparator(%q, %q) = %q; want %q", tt.text, tt.sep, got, tt.expected)
		}
		if strings.Join(got, "") != tt.text {
			t.Errorf("pieces of %q do not concatenate back", tt.text)
		}
	}
}

func TestSplitter_ShortTextIsOneChunk(t *testing.T) {
	s := newTextSplitter(400, 100)
	chunks := s.split("Page one content.")
	if len(chunks) != 1 || chunks[0] != "Page one content." {
		t.Errorf("Expected the text back as a single chunk, got %q", chunks)
	}
}

func TestSplitter_SizeBound(t *testing.T) {
	s := newTextSplitter(400, 100)
	text := sentenceText(120) + "\n\n" + strings.Repeat("x", 1000) + "\n" + sentenceText(15)

	chunks := s.split(text)
	if len(chunks) < 2 {
		t.Fatalf("Expected multiple chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if charLen(c) > 400 {
			t.Errorf("chunk %d has %d characters, limit is 400", i, charLen(c))
		}
	}
}

func TestSplitter_CountsCharactersNotBytes(t *testing.T) {
	s := newTextSplitter(10, 0)
	chunks := s.split(strings.Repeat("é", 25))
	for i, c := range chunks {
		if charLen(c) > 10 {
			t.Errorf("chunk %d has %d characters", i, charLen(c))
		}
	}
	if strings.Join(chunks, "") != strings.Repeat("é", 25) {
		t.Error("multi byte characters were split or lost")
	}
}

func TestSplitter_OverlapBetweenConsecutiveChunks(t *testing.T) {
	s := newTextSplitter(400, 100)
	chunks := s.split(sentenceText(60))

	if len(chunks) < 3 {
		t.Fatalf("Expected at least 3 chunks, got %d", len(chunks))
	}
	for i := 1; i < len(chunks); i++ {
		k := overlapLen(chunks[i-1], chunks[i])
		if k == 0 {
			t.Errorf("chunk %d does not start with the tail of chunk %d", i, i-1)
		}
		if k > 100 {
			t.Errorf("chunk %d overlaps %d characters, limit is 100", i, k)
		}
	}
}

func TestSplitter_Reconstruction(t *testing.T) {
	s := newTextSplitter(400, 100)
	text := sentenceText(50)

	chunks := s.split(text)
	if got := reconstruct(chunks); got != text {
		t.Errorf("chunks minus overlaps do not rebuild the text\n got: %q\nwant: %q", got, text)
	}
}

// whitespace only chunks are dropped, everything else survives in order
func TestSplitter_ReconstructionAcrossParagraphs(t *testing.T) {
	s := newTextSplitter(400, 100)
	text := sentenceText(30) + "\n\n" + sentenceText(3) + "\n" + sentenceText(40)

	chunks := s.split(text)
	normalize := func(v string) string { return strings.Join(strings.Fields(v), " ") }
	if got := reconstruct(chunks); normalize(got) != normalize(text) {
		t.Errorf("chunks minus overlaps do not rebuild the text\n got: %q\nwant: %q", got, text)
	}
}

func TestSplitter_PrefersParagraphBoundaries(t *testing.T) {
	s := newTextSplitter(30, 0)
	text := "First paragraph here.\n\nSecond paragraph here."

	chunks := s.split(text)
	if len(chunks) != 2 {
		t.Fatalf("Expected 2 chunks, got %d: %q", len(chunks), chunks)
	}
	if chunks[0] != "First paragraph here.\n\n" {
		t.Errorf("first chunk should end at the paragraph break, got %q", chunks[0])
	}
	if chunks[1] != "Second paragraph here." {
		t.Errorf("unexpected second chunk %q", chunks[1])
	}
}

func TestSplitter_DropsWhitespaceChunks(t *testing.T) {
	s := newTextSplitter(10, 0)
	chunks := s.split("abcdefghij\n\n          \n\n")
	for _, c := range chunks {
		if strings.TrimSpace(c) == "" {
			t.Errorf("whitespace only chunk returned: %q", c)
		}
	}
}

func TestPrepareChunks(t *testing.T) {
	c := NewChunker(400, 100, t.TempDir())
	doc := extractedDoc{
		Pages: []rawPage{
			{Number: 0, Content: "Page one content."},
			{Number: 1, Content: "Page two content."},
		},
		TotalPages: 2,
	}

	chunks := c.prepareChunks(doc, "report.pdf", "/tmp/x.pdf", docFormat{docType: commonModels.PDF, label: "PDF"})

	if len(chunks) != 2 {
		t.Fatalf("Expected 2 chunks (one per page), got %d", len(chunks))
	}
	if chunks[0].Id != "report_pdf_0" || chunks[1].Id != "report_pdf_1" {
		t.Errorf("unexpected ids %s, %s", chunks[0].Id, chunks[1].Id)
	}
	if chunks[1].Metadata["page"] != 1 || chunks[1].Metadata["total_pages"] != 2 {
		t.Errorf("Metadata mismatch in chunk 1: %+v", chunks[1].Metadata)
	}
	if chunks[0].Metadata["source"] != "report.pdf" || chunks[0].Metadata["format"] != "PDF" {
		t.Errorf("Metadata mismatch in chunk 0: %+v", chunks[0].Metadata)
	}
}

func TestPrepareChunks_CountsUnreadablePages(t *testing.T) {
	c := NewChunker(400, 100, t.TempDir())
	doc := extractedDoc{
		Pages: []rawPage{
			{Number: 0, Content: "Page one content."},
			{Number: 2, Content: "Page three content."},
		},
		TotalPages: 10,
	}

	chunks := c.prepareChunks(doc, "report.pdf", "/tmp/x.pdf", docFormat{docType: commonModels.PDF, label: "PDF"})

	if len(chunks) != 2 {
		t.Fatalf("Expected 2 chunks, got %d", len(chunks))
	}
	for _, ch := range chunks {
		if ch.Metadata["total_pages"] != 10 {
			t.Errorf("total_pages got %v, want 10", ch.Metadata["total_pages"])
		}
	}
	if chunks[1].Metadata["page"] != 2 {
		t.Errorf("page got %v, want 2", chunks[1].Metadata["page"])
	}
}

// buildPDF writes a minimal PDF with one page per content stream. Offsets in
// the xref table are taken from the buffer as objects are written.
func buildPDF(contents ...string) []byte {
	var buf bytes.Buffer
	var offsets []int
	obj := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}

	buf.WriteString("%PDF-1.4\n")
	kids := make([]string, len(contents))
	for i := range contents {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}
	obj("<< /Type /Catalog /Pages 2 0 R >>")
	obj(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(contents)))
	obj("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>")
	for i, content := range contents {
		obj(fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", 5+2*i))
		obj(fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content))
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(offsets)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xref)
	return buf.Bytes()
}

func pdfText(text string) string {
	return fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
}

func TestChunker_ProcessPDF(t *testing.T) {
	dir := t.TempDir()
	c := NewChunker(400, 100, dir)
	doc := buildPDF(pdfText("Hello page one."), pdfText("Second page text."))

	chunks, err := c.Process(context.Background(), doc, "report.pdf")
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	want := []struct {
		text string
		page int
	}{
		{"Hello page one.", 0},
		{"Second page text.", 1},
	}
	if len(chunks) != len(want) {
		t.Fatalf("Expected %d chunks, got %d: %+v", len(want), len(chunks), chunks)
	}
	for i, w := range want {
		ch := chunks[i]
		if id := fmt.Sprintf("report_pdf_%d", i); ch.Id != id {
			t.Errorf("chunk %d id got %s, want %s", i, ch.Id, id)
		}
		if strings.TrimSpace(ch.Text) != w.text {
			t.Errorf("chunk %d text got %q, want %q", i, ch.Text, w.text)
		}
		if ch.Metadata["page"] != w.page || ch.Metadata["total_pages"] != 2 || ch.Metadata["format"] != "PDF" {
			t.Errorf("chunk %d metadata mismatch: %+v", i, ch.Metadata)
		}
	}
	assertDirEmpty(t, dir)
}

func TestChunker_PDFUnreadablePageStillCounted(t *testing.T) {
	dir := t.TempDir()
	c := NewChunker(400, 100, dir)
	// Tf with a single operand makes text extraction fail for that page
	broken := "BT /F1 Tf (lost) Tj ET"
	doc := buildPDF(pdfText("Hello page one."), broken, pdfText("Third page text."))

	chunks, err := c.Process(context.Background(), doc, "report.pdf")
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("Expected 2 chunks, got %d: %+v", len(chunks), chunks)
	}
	if chunks[1].Metadata["page"] != 2 {
		t.Errorf("second chunk page got %v, want 2", chunks[1].Metadata["page"])
	}
	for _, ch := range chunks {
		if ch.Metadata["total_pages"] != 3 {
			t.Errorf("total_pages got %v, want 3", ch.Metadata["total_pages"])
		}
		if strings.Contains(ch.Text, "lost") {
			t.Errorf("text from the unreadable page leaked into %s", ch.Id)
		}
	}
	assertDirEmpty(t, dir)
}

func assertDirEmpty(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("staging directory not cleaned up, found %d entries", len(entries))
	}
}

func TestChunker_ProcessPlainText(t *testing.T) {
	dir := t.TempDir()
	c := NewChunker(400, 100, dir)
	text := sentenceText(40)

	chunks, err := c.Process(context.Background(), []byte(text), "notes.txt")
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("Expected multiple chunks, got %d", len(chunks))
	}
	for i, ch := range chunks {
		if want := fmt.Sprintf("notes_txt_%d", i); ch.Id != want {
			t.Errorf("chunk %d id got %s, want %s", i, ch.Id, want)
		}
		if ch.Metadata["page"] != 0 || ch.Metadata["format"] != "TXT" {
			t.Errorf("unexpected metadata %+v", ch.Metadata)
		}
	}
	assertDirEmpty(t, dir)
}

func TestChunker_UnsupportedFormat(t *testing.T) {
	dir := t.TempDir()
	c := NewChunker(400, 100, dir)
	png := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

	_, err := c.Process(context.Background(), png, "image.png")
	if !errors.Is(err, commonModels.ErrUnsupportedFormat) {
		t.Errorf("Expected ErrUnsupportedFormat, got %v", err)
	}
	if !errors.Is(err, commonModels.ErrDocumentParse) {
		t.Errorf("ErrUnsupportedFormat should also be a parse error, got %v", err)
	}
	assertDirEmpty(t, dir)
}

func TestChunker_CorruptPDF(t *testing.T) {
	dir := t.TempDir()
	c := NewChunker(400, 100, dir)

	_, err := c.Process(context.Background(), []byte("%PDF-1.4\nthis is not really a pdf"), "broken.pdf")
	if !errors.Is(err, commonModels.ErrDocumentParse) {
		t.Errorf("Expected ErrDocumentParse, got %v", err)
	}
	assertDirEmpty(t, dir)
}

func TestChunker_NoText(t *testing.T) {
	dir := t.TempDir()
	c := NewChunker(400, 100, dir)

	_, err := c.Process(context.Background(), []byte("   \n\n   \n"), "blank.txt")
	if !errors.Is(err, commonModels.ErrDocumentParse) {
		t.Errorf("Expected ErrDocumentParse, got %v", err)
	}
	assertDirEmpty(t, dir)
}

func TestChunker_EmptyInput(t *testing.T) {
	c := NewChunker(400, 100, t.TempDir())
	if _, err := c.Process(context.Background(), nil, "empty.txt"); !errors.Is(err, commonModels.ErrDocumentParse) {
		t.Errorf("Expected ErrDocumentParse, got %v", err)
	}
}
