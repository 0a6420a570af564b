package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
)

func buildDOCX(t *testing.T, paragraphs ...string) []byte {
	t.Helper()
	var body strings.Builder
	body.WriteString(`<?xml version="1.0" encoding="UTF-8"?><w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	for _, p := range paragraphs {
		body.WriteString(`<w:p><w:r><w:t>` + p + `</w:t></w:r></w:p>`)
	}
	body.WriteString(`</w:body></w:document>`)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create zip entry: %v", err)
	}
	if _, err := w.Write([]byte(body.String())); err != nil {
		t.Fatalf("write zip entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func TestTextPlainPassthrough(t *testing.T) {
	got, err := Text(context.Background(), []byte("  Go developer\nIIT Delhi  \n"), "text/plain; charset=utf-8", "cv.txt")
	if err != nil {
		t.Fatalf("Text: %v", err)
	}
	if got != "Go developer\nIIT Delhi" {
		t.Fatalf("unexpected text %q", got)
	}
}

func TestTextDOCXFromZipMime(t *testing.T) {
	data := buildDOCX(t, "Priya Sharma", "Backend intern")
	got, err := Text(context.Background(), data, "application/zip", "cv")
	if err != nil {
		t.Fatalf("Text: %v", err)
	}
	if got != "Priya Sharma\nBackend intern" {
		t.Fatalf("unexpected text %q", got)
	}
}

func TestTextRejectsUnsupported(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, _ := zw.Create("notes.txt")
	_, _ = w.Write([]byte("hello"))
	_ = zw.Close()

	for name, data := range map[string][]byte{
		"zip": buf.Bytes(),
		"png": append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 16)...),
	} {
		if _, err := Text(context.Background(), data, "", name); !errors.Is(err, ErrUnsupported) {
			t.Fatalf("%s: expected ErrUnsupported, got %v", name, err)
		}
	}
}

func TestTextRejectsCorruptPDF(t *testing.T) {
	_, err := Text(context.Background(), []byte("%PDF-1.4 truncated"), "application/pdf", "cv.pdf")
	if err == nil || errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected extraction error, got %v", err)
	}
}

func TestTextCapsLength(t *testing.T) {
	data := []byte(strings.Repeat("é", MaxChars+500))
	got, err := Text(context.Background(), data, "text/plain", "cv.txt")
	if err != nil {
		t.Fatalf("Text: %v", err)
	}
	if n := utf8.RuneCountInString(got); n != MaxChars {
		t.Fatalf("expected %d runes, got %d", MaxChars, n)
	}
}

func TestHandlerExtract(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler().RegisterRoutes(r.Group("/api/v1"))

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, _ := mw.CreateFormFile("file", "cv.txt")
	_, _ = part.Write([]byte("Go developer"))
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/resumes/extract", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var got map[string]string
	_ = json.Unmarshal(resp.Body.Bytes(), &got)
	if got["text"] != "Go developer" {
		t.Fatalf("unexpected body %s", resp.Body.String())
	}

	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/v1/resumes/extract", nil))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without file, got %d", resp.Code)
	}
}
