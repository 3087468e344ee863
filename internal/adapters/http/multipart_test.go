package httpadapter

import (
	"bytes"
	"mime/multipart"
	"testing"

	"github.com/g-g-pletnev/docan/internal/core/domain"
)

func buildMultipartBody(t *testing.T, build func(w *multipart.Writer)) ([]byte, string) {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	build(writer)
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return body.Bytes(), writer.FormDataContentType()
}

func TestExtractUploadedFilePreservesBytes(t *testing.T) {
	payload := make([]byte, 256)
	for i := range payload {
		payload[i] = byte(i)
	}

	body, contentType := buildMultipartBody(t, func(w *multipart.Writer) {
		part, err := w.CreateFormFile("file", "scan.pdf")
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		if _, err := part.Write(payload); err != nil {
			t.Fatalf("write part: %v", err)
		}
	})

	file, err := extractUploadedFile(body, contentType)
	if err != nil {
		t.Fatalf("extractUploadedFile() error = %v", err)
	}
	if file.Filename != "scan.pdf" {
		t.Fatalf("unexpected filename %q", file.Filename)
	}
	if !bytes.Equal(file.Data, payload) {
		t.Fatal("file bytes must survive parsing unchanged")
	}
}

func TestExtractUploadedFileRequiresBoundary(t *testing.T) {
	_, err := extractUploadedFile([]byte("plain"), "text/plain")
	if !domain.IsKind(err, domain.ErrMalformedRequest) {
		t.Fatalf("expected malformed request, got %v", err)
	}
}

func TestExtractUploadedFileRequiresFilePart(t *testing.T) {
	body, contentType := buildMultipartBody(t, func(w *multipart.Writer) {
		if err := w.WriteField("note", "no file here"); err != nil {
			t.Fatalf("write field: %v", err)
		}
	})

	_, err := extractUploadedFile(body, contentType)
	if !domain.IsKind(err, domain.ErrNoFileInRequest) {
		t.Fatalf("expected no-file error, got %v", err)
	}
}

func TestExtractUploadedFileTakesFirstFilePart(t *testing.T) {
	body, contentType := buildMultipartBody(t, func(w *multipart.Writer) {
		if err := w.WriteField("comment", "metadata first"); err != nil {
			t.Fatalf("write field: %v", err)
		}
		first, err := w.CreateFormFile("file", "first.pdf")
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		if _, err := first.Write([]byte("first")); err != nil {
			t.Fatalf("write part: %v", err)
		}
		second, err := w.CreateFormFile("extra", "second.pdf")
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		if _, err := second.Write([]byte("second")); err != nil {
			t.Fatalf("write part: %v", err)
		}
	})

	file, err := extractUploadedFile(body, contentType)
	if err != nil {
		t.Fatalf("extractUploadedFile() error = %v", err)
	}
	if file.Filename != "first.pdf" || string(file.Data) != "first" {
		t.Fatalf("expected the first file part, got %q %q", file.Filename, file.Data)
	}
}

func TestExtractUploadedFileAcceptsEmptyFilename(t *testing.T) {
	body, contentType := buildMultipartBody(t, func(w *multipart.Writer) {
		part, err := w.CreateFormFile("file", "")
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		if _, err := part.Write([]byte("%PDF")); err != nil {
			t.Fatalf("write part: %v", err)
		}
	})

	file, err := extractUploadedFile(body, contentType)
	if err != nil {
		t.Fatalf("a declared empty filename still marks a file part, got %v", err)
	}
	if file.Filename != "" {
		t.Fatalf("expected empty filename preserved, got %q", file.Filename)
	}
	if string(file.Data) != "%PDF" {
		t.Fatalf("unexpected data %q", file.Data)
	}
}
