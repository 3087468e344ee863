package httpadapter

import (
	"bytes"
	"errors"
	"io"
	"mime"
	"mime/multipart"

	"github.com/g-g-pletnev/docan/internal/core/domain"
)

// extractUploadedFile pulls the first file part out of a buffered
// multipart body. Part bodies pass through byte for byte; only the part
// headers are interpreted.
func extractUploadedFile(body []byte, contentType string) (domain.IncomingFile, error) {
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return domain.IncomingFile{}, domain.WrapError(domain.ErrMalformedRequest, "parse content type", err)
	}
	boundary := params["boundary"]
	if boundary == "" {
		return domain.IncomingFile{}, domain.WrapError(domain.ErrMalformedRequest, "locate boundary", errors.New("boundary parameter is missing"))
	}

	reader := multipart.NewReader(bytes.NewReader(body), boundary)
	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return domain.IncomingFile{}, domain.WrapError(domain.ErrMalformedRequest, "read multipart body", err)
		}

		filename, ok := partFilename(part)
		if !ok {
			continue
		}

		data, err := io.ReadAll(part)
		if err != nil {
			return domain.IncomingFile{}, domain.WrapError(domain.ErrMalformedRequest, "read file part", err)
		}
		return domain.IncomingFile{Filename: filename, Data: data}, nil
	}

	return domain.IncomingFile{}, domain.WrapError(domain.ErrNoFileInRequest, "select file part", errors.New("no part carries a filename"))
}

// partFilename reports whether the part's disposition declares a
// filename at all. An empty declared name still marks a file part; the
// storage layer generates a name for it.
func partFilename(part *multipart.Part) (string, bool) {
	_, params, err := mime.ParseMediaType(part.Header.Get("Content-Disposition"))
	if err != nil {
		return "", false
	}
	filename, ok := params["filename"]
	return filename, ok
}
