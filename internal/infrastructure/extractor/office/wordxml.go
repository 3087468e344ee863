package office

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/g-g-pletnev/docan/internal/core/domain"
)

// Both .docx and .odt are zip archives holding one main XML part; visible
// text is the character data, with block elements acting as line breaks.

func extractWordXML(path string) (string, error) {
	return extractZippedXML(path, "word/document.xml", map[string]bool{
		"p":  true,
		"br": true,
		"cr": true,
	})
}

func extractOpenDocument(path string) (string, error) {
	return extractZippedXML(path, "content.xml", map[string]bool{
		"p":          true,
		"h":          true,
		"line-break": true,
	})
}

func extractZippedXML(path, member string, breakElements map[string]bool) (string, error) {
	archive, err := zip.OpenReader(path)
	if err != nil {
		return "", domain.WrapError(domain.ErrExternalService, "open document archive", err)
	}
	defer archive.Close()

	for _, file := range archive.File {
		if file.Name != member {
			continue
		}
		reader, err := file.Open()
		if err != nil {
			return "", domain.WrapError(domain.ErrExternalService, "open document part", err)
		}
		text, err := collectXMLText(reader, breakElements)
		reader.Close()
		return text, err
	}

	return "", domain.WrapError(
		domain.ErrExternalService,
		"locate document part",
		fmt.Errorf("%s has no %s", filepath.Base(path), member),
	)
}

func collectXMLText(r io.Reader, breakElements map[string]bool) (string, error) {
	decoder := xml.NewDecoder(r)
	var builder strings.Builder

	for {
		token, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", domain.WrapError(domain.ErrExternalService, "decode document xml", err)
		}

		switch t := token.(type) {
		case xml.CharData:
			builder.Write([]byte(t))
		case xml.EndElement:
			if breakElements[t.Name.Local] {
				builder.WriteString("\n")
			}
		}
	}

	return strings.TrimSpace(builder.String()), nil
}
