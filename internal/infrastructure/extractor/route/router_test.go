package route

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/g-g-pletnev/docan/internal/core/domain"
)

type fakeExtractor struct {
	text  string
	err   error
	paths []string
}

func (f *fakeExtractor) Extract(_ context.Context, path string) (string, error) {
	f.paths = append(f.paths, path)
	return f.text, f.err
}

type recordingPublisher struct {
	events []domain.ProgressEvent
}

func (r *recordingPublisher) Publish(step domain.ProgressStep, message string) {
	r.events = append(r.events, domain.ProgressEvent{Step: step, Message: message})
}

func TestExtractRoutesScannedFormatsToOCR(t *testing.T) {
	for _, name := range []string{"scan.pdf", "scan.PDF", "photo.png", "photo.jpg", "photo.JPEG", "fax.bmp"} {
		ocr := &fakeExtractor{text: "scanned"}
		direct := &fakeExtractor{text: "direct"}
		publisher := &recordingPublisher{}
		router := NewRouter(ocr, direct, publisher)

		text, err := router.Extract(context.Background(), "/uploads/"+name)
		if err != nil {
			t.Fatalf("%s: extract: %v", name, err)
		}
		if text != "scanned" {
			t.Fatalf("%s: expected ocr path, got %q", name, text)
		}
		if len(direct.paths) != 0 {
			t.Fatalf("%s: direct extractor must stay untouched", name)
		}
		if len(publisher.events) != 1 || publisher.events[0].Step != domain.StepOCR {
			t.Fatalf("%s: expected one ocr event, got %+v", name, publisher.events)
		}
		if !strings.Contains(publisher.events[0].Message, name) {
			t.Fatalf("%s: expected file name in event, got %q", name, publisher.events[0].Message)
		}
	}
}

func TestExtractRoutesOfficeFormatsToDirectExtraction(t *testing.T) {
	for _, name := range []string{"contract.docx", "act.odt", "totals.xlsx", "note.txt", "noext"} {
		ocr := &fakeExtractor{text: "scanned"}
		direct := &fakeExtractor{text: "direct"}
		publisher := &recordingPublisher{}
		router := NewRouter(ocr, direct, publisher)

		text, err := router.Extract(context.Background(), "/uploads/"+name)
		if err != nil {
			t.Fatalf("%s: extract: %v", name, err)
		}
		if text != "direct" {
			t.Fatalf("%s: expected direct path, got %q", name, text)
		}
		if len(ocr.paths) != 0 {
			t.Fatalf("%s: ocr extractor must stay untouched", name)
		}
		if len(publisher.events) != 1 || publisher.events[0].Step != domain.StepExtract {
			t.Fatalf("%s: expected one extract event, got %+v", name, publisher.events)
		}
	}
}

func TestExtractPropagatesDirectExtractionFailure(t *testing.T) {
	wantErr := errors.New("corrupt archive")
	router := NewRouter(&fakeExtractor{}, &fakeExtractor{err: wantErr}, &recordingPublisher{})

	_, err := router.Extract(context.Background(), "/uploads/contract.docx")
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected the extractor error unchanged, got %v", err)
	}
}

func TestExtractDoesNotFallBackAcrossPaths(t *testing.T) {
	direct := &fakeExtractor{text: "direct"}
	router := NewRouter(&fakeExtractor{err: errors.New("ocr down")}, direct, &recordingPublisher{})

	_, err := router.Extract(context.Background(), "/uploads/scan.pdf")
	if err == nil {
		t.Fatal("expected ocr failure to propagate")
	}
	if len(direct.paths) != 0 {
		t.Fatal("expected no fallback to direct extraction")
	}
}
