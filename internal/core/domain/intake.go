package domain

type ProgressStep string

const (
	StepUpload  ProgressStep = "upload"
	StepExtract ProgressStep = "extract"
	StepOCR     ProgressStep = "ocr"
	StepLLM     ProgressStep = "llm"
	StepProcess ProgressStep = "process"
	StepDone    ProgressStep = "done"
	StepError   ProgressStep = "error"
)

// ProgressEvent is a transient pipeline notification. ElapsedSeconds is the
// wall-clock delta since the previous published event, process-wide.
type ProgressEvent struct {
	Step           ProgressStep `json:"step"`
	Message        string       `json:"message"`
	ElapsedSeconds float64      `json:"elapsedSeconds"`
}

// IncomingFile is the file part extracted from an upload request body.
type IncomingFile struct {
	Filename string
	Data     []byte
}

// UploadJob carries per-request pipeline state. It never outlives the request.
type UploadJob struct {
	OriginalFileName string
	StoredFilePath   string
	ExtractedText    string
	Classification   ClassificationResult
}

// ClassificationResult is the structured model answer. Type is normalized to
// lower case; Summary must be at least ten characters.
type ClassificationResult struct {
	Type    string `json:"type"`
	Summary string `json:"summary"`
}

// IntakeResponse is the classification reconciled against the taxonomy.
// Description is null when the type is not present in the taxonomy.
type IntakeResponse struct {
	Type        string  `json:"type"`
	Summary     string  `json:"summary"`
	Description *string `json:"description"`
	IsNewType   bool    `json:"isNewType"`
}
