package upload

// Candidate is a user-selected file awaiting validation.
type Candidate struct {
	Filename string
	MIMEType string
	Size     int64
	Data     []byte
}

// Asset is the compressed payload produced for one candidate. It lives only
// for the duration of a pipeline run.
type Asset struct {
	Filename     string
	Data         []byte
	ContentType  string
	OriginalSize int64
	Width        int
	Height       int
}

// Per-file pipeline states, reported through progress callbacks and in the
// final result.
const (
	StateValidating        = "validating"
	StateRejected          = "rejected"
	StateCompressing       = "compressing"
	StateCompressFailed    = "compress_failed"
	StateUploading         = "uploading"
	StateFallbackUploading = "fallback_uploading"
	StateUploaded          = "uploaded"
	StateUploadFailed      = "upload_failed"
)

// ProgressEvent reports a state transition for one file in a batch.
type ProgressEvent struct {
	Index    int
	Filename string
	State    string
}

// FileOutcome is the terminal status of one candidate.
type FileOutcome struct {
	Filename string
	Size     int64
	State    string
	URL      string
	Stage    string
	Err      error
}

// Result aggregates a batch run. URLs holds only successful uploads, in the
// candidates' original relative order.
type Result struct {
	URLs  []string
	Files []FileOutcome
}
