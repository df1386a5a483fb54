package session

import (
	"context"
	"errors"

	"github.com/kakasub/kaka/internal/subtitle"
)

// Stage is the controller's position in the recognize → preview →
// translate → export sequence.
type Stage string

const (
	StageIdle        Stage = "idle"
	StageProcessing  Stage = "processing"
	StageReady       Stage = "ready"
	StageTranslating Stage = "translating"
	StageTranslated  Stage = "translated"
	StageFailed      Stage = "failed"
)

// busy reports whether a workflow is mid-flight; transition requests are
// rejected until the blocking collaborator call returns.
func (s Stage) busy() bool {
	return s == StageProcessing || s == StageTranslating
}

// Pipeline error taxonomy. Collaborator failures are wrapped in one of
// these at the controller boundary so callers can branch with errors.Is;
// format errors reuse subtitle.ErrUnsupportedFormat and alignment errors
// subtitle.ErrTranslationAlignment.
var (
	ErrBusy        = errors.New("a workflow is already running for this session")
	ErrNoSource    = errors.New("no source file uploaded")
	ErrNoDocument  = errors.New("no subtitle document available")
	ErrTranscode   = errors.New("audio extraction failed")
	ErrRecognition = errors.New("speech recognition failed")
	ErrTranslation = errors.New("translation failed")
	ErrFileSystem  = errors.New("temporary file operation failed")
)

// Transcoder extracts a video's audio track. Recognition must not proceed
// when it fails.
type Transcoder interface {
	ExtractAudio(ctx context.Context, videoPath, audioPath string) error
}

// Recognizer turns extracted audio into a document with one blocking call.
type Recognizer interface {
	Recognize(ctx context.Context, audioPath string) (*subtitle.Document, error)
}

// Translator returns a translated copy of the document. It must preserve
// segment count and order.
type Translator interface {
	Translate(
		ctx context.Context,
		doc *subtitle.Document,
		targetLanguage string,
	) (*subtitle.Document, error)
}

// State is everything a session holds between requests. The controller is
// its only writer; the presentation layer reads snapshots and issues
// transition requests.
type State struct {
	Stage          Stage
	SourceName     string
	SourcePath     string
	Document       *subtitle.Document
	ExportedSRT    string
	TranslatedSRT  string
	SubtitlePath   string
	TargetLanguage string
	LastError      string
}

func newState() State {
	return State{Stage: StageIdle}
}
