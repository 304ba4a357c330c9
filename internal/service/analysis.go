package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/timmy/epigraph/internal/domain"
	"github.com/timmy/epigraph/internal/logger"
)

// AnalysisState is the lifecycle of one image analysis.
type AnalysisState string

const (
	AnalysisIdle         AnalysisState = "idle"
	AnalysisFileSelected AnalysisState = "file_selected"
	AnalysisAnalyzing    AnalysisState = "analyzing"
	AnalysisSucceeded    AnalysisState = "succeeded"
	AnalysisFailed       AnalysisState = "failed"
)

// AnalysisSnapshot is the visible state of an AnalysisOrchestrator.
type AnalysisSnapshot struct {
	State         AnalysisState          `json:"state"`
	FileName      string                 `json:"file_name,omitempty"`
	MIMEType      string                 `json:"mime_type,omitempty"`
	Preview       string                 `json:"preview,omitempty"`
	SharePublic   bool                   `json:"share_public"`
	Result        *domain.AnalysisResult `json:"result,omitempty"`
	TranslationID string                 `json:"translation_id,omitempty"`
	Error         string                 `json:"error,omitempty"`
}

// AnalysisConfig holds limits for uploaded images.
type AnalysisConfig struct {
	MaxImageBytes int64
}

// CompletionFunc is called after a translation has been stored.
type CompletionFunc func(ctx context.Context, translationID string)

type selectedFile struct {
	name    string
	mime    string
	width   int
	height  int
	data    []byte
	dataURI string
}

// AnalysisOrchestrator drives one user's upload, analysis and save flow.
type AnalysisOrchestrator struct {
	gateway    AIGateway
	store      Persistence
	archive    ImageArchiver
	cfg        AnalysisConfig
	onComplete CompletionFunc

	inFlight atomic.Bool

	mu            sync.Mutex
	state         AnalysisState
	file          *selectedFile
	sharePublic   bool
	result        *domain.AnalysisResult
	translationID string
	errMsg        string
}

// NewAnalysisOrchestrator creates an idle orchestrator that shares results publicly by default.
// Parameters:
//   - gateway: vision model client.
//   - store: persistence backend for scripts and translations.
//   - archive: optional image archive; nil disables archiving.
//   - cfg: upload limits.
//
// Returns:
//   - *AnalysisOrchestrator: orchestrator in the Idle state.
func NewAnalysisOrchestrator(gateway AIGateway, store Persistence, archive ImageArchiver, cfg AnalysisConfig) *AnalysisOrchestrator {
	return &AnalysisOrchestrator{
		gateway:     gateway,
		store:       store,
		archive:     archive,
		cfg:         cfg,
		state:       AnalysisIdle,
		sharePublic: true,
	}
}

// OnComplete registers fn to run after each successful analysis.
func (o *AnalysisOrchestrator) OnComplete(fn CompletionFunc) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.onComplete = fn
}

// SelectFile validates and stores an image for the next analysis.
// Any previous result or error is cleared.
func (o *AnalysisOrchestrator) SelectFile(name string, data []byte) error {
	info, err := ValidateImage(data, o.cfg.MaxImageBytes)
	if err != nil {
		return err
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.inFlight.Load() {
		return ErrBusy
	}

	buf := make([]byte, len(data))
	copy(buf, data)
	o.file = &selectedFile{
		name:    name,
		mime:    info.MIMEType,
		width:   info.Width,
		height:  info.Height,
		data:    buf,
		dataURI: DataURI(info.MIMEType, buf),
	}
	o.state = AnalysisFileSelected
	o.result = nil
	o.translationID = ""
	o.errMsg = ""
	return nil
}

// SetSharePublic sets whether the next stored translation is public.
func (o *AnalysisOrchestrator) SetSharePublic(public bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sharePublic = public
}

// Analyze runs the selected image through the model and stores the result.
// Parameters:
//   - ctx: request context.
//
// Returns:
//   - *domain.AnalysisResult: the stored reading.
//   - error: ErrBusy while another analysis runs, *domain.ValidationError when no
//     file is selected, or the gateway/persistence error that failed the run.
func (o *AnalysisOrchestrator) Analyze(ctx context.Context) (*domain.AnalysisResult, error) {
	if !o.inFlight.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	defer o.inFlight.Store(false)

	o.mu.Lock()
	file := o.file
	if file == nil {
		o.mu.Unlock()
		return nil, &domain.ValidationError{Field: "file", Reason: "no image selected"}
	}
	isPublic := o.sharePublic
	o.state = AnalysisAnalyzing
	o.result = nil
	o.translationID = ""
	o.errMsg = ""
	o.mu.Unlock()

	start := time.Now()
	logger.CtxInfo(ctx, "Analysis started: file=%s size=%d dimensions=%dx%d",
		file.name, len(file.data), file.width, file.height)

	result, err := o.gateway.AnalyzeImage(ctx, file.data, file.mime)
	if err != nil {
		o.fail(ctx, err)
		return nil, err
	}

	translation := &domain.Translation{
		ImageURL:        file.dataURI,
		ScriptID:        o.lookupScript(ctx, result),
		OriginalText:    result.OriginalText,
		TranslatedText:  result.Translation,
		ConfidenceScore: result.Confidence,
		AnalysisData:    result.ToAnalysisData(),
		IsPublic:        isPublic,
	}
	id, err := o.store.CreateTranslation(ctx, translation)
	if err != nil {
		o.fail(ctx, err)
		return nil, err
	}

	o.mu.Lock()
	o.state = AnalysisSucceeded
	o.result = result
	o.translationID = id
	notify := o.onComplete
	o.mu.Unlock()

	ctx = logger.SetTranslationID(ctx, id)
	logger.With(logger.Fields{
		"script_type":          result.ScriptType,
		"confidence":           result.Confidence,
		logger.FieldDurationMs: time.Since(start).Milliseconds(),
	}).Info(ctx, "Analysis stored")

	o.archiveImage(ctx, file)
	if notify != nil {
		notify(ctx, id)
	}

	out := *result
	return &out, nil
}

// lookupScript resolves the catalog id for a result's script type.
// Lookup problems never fail the analysis.
func (o *AnalysisOrchestrator) lookupScript(ctx context.Context, result *domain.AnalysisResult) *string {
	if result.Undetermined() {
		return nil
	}
	script, err := o.store.FindScriptByNameFragment(ctx, result.ScriptType)
	if err != nil {
		logger.FromContext(ctx).WithError(err).Warn("Script lookup failed, storing without script")
		return nil
	}
	if script == nil {
		return nil
	}
	id := script.ID
	return &id
}

func (o *AnalysisOrchestrator) archiveImage(ctx context.Context, file *selectedFile) {
	if o.archive == nil {
		return
	}
	url, err := o.archive.Put(ctx, file.data, file.mime)
	if err != nil {
		logger.FromContext(ctx).WithError(err).Warn("Image archive upload failed")
		return
	}
	logger.CtxDebug(ctx, "Image archived at %s", url)
}

func (o *AnalysisOrchestrator) fail(ctx context.Context, err error) {
	logger.CtxError(ctx, "Analysis failed: %v", err)

	o.mu.Lock()
	defer o.mu.Unlock()
	o.state = AnalysisFailed
	o.result = nil
	o.translationID = ""
	o.errMsg = AnalysisFailedMessage
}

// Reset discards the selected file and any result.
func (o *AnalysisOrchestrator) Reset() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.inFlight.Load() {
		return ErrBusy
	}
	o.state = AnalysisIdle
	o.file = nil
	o.result = nil
	o.translationID = ""
	o.errMsg = ""
	return nil
}

// Snapshot returns a copy of the visible state.
func (o *AnalysisOrchestrator) Snapshot() AnalysisSnapshot {
	o.mu.Lock()
	defer o.mu.Unlock()

	snap := AnalysisSnapshot{
		State:         o.state,
		SharePublic:   o.sharePublic,
		TranslationID: o.translationID,
		Error:         o.errMsg,
	}
	if o.file != nil {
		snap.FileName = o.file.name
		snap.MIMEType = o.file.mime
		snap.Preview = o.file.dataURI
	}
	if o.result != nil {
		r := *o.result
		snap.Result = &r
	}
	return snap
}
