package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/tamilprep-backend/internal/extract"
	"github.com/stemsi/tamilprep-backend/internal/llm"
	"github.com/stemsi/tamilprep-backend/internal/model"
	"github.com/stemsi/tamilprep-backend/internal/quiz"
	"github.com/stemsi/tamilprep-backend/internal/session"
	"github.com/stemsi/tamilprep-backend/internal/storage"
	"github.com/stemsi/tamilprep-backend/internal/tts"
)

// Practice flow errors.
var (
	ErrNoDocument        = errors.New("no document has been processed in this session")
	ErrNoQuiz            = errors.New("no quiz has been generated in this session")
	ErrAlreadySubmitted  = errors.New("quiz has already been submitted")
	ErrInvalidAnswer     = errors.New("invalid answer selection")
	ErrTimeUp            = errors.New("exam time is up")
	ErrArchiveDisabled   = errors.New("attempt history is not enabled")
	ErrSessionTerminated = errors.New("session token has been revoked")
	ErrSpeech            = errors.New("speech synthesis failed")
)

// generationTimeout bounds a single model call. The call is detached from the
// request context: once issued, generation is not cancelled by the client.
const generationTimeout = 3 * time.Minute

// DocumentAcquirer turns PDF bytes into text.
type DocumentAcquirer interface {
	Acquire(ctx context.Context, doc []byte, req extract.Request) (extract.Result, error)
}

// GeneratorSource resolves the quiz generator for a request's API key.
type GeneratorSource interface {
	ForKey(apiKey string) (llm.Generator, error)
}

// SpeakerSource resolves the text-to-speech client for a request's API key.
type SpeakerSource interface {
	ForKey(apiKey string) (tts.Speaker, error)
}

// AttemptPublisher hands graded attempts to the archive.
type AttemptPublisher interface {
	Publish(ctx context.Context, attempt model.PracticeAttempt) error
}

// AttemptLister reads archived attempts.
type AttemptLister interface {
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]model.PracticeAttempt, error)
}

// PracticeOptions carries the quiz defaults.
type PracticeOptions struct {
	DefaultQuestionCount int
	MaxPromptChars       int
}

// PracticeService runs the upload → extract → generate → answer → grade flow
// for one session at a time.
type PracticeService struct {
	store      session.Store
	tokens     *TokenService
	acquirer   DocumentAcquirer
	generators GeneratorSource
	speakers   SpeakerSource
	audio      storage.AudioStore
	publisher  AttemptPublisher // nil when the archive is disabled
	history    AttemptLister    // nil when the archive is disabled
	opts       PracticeOptions
	log        zerolog.Logger
	now        func() time.Time

	locksMu sync.Mutex
	locks   map[uuid.UUID]*sessionLock
}

// sessionLock is dropped from the map once no caller holds or waits on it.
type sessionLock struct {
	mu   sync.Mutex
	refs int
}

// NewPracticeService creates a new PracticeService.
func NewPracticeService(
	store session.Store,
	tokens *TokenService,
	acquirer DocumentAcquirer,
	generators GeneratorSource,
	speakers SpeakerSource,
	audio storage.AudioStore,
	opts PracticeOptions,
	log zerolog.Logger,
) *PracticeService {
	if opts.DefaultQuestionCount <= 0 {
		opts.DefaultQuestionCount = 5
	}
	if opts.MaxPromptChars <= 0 {
		opts.MaxPromptChars = quiz.DefaultMaxChars
	}
	return &PracticeService{
		store:      store,
		tokens:     tokens,
		acquirer:   acquirer,
		generators: generators,
		speakers:   speakers,
		audio:      audio,
		opts:       opts,
		log:        log,
		now:        time.Now,
		locks:      make(map[uuid.UUID]*sessionLock),
	}
}

// WithArchive enables attempt publishing and history reads.
func (s *PracticeService) WithArchive(publisher AttemptPublisher, history AttemptLister) *PracticeService {
	s.publisher = publisher
	s.history = history
	return s
}

// lock serializes mutations of one session.
func (s *PracticeService) lock(id uuid.UUID) func() {
	s.locksMu.Lock()
	l, ok := s.locks[id]
	if !ok {
		l = &sessionLock{}
		s.locks[id] = l
	}
	l.refs++
	s.locksMu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()

		s.locksMu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, id)
		}
		s.locksMu.Unlock()
	}
}

// ─── Session lifecycle ──────────────────────────────────────────────

// CreateSession starts an empty practice session and returns its token.
func (s *PracticeService) CreateSession(ctx context.Context) (string, *model.PracticeState, error) {
	now := s.now()
	state := &model.SessionState{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}

	token, jti, err := s.tokens.Issue(state.ID)
	if err != nil {
		return "", nil, err
	}
	state.TokenID = jti

	if err := s.store.Save(ctx, state); err != nil {
		return "", nil, fmt.Errorf("save session: %w", err)
	}

	s.log.Info().Str("session_id", state.ID.String()).Msg("Practice session created")
	return token, s.view(state), nil
}

// Authorize checks that a validated token still belongs to a live session.
func (s *PracticeService) Authorize(ctx context.Context, claims *SessionClaims) error {
	state, err := s.store.Get(ctx, claims.SessionID)
	if err != nil {
		return err
	}
	if state.TokenID != claims.ID {
		return ErrSessionTerminated
	}
	return nil
}

// EndSession deletes all state held for the session.
func (s *PracticeService) EndSession(ctx context.Context, id uuid.UUID) error {
	unlock := s.lock(id)
	err := s.store.Delete(ctx, id)
	unlock()

	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	s.log.Info().Str("session_id", id.String()).Msg("Practice session ended")
	return nil
}

// GetState returns the session's current view with the timer recomputed.
func (s *PracticeService) GetState(ctx context.Context, id uuid.UUID) (*model.PracticeState, error) {
	state, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.view(state), nil
}

// ─── Pipeline ───────────────────────────────────────────────────────

// ProcessDocument extracts text from a PDF and resets everything derived from
// the previous document. On failure the previous state is left untouched.
// apiKey is the caller's model key, used when OCR runs on a cloud model.
func (s *PracticeService) ProcessDocument(ctx context.Context, id uuid.UUID, name string, doc []byte, language, apiKey string) (*model.PracticeState, error) {
	unlock := s.lock(id)
	defer unlock()

	state, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	start := s.now()
	res, err := s.acquirer.Acquire(ctx, doc, extract.Request{Language: language, APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", quiz.ErrExtraction, err)
	}
	if strings.TrimSpace(res.Text) == "" {
		return nil, fmt.Errorf("%w: no text found in document", quiz.ErrExtraction)
	}

	state.ResetDocument()
	state.DocumentName = name
	state.ExtractedText = res.Text
	state.ExtractionMethod = res.Method
	state.UpdatedAt = s.now()

	if err := s.store.Save(ctx, state); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	s.log.Info().
		Str("session_id", id.String()).
		Str("method", string(res.Method)).
		Str("engine", res.Engine).
		Int("bytes", len(doc)).
		Dur("took", s.now().Sub(start)).
		Msg("Document processed")

	return s.view(state), nil
}

// GenerateQuiz asks the model for a new quiz over the session's text. A failed
// generation or parse keeps the previous quiz, answers and timer.
func (s *PracticeService) GenerateQuiz(ctx context.Context, id uuid.UUID, apiKey string, req model.GenerateQuizRequest) (*model.PracticeState, error) {
	unlock := s.lock(id)
	defer unlock()

	state, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(state.ExtractedText) == "" {
		return nil, ErrNoDocument
	}

	count := req.QuestionCount
	if count <= 0 {
		count = s.opts.DefaultQuestionCount
	}
	maxChars := req.MaxChars
	if maxChars <= 0 || maxChars > s.opts.MaxPromptChars {
		maxChars = s.opts.MaxPromptChars
	}

	gen, err := s.generators.ForKey(apiKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", quiz.ErrGeneration, err)
	}

	source := quiz.QuestionSource(state.ExtractedText, req.QuestionsOnly)
	prompt := quiz.BuildPrompt(source, count, maxChars)

	genCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), generationTimeout)
	defer cancel()

	start := s.now()
	raw, err := gen.Generate(genCtx, prompt)
	if err != nil {
		s.log.Warn().Err(err).Str("provider", gen.Name()).Msg("Quiz generation failed")
		return nil, fmt.Errorf("%w: %v", quiz.ErrGeneration, err)
	}

	set, err := quiz.ParseQuizResponse(raw)
	if err != nil {
		s.log.Warn().Err(err).Str("provider", gen.Name()).Int("raw_len", len(raw)).Msg("Quiz response rejected")
		return nil, err
	}
	if len(set) != count {
		s.log.Warn().Int("requested", count).Int("received", len(set)).Msg("Model returned a different number of questions")
	}

	state.ResetQuiz()
	state.Quiz = set
	state.Answers = model.AnswerRecord{}
	if req.TimerMinutes > 0 {
		startedAt := s.now()
		state.TimerMinutes = req.TimerMinutes
		state.StartedAt = &startedAt
	}
	state.UpdatedAt = s.now()

	if err := s.store.Save(ctx, state); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	s.log.Info().
		Str("session_id", id.String()).
		Str("provider", gen.Name()).
		Int("questions", len(set)).
		Int("timer_minutes", req.TimerMinutes).
		Dur("took", s.now().Sub(start)).
		Msg("Quiz generated")

	return s.view(state), nil
}

// SelectAnswer records the option chosen for one question. Option text must
// match one of the item's options exactly.
func (s *PracticeService) SelectAnswer(ctx context.Context, id uuid.UUID, index int, option string) (*model.PracticeState, error) {
	unlock := s.lock(id)
	defer unlock()

	state, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(state.Quiz) == 0 {
		return nil, ErrNoQuiz
	}
	if state.Submitted {
		return nil, ErrAlreadySubmitted
	}
	if remaining, timed := state.Remaining(s.now()); timed && remaining == 0 {
		return nil, ErrTimeUp
	}
	if err := validateSelection(state.Quiz, index, option); err != nil {
		return nil, err
	}

	if state.Answers == nil {
		state.Answers = model.AnswerRecord{}
	}
	state.Answers[index] = option
	state.UpdatedAt = s.now()

	if err := s.store.Save(ctx, state); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return s.view(state), nil
}

// Submit grades the session's answers. Answers sent with the submission are
// merged first, unless the timer has already run out. Submission itself is
// always accepted.
func (s *PracticeService) Submit(ctx context.Context, id uuid.UUID, answers map[int]string) (*model.PracticeState, error) {
	unlock := s.lock(id)
	defer unlock()

	state, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(state.Quiz) == 0 {
		return nil, ErrNoQuiz
	}
	if state.Submitted {
		return nil, ErrAlreadySubmitted
	}

	remaining, timed := state.Remaining(s.now())
	if len(answers) > 0 && !(timed && remaining == 0) {
		for i, opt := range answers {
			if err := validateSelection(state.Quiz, i, opt); err != nil {
				return nil, err
			}
		}
		if state.Answers == nil {
			state.Answers = model.AnswerRecord{}
		}
		for i, opt := range answers {
			state.Answers[i] = opt
		}
	}

	result := quiz.Grade(state.Quiz, state.Answers)
	state.Submitted = true
	state.Result = &result
	state.UpdatedAt = s.now()

	if err := s.store.Save(ctx, state); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	s.log.Info().
		Str("session_id", id.String()).
		Int("score", result.Score).
		Int("total", result.Total).
		Msg("Quiz submitted")

	if s.publisher != nil {
		attempt := model.PracticeAttempt{
			ID:           uuid.New(),
			SessionID:    state.ID,
			DocumentName: state.DocumentName,
			Score:        result.Score,
			Total:        result.Total,
			Timed:        timed,
			SubmittedAt:  state.UpdatedAt,
		}
		if err := s.publisher.Publish(ctx, attempt); err != nil {
			s.log.Error().Err(err).Str("session_id", id.String()).Msg("Failed to enqueue attempt")
		}
	}

	return s.view(state), nil
}

// ReadAloud synthesizes speech for the start of the extracted text and returns
// the URL of the stored audio.
func (s *PracticeService) ReadAloud(ctx context.Context, id uuid.UUID, apiKey string) (string, error) {
	state, err := s.store.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(state.ExtractedText) == "" {
		return "", ErrNoDocument
	}

	speaker, err := s.speakers.ForKey(apiKey)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSpeech, err)
	}

	audio, err := speaker.Speak(ctx, quiz.Truncate(state.ExtractedText, tts.MaxChars))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSpeech, err)
	}
	defer audio.Close()

	url, err := s.audio.Save(ctx, uuid.New().String()+speaker.Extension(), speaker.ContentType(), audio)
	if err != nil {
		return "", fmt.Errorf("%w: store audio: %v", ErrSpeech, err)
	}

	s.log.Info().Str("session_id", id.String()).Str("url", url).Msg("Read-aloud audio generated")
	return url, nil
}

// History lists archived attempts for the session, newest first.
func (s *PracticeService) History(ctx context.Context, id uuid.UUID) ([]model.PracticeAttempt, error) {
	if s.history == nil {
		return nil, ErrArchiveDisabled
	}
	return s.history.ListBySession(ctx, id)
}

// ─── Helpers ────────────────────────────────────────────────────────

func validateSelection(set model.QuizSet, index int, option string) error {
	if index < 0 || index >= len(set) {
		return fmt.Errorf("%w: question %d does not exist", ErrInvalidAnswer, index)
	}
	if !slices.Contains(set[index].Options, option) {
		return fmt.Errorf("%w: %q is not an option of question %d", ErrInvalidAnswer, option, index)
	}
	return nil
}

// view builds the client read model. Answers and explanations stay hidden
// until the quiz is submitted.
func (s *PracticeService) view(state *model.SessionState) *model.PracticeState {
	out := &model.PracticeState{
		SessionID:        state.ID,
		DocumentName:     state.DocumentName,
		ExtractedText:    state.ExtractedText,
		ExtractionMethod: state.ExtractionMethod,
		Answers:          state.Answers,
		Submitted:        state.Submitted,
		Result:           state.Result,
	}

	if remaining, timed := state.Remaining(s.now()); timed {
		out.Timed = true
		out.RemainingTime = remaining.Seconds()
		out.TimeUp = remaining == 0
	}

	if len(state.Quiz) > 0 {
		out.Quiz = make([]model.PublicQuizItem, len(state.Quiz))
		for i, item := range state.Quiz {
			pub := model.PublicQuizItem{Question: item.Question, Options: item.Options}
			if state.Submitted {
				pub.Answer = item.Answer
				pub.Explanation = item.Explanation
			}
			out.Quiz[i] = pub
		}
	}

	return out
}
