// Package service ties validation, translation, the Poll API client and the
// poll cache together.
package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofrs/uuid"

	"github.com/mbolis/poll-creator/cache"
	"github.com/mbolis/poll-creator/leanix"
	"github.com/mbolis/poll-creator/log"
	"github.com/mbolis/poll-creator/model"
	"github.com/mbolis/poll-creator/survey"
	"github.com/mbolis/poll-creator/translate"
)

const DefaultLanguage = "en"

var (
	ErrInvalidCredentials = errors.New("invalid configuration")
	ErrInvalidPollID      = errors.New("poll id must be a UUID")
	ErrEmptyBatch         = errors.New("batch requests cannot be empty")
	ErrBatchTooLarge      = errors.New("batch size exceeds maximum")
)

// Upstream is the Poll API.
type Upstream interface {
	CreatePoll(ctx context.Context, creds leanix.Credentials, poll *model.PollCreate) (string, error)
	GetPoll(ctx context.Context, creds leanix.Credentials, pollID string) ([]byte, error)
}

// AuditLog records every poll submitted upstream.
type AuditLog interface {
	RecordSubmission(ctx context.Context, s *model.Submission) error
}

type Observer interface {
	RecordValidation(valid bool)
	RecordSubmission(status string)
}

type nopObserver struct{}

func (nopObserver) RecordValidation(bool)    {}
func (nopObserver) RecordSubmission(string) {}

type Config struct {
	MaxBatchSize int
	// CacheTTL is the lifetime of cached polls. Polls are only cached when
	// the service is given a cache.
	CacheTTL time.Duration

	ValidateOptions []survey.Option
}

type Service struct {
	cfg        Config
	translator *translate.Translator
	upstream   Upstream
	polls      *cache.Cache[[]byte]
	audit      AuditLog
	observer   Observer
}

type Option func(*Service)

// WithCache enables caching of fetched polls.
func WithCache(polls *cache.Cache[[]byte]) Option {
	return func(s *Service) {
		s.polls = polls
	}
}

func WithAuditLog(audit AuditLog) Option {
	return func(s *Service) {
		s.audit = audit
	}
}

func WithObserver(o Observer) Option {
	return func(s *Service) {
		if o != nil {
			s.observer = o
		}
	}
}

func New(cfg Config, translator *translate.Translator, upstream Upstream, opts ...Option) *Service {
	s := &Service{
		cfg:        cfg,
		translator: translator,
		upstream:   upstream,
		observer:   nopObserver{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewPollCache builds a cache suited for WithCache.
func NewPollCache(capacity int, ttl time.Duration, observer cache.Observer) *cache.Cache[[]byte] {
	return cache.New(
		cache.WithCapacity[[]byte](capacity),
		cache.WithTTL[[]byte](ttl),
		cache.WithClone(bytes.Clone),
		cache.WithObserver[[]byte](observer),
	)
}

// Validate checks a raw survey definition.
func (s *Service) Validate(raw []byte) (*survey.Report, error) {
	report, err := survey.Validate(raw, s.cfg.ValidateOptions...)
	s.observer.RecordValidation(err == nil)
	if err != nil {
		log.Debugf("service.validate: %s", err)
	} else {
		log.Infof("Survey validation passed: %s", report.Survey.Title)
	}
	return report, err
}

type CreateRequest struct {
	Survey        json.RawMessage `json:"survey_input"`
	Language      string          `json:"language,omitempty"`
	FactSheetType string          `json:"fact_sheet_type"`
	DueDate       *model.Date     `json:"due_date,omitempty"`
}

type CreateResult struct {
	PollID   string           `json:"poll_id,omitempty"`
	Warnings []survey.Warning `json:"warnings,omitempty"`
}

// Create validates, translates and submits one survey.
func (s *Service) Create(ctx context.Context, creds leanix.Credentials, req CreateRequest) (*CreateResult, error) {
	if err := creds.Validate(); err != nil {
		return nil, credentialsError{err}
	}
	return s.create(ctx, creds, req)
}

func (s *Service) create(ctx context.Context, creds leanix.Credentials, req CreateRequest) (*CreateResult, error) {
	report, err := s.Validate(req.Survey)
	if err != nil {
		return nil, err
	}

	language := req.Language
	if language == "" {
		language = DefaultLanguage
	}
	poll, err := s.translator.Translate(report.Survey, translate.Params{
		Language:      language,
		FactSheetType: req.FactSheetType,
		DueDate:       req.DueDate,
	})
	if err != nil {
		return nil, err
	}

	log.Infof("Creating survey: %s", poll.Title)
	id, err := s.upstream.CreatePoll(ctx, creds, poll)
	s.recordSubmission(ctx, creds, poll.Title, id, err)
	if err != nil {
		return nil, err
	}
	log.Infof("Survey created with poll ID: %s", id)
	return &CreateResult{PollID: id, Warnings: report.Warnings}, nil
}

func (s *Service) recordSubmission(ctx context.Context, creds leanix.Credentials, title, pollID string, err error) {
	sub := &model.Submission{
		WorkspaceID: creds.WorkspaceID,
		PollID:      pollID,
		Title:       title,
		Status:      model.SubmissionCreated,
		Time:        time.Now(),
	}
	if err != nil {
		sub.Status = model.SubmissionFailed
		sub.Error = err.Error()
	}
	s.observer.RecordSubmission(sub.Status)

	if s.audit == nil {
		return
	}
	if err := s.audit.RecordSubmission(ctx, sub); err != nil {
		log.Errorf("service.audit: %s", err)
	}
}

type BatchRequest struct {
	Requests []CreateRequest `json:"requests"`
	// FailFast stops the batch at the first failure. It defaults to true.
	FailFast *bool `json:"fail_fast,omitempty"`
}

type BatchItemResult struct {
	Index    int              `json:"index"`
	Success  bool             `json:"success"`
	PollID   string           `json:"poll_id,omitempty"`
	Message  string           `json:"message"`
	Errors   []string         `json:"errors,omitempty"`
	Warnings []survey.Warning `json:"warnings,omitempty"`
}

type BatchResult struct {
	Success   bool              `json:"success"`
	Succeeded int               `json:"succeeded"`
	Failed    int               `json:"failed"`
	Results   []BatchItemResult `json:"results"`
	Message   string            `json:"message"`
}

// CreateBatch submits the surveys one at a time, in order. Items after the
// first failure are skipped when the batch is fail-fast.
func (s *Service) CreateBatch(ctx context.Context, creds leanix.Credentials, req BatchRequest) (*BatchResult, error) {
	if len(req.Requests) == 0 {
		return nil, ErrEmptyBatch
	}
	if s.cfg.MaxBatchSize > 0 && len(req.Requests) > s.cfg.MaxBatchSize {
		return nil, fmt.Errorf("%w of %d", ErrBatchTooLarge, s.cfg.MaxBatchSize)
	}
	if err := creds.Validate(); err != nil {
		return nil, credentialsError{err}
	}
	failFast := req.FailFast == nil || *req.FailFast

	log.Infof("Processing batch survey creation: %d items", len(req.Requests))
	result := &BatchResult{Results: []BatchItemResult{}}
	for i, item := range req.Requests {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		res, err := s.create(ctx, creds, item)
		if err == nil {
			result.Succeeded++
			result.Results = append(result.Results, BatchItemResult{
				Index:    i,
				Success:  true,
				PollID:   res.PollID,
				Message:  "Survey created successfully",
				Warnings: res.Warnings,
			})
			continue
		}

		result.Failed++
		result.Results = append(result.Results, BatchItemResult{
			Index:   i,
			Message: "Failed to create survey",
			Errors:  errorMessages(err),
		})
		if failFast {
			log.Warnf("Fail-fast enabled; stopping batch after index %d", i)
			break
		}
	}

	result.Success = result.Failed == 0
	result.Message = fmt.Sprintf("Batch completed: %d succeeded, %d failed", result.Succeeded, result.Failed)
	return result, nil
}

func errorMessages(err error) []string {
	if issues := survey.Issues(err); len(issues) > 0 {
		msgs := make([]string, len(issues))
		for i, issue := range issues {
			msgs[i] = issue.Error()
		}
		return msgs
	}
	return []string{err.Error()}
}

// Get fetches a poll, through the cache when one is configured.
func (s *Service) Get(ctx context.Context, creds leanix.Credentials, pollID string) (json.RawMessage, error) {
	if err := creds.Validate(); err != nil {
		return nil, credentialsError{err}
	}
	if _, err := uuid.FromString(pollID); err != nil {
		return nil, ErrInvalidPollID
	}

	log.Infof("Retrieving survey: %s", pollID)
	if s.polls == nil {
		return s.upstream.GetPoll(ctx, creds, pollID)
	}

	key := CacheKey(creds.WorkspaceID, pollID)
	return s.polls.GetOrFetch(ctx, key, s.cfg.CacheTTL, func(ctx context.Context) ([]byte, error) {
		log.Debugf("Cache miss for poll %s", pollID)
		return s.upstream.GetPoll(ctx, creds, pollID)
	})
}

// credentialsError keeps the message of the validation error while
// matching ErrInvalidCredentials.
type credentialsError struct{ err error }

func (e credentialsError) Error() string        { return e.err.Error() }
func (e credentialsError) Unwrap() error        { return e.err }
func (e credentialsError) Is(target error) bool { return target == ErrInvalidCredentials }

func CacheKey(workspaceID, pollID string) string {
	return workspaceID + ":" + pollID
}
