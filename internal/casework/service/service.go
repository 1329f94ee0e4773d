// Package service orchestrates journey requests: loading the working
// view-model, saving answers into the session draft, and committing a
// completed journey to the backing store.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"casework/internal/casework"
	"casework/internal/casework/metrics"
	"casework/internal/casework/models"
	"casework/internal/casework/store"
	"casework/internal/commit"
	"casework/internal/journey"
	"casework/internal/journey/draft"
	"casework/internal/journey/reconcile"
	"casework/internal/notify"
	"casework/pkg/domain"
	dErrors "casework/pkg/domain-errors"
	"casework/pkg/platform/sentinel"
	"casework/pkg/requestcontext"
)

const recentReferenceWindow = 50

// Service wires the journey engine to the case store, the session draft
// store, the commit pipeline, and the event stream.
type Service struct {
	definitions   map[string]journey.Definition
	prerequisites map[string][]casework.Prerequisite
	cases         store.Store
	groups        store.GroupStore
	drafts        draft.Store
	mapper        *commit.Mapper
	executor      commit.Executor
	publisher     notify.Publisher
	metrics       *metrics.Metrics
	logger        *slog.Logger
}

func New(
	definitions map[string]journey.Definition,
	prerequisites map[string][]casework.Prerequisite,
	cases store.Store,
	groups store.GroupStore,
	drafts draft.Store,
	mapper *commit.Mapper,
	executor commit.Executor,
	publisher notify.Publisher,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Service {
	return &Service{
		definitions:   definitions,
		prerequisites: prerequisites,
		cases:         cases,
		groups:        groups,
		drafts:        drafts,
		mapper:        mapper,
		executor:      executor,
		publisher:     publisher,
		metrics:       m,
		logger:        logger,
	}
}

// working is one request's reconciled view of a journey instance.
type working struct {
	journey  *journey.Journey
	snapshot journey.AnswerSet
	groups   []string
}

// loadWorking fetches the snapshot, the session draft, and the caller's
// access groups concurrently, then reconciles draft over snapshot and binds
// the journey definition to the result.
func (s *Service) loadWorking(ctx context.Context, journeyID, referenceID string) (*working, error) {
	def, ok := s.definitions[journeyID]
	if !ok {
		return nil, dErrors.New(dErrors.CodeNotFound, "unknown journey")
	}

	var (
		record       *models.CaseRecord
		draftAnswers journey.AnswerSet
		groups       []string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		record, err = s.cases.FindByReference(gctx, referenceID)
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "unknown case reference")
		}
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load case")
		}
		return nil
	})
	g.Go(func() error {
		var err error
		draftAnswers, err = s.drafts.Get(gctx, journeyID, referenceID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to load draft answers")
		}
		return nil
	})
	g.Go(func() error {
		if s.groups == nil {
			return nil
		}
		var err error
		groups, err = s.groups.GroupsForSession(gctx, requestcontext.SessionID(ctx))
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load access groups")
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	snapshot := models.ToAnswerSet(record)
	merged := reconcile.Merge(snapshot, draftAnswers)
	j, err := def.Build(referenceID, merged)
	if err != nil {
		return nil, err
	}
	return &working{journey: j, snapshot: snapshot, groups: groups}, nil
}

// RenderQuestion builds the render model for one question page.
func (s *Service) RenderQuestion(ctx context.Context, journeyID, referenceID, segment, field string) (journey.RenderModel, error) {
	w, err := s.loadWorking(ctx, journeyID, referenceID)
	if err != nil {
		return journey.RenderModel{}, err
	}
	return w.journey.Render(segment, field)
}

// SaveResult is the outcome of one answer submission. Invalid carries the
// re-rendered model with field errors; NextURL is set on success.
type SaveResult struct {
	Invalid *journey.RenderModel
	NextURL string
}

// SaveAnswer validates one submission and merges the extracted pairs into
// the session draft. Validation failure leaves the draft untouched.
func (s *Service) SaveAnswer(ctx context.Context, journeyID, referenceID, segment, field string, form journey.Form) (SaveResult, error) {
	w, err := s.loadWorking(ctx, journeyID, referenceID)
	if err != nil {
		return SaveResult{}, err
	}

	edited, invalid, err := w.journey.Save(segment, field, form)
	if err != nil {
		return SaveResult{}, err
	}
	if invalid != nil {
		s.metrics.IncrementSave(journeyID, "invalid")
		for _, fieldErr := range invalid.Errors {
			s.metrics.IncrementValidationFailure(fieldErr.Field)
		}
		return SaveResult{Invalid: invalid}, nil
	}

	if err := s.drafts.Save(ctx, journeyID, referenceID, edited); err != nil {
		return SaveResult{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to save draft answers")
	}
	s.metrics.IncrementSave(journeyID, "saved")

	if next, ok := w.journey.Next(field); ok {
		return SaveResult{NextURL: next.URL(w.journey)}, nil
	}
	return SaveResult{NextURL: w.journey.TaskListURL()}, nil
}

// TaskList builds the check-your-answers view.
func (s *Service) TaskList(ctx context.Context, journeyID, referenceID string) ([]journey.SectionTasks, error) {
	w, err := s.loadWorking(ctx, journeyID, referenceID)
	if err != nil {
		return nil, err
	}
	return w.journey.TaskList(), nil
}

// Confirm commits the session draft to the backing store in one transaction
// and clears the draft. A commit with an empty draft is a no-op. The
// post-commit event publish is best effort: failure is logged and counted,
// never surfaced.
func (s *Service) Confirm(ctx context.Context, journeyID, referenceID string) error {
	w, err := s.loadWorking(ctx, journeyID, referenceID)
	if err != nil {
		return err
	}
	if err := s.checkListMinimums(w.journey); err != nil {
		return err
	}

	draftAnswers, err := s.drafts.Get(ctx, journeyID, referenceID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to load draft answers")
	}
	if len(draftAnswers) == 0 {
		return nil
	}

	started := time.Now()
	ops, err := s.mapper.Plan(journey.Edited(draftAnswers), w.journey.Answers)
	if err != nil {
		s.metrics.IncrementCommit("conflict")
		return err
	}
	if err := s.executor.Execute(ctx, referenceID, ops); err != nil {
		s.metrics.IncrementCommit("failed")
		return err
	}
	s.metrics.IncrementCommit("committed")
	s.metrics.ObserveCommitLatency(time.Since(started))

	// The answers are durable from here; a failed draft clear means the
	// next reconcile re-applies pairs the snapshot already holds, which the
	// merge absorbs.
	if err := s.drafts.Clear(ctx, journeyID, referenceID); err != nil {
		s.logger.WarnContext(ctx, "failed to clear draft after commit",
			slog.String("journey_id", journeyID), slog.String("reference_id", referenceID), slog.Any("error", err))
	}

	s.publishBestEffort(ctx, notify.Event{
		Reference:  referenceID,
		Kind:       notify.KindAnswersCommitted,
		JourneyID:  journeyID,
		OccurredAt: requestcontext.Now(ctx),
	})
	return nil
}

// CreateCase allocates the next reference, creates the draft case row, and
// resets any stale session draft under that reference.
func (s *Service) CreateCase(ctx context.Context) (*models.CaseRecord, error) {
	recent, err := s.cases.RecentReferences(ctx, recentReferenceWindow)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list recent references")
	}
	now := requestcontext.Now(ctx)
	reference := casework.NextReference(recent, now)

	record := &models.CaseRecord{
		ID:        domain.NewCaseID().String(),
		Reference: reference.String(),
		Status:    models.CaseStatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.cases.Create(ctx, record); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.Wrap(err, dErrors.CodeConflict, "case reference already allocated")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create case")
	}

	for id := range s.definitions {
		if err := s.drafts.Replace(ctx, id, record.Reference, journey.AnswerSet{}); err != nil {
			s.logger.WarnContext(ctx, "failed to reset draft for new case",
				slog.String("journey_id", id), slog.String("reference_id", record.Reference), slog.Any("error", err))
		}
	}

	s.publishBestEffort(ctx, notify.Event{
		Reference:  record.Reference,
		Kind:       notify.KindCaseCreated,
		OccurredAt: now,
	})
	return record, nil
}

// MarkReceived transitions a case out of draft. Prerequisite answers are
// checked against the working view first; a missing one raises a conflict
// with a link to the offending question. The received event gates the
// transition's success: a publish failure surfaces as retryable.
func (s *Service) MarkReceived(ctx context.Context, journeyID, referenceID string) error {
	w, err := s.loadWorking(ctx, journeyID, referenceID)
	if err != nil {
		return err
	}

	var items []commit.ConflictItem
	for _, p := range s.prerequisites[journeyID] {
		if w.journey.Answers.String(p.Field) == "" {
			items = append(items, commit.ConflictItem{
				Message: p.Message,
				Link:    w.journey.BaseURL() + "/" + p.Segment + "/" + p.Field,
			})
		}
	}
	if len(items) > 0 {
		return dErrors.Wrap(&commit.ConflictError{Items: items}, dErrors.CodeConflict, "case is not ready to submit")
	}

	now := requestcontext.Now(ctx)
	if err := s.cases.MarkReceived(ctx, referenceID, now); err != nil {
		switch {
		case errors.Is(err, sentinel.ErrNotFound):
			return dErrors.New(dErrors.CodeNotFound, "unknown case reference")
		case errors.Is(err, sentinel.ErrInvalidState):
			return dErrors.New(dErrors.CodeConflict, "case has already been submitted")
		default:
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to submit case")
		}
	}

	event := notify.Event{Reference: referenceID, Kind: notify.KindCaseReceived, JourneyID: journeyID, OccurredAt: now}
	if s.publisher == nil {
		return nil
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.metrics.IncrementNotifyFailure("gating")
		s.logger.ErrorContext(ctx, "failed to publish received event",
			slog.String("reference_id", referenceID), slog.Any("error", err))
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "case submitted but not yet announced, retry")
	}
	return nil
}

// checkListMinimums rejects a commit while any active list question is
// below its minimum record count.
func (s *Service) checkListMinimums(j *journey.Journey) error {
	var items []commit.ConflictItem
	for _, pos := range j.ActivePositions() {
		list, ok := pos.Question.Variant.(journey.RecordList)
		if !ok || list.Min == 0 {
			continue
		}
		if !list.MeetsMinimum(j.Answers, pos.Question.FieldName) {
			items = append(items, commit.ConflictItem{
				Message: "add at least the minimum number of entries",
				Link:    pos.URL(j),
			})
		}
	}
	if len(items) > 0 {
		return dErrors.Wrap(&commit.ConflictError{Items: items}, dErrors.CodeConflict, "answers are incomplete")
	}
	return nil
}

func (s *Service) publishBestEffort(ctx context.Context, event notify.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.metrics.IncrementNotifyFailure("best_effort")
		s.logger.WarnContext(ctx, "failed to publish case event",
			slog.String("reference_id", event.Reference), slog.String("kind", event.Kind), slog.Any("error", err))
	}
}
