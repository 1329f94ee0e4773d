package httptransport

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"casework/internal/casework/models"
	"casework/internal/casework/service"
	"casework/internal/commit"
	"casework/internal/journey"
	dErrors "casework/pkg/domain-errors"
	"casework/pkg/testutil"
)

type stubService struct {
	renderModel journey.RenderModel
	renderErr   error
	saveResult  service.SaveResult
	saveErr     error
	tasks       []journey.SectionTasks
	tasksErr    error
	confirmErr  error
	created     *models.CaseRecord
	createErr   error
	submitErr   error

	gotJourneyID   string
	gotReferenceID string
	gotSegment     string
	gotField       string
	gotForm        journey.Form
}

func (s *stubService) RenderQuestion(_ context.Context, journeyID, referenceID, segment, field string) (journey.RenderModel, error) {
	s.gotJourneyID, s.gotReferenceID, s.gotSegment, s.gotField = journeyID, referenceID, segment, field
	return s.renderModel, s.renderErr
}

func (s *stubService) SaveAnswer(_ context.Context, journeyID, referenceID, segment, field string, form journey.Form) (service.SaveResult, error) {
	s.gotJourneyID, s.gotReferenceID, s.gotSegment, s.gotField, s.gotForm = journeyID, referenceID, segment, field, form
	return s.saveResult, s.saveErr
}

func (s *stubService) TaskList(_ context.Context, journeyID, referenceID string) ([]journey.SectionTasks, error) {
	s.gotJourneyID, s.gotReferenceID = journeyID, referenceID
	return s.tasks, s.tasksErr
}

func (s *stubService) Confirm(_ context.Context, journeyID, referenceID string) error {
	s.gotJourneyID, s.gotReferenceID = journeyID, referenceID
	return s.confirmErr
}

func (s *stubService) CreateCase(context.Context) (*models.CaseRecord, error) {
	return s.created, s.createErr
}

func (s *stubService) MarkReceived(_ context.Context, journeyID, referenceID string) error {
	s.gotJourneyID, s.gotReferenceID = journeyID, referenceID
	return s.submitErr
}

type stubPinger struct{ err error }

func (p stubPinger) Health(context.Context) error { return p.err }

func newTestRouter(svc *stubService, pingers map[string]Pinger) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRouter(New(svc, logger, pingers))
}

func TestCreateCase(t *testing.T) {
	svc := &stubService{created: &models.CaseRecord{Reference: "CROWN/2026/0000001", Status: models.CaseStatusDraft}}
	router := newTestRouter(svc, nil)

	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodPost, "/cases"))

	testutil.AssertStatus(t, rr, http.StatusCreated)
	body := testutil.UnmarshalErrorResponse(t, rr)
	assert.Equal(t, "CROWN/2026/0000001", body["reference"])
	assert.Equal(t, "draft", body["status"])
}

func TestSaveAnswer(t *testing.T) {
	t.Run("success redirects to the next question", func(t *testing.T) {
		svc := &stubService{saveResult: service.SaveResult{NextURL: "/journeys/crown-development/CROWN/2026/0000001/applicant/applicantName"}}
		router := newTestRouter(svc, nil)

		req := testutil.NewFormRequest(t, http.MethodPost,
			"/journeys/crown-development/CROWN/2026/0000001/overview/description",
			url.Values{"description": {"a barn conversion"}})
		rr := testutil.DoRequest(router, req)

		testutil.AssertStatus(t, rr, http.StatusSeeOther)
		assert.Equal(t, svc.saveResult.NextURL, rr.Header().Get("Location"))
		assert.Equal(t, "crown-development", svc.gotJourneyID)
		assert.Equal(t, "CROWN/2026/0000001", svc.gotReferenceID)
		assert.Equal(t, "overview", svc.gotSegment)
		assert.Equal(t, "description", svc.gotField)
		assert.Equal(t, "a barn conversion", svc.gotForm.Get("description"))
	})

	t.Run("validation failure re-renders with 422", func(t *testing.T) {
		svc := &stubService{saveResult: service.SaveResult{Invalid: &journey.RenderModel{
			Field:  "description",
			Errors: []journey.FieldError{{Field: "description", Message: "enter a description"}},
		}}}
		router := newTestRouter(svc, nil)

		req := testutil.NewFormRequest(t, http.MethodPost,
			"/journeys/crown-development/CROWN/2026/0000001/overview/description",
			url.Values{"description": {""}})
		rr := testutil.DoRequest(router, req)

		testutil.AssertStatus(t, rr, http.StatusUnprocessableEntity)
		model := testutil.UnmarshalResponse[journey.RenderModel](t, rr)
		require.Len(t, model.Errors, 1)
		assert.Equal(t, "enter a description", model.Errors[0].Message)
	})

	t.Run("unknown reference maps to 404", func(t *testing.T) {
		svc := &stubService{saveErr: dErrors.New(dErrors.CodeNotFound, "unknown case reference")}
		router := newTestRouter(svc, nil)

		req := testutil.NewFormRequest(t, http.MethodPost,
			"/journeys/crown-development/CROWN/2026/0009999/overview/description", url.Values{})
		rr := testutil.DoRequest(router, req)

		testutil.AssertStatus(t, rr, http.StatusNotFound)
		testutil.AssertErrorCode(t, rr, string(dErrors.CodeNotFound))
	})
}

func TestRenderQuestion(t *testing.T) {
	svc := &stubService{renderModel: journey.RenderModel{Field: "description", Title: "Describe the development", Kind: "text"}}
	router := newTestRouter(svc, nil)

	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet,
		"/journeys/crown-development/CROWN/2026/0000001/overview/description"))

	testutil.AssertStatus(t, rr, http.StatusOK)
	model := testutil.UnmarshalResponse[journey.RenderModel](t, rr)
	assert.Equal(t, "Describe the development", model.Title)
}

func TestTaskList(t *testing.T) {
	svc := &stubService{tasks: []journey.SectionTasks{{Section: "Overview"}}}
	router := newTestRouter(svc, nil)

	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet,
		"/journeys/crown-development/CROWN/2026/0000001/task-list"))

	testutil.AssertStatus(t, rr, http.StatusOK)
	body := testutil.UnmarshalResponse[struct {
		Sections []journey.SectionTasks `json:"sections"`
	}](t, rr)
	require.Len(t, body.Sections, 1)
	assert.Equal(t, "Overview", body.Sections[0].Section)
}

func TestConfirm(t *testing.T) {
	t.Run("committed", func(t *testing.T) {
		svc := &stubService{}
		router := newTestRouter(svc, nil)

		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodPost,
			"/journeys/crown-development/CROWN/2026/0000001/confirm"))

		testutil.AssertStatus(t, rr, http.StatusOK)
		assert.Equal(t, "crown-development", svc.gotJourneyID)
	})

	t.Run("conflicting answers expand into a banner", func(t *testing.T) {
		svc := &stubService{confirmErr: dErrors.Wrap(&commit.ConflictError{Items: []commit.ConflictItem{
			{Message: "authorities must differ", Link: "/journeys/crown-development/CROWN/2026/0000001/overview/decidingAuthority"},
		}}, dErrors.CodeConflict, "answers conflict")}
		router := newTestRouter(svc, nil)

		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodPost,
			"/journeys/crown-development/CROWN/2026/0000001/confirm"))

		testutil.AssertStatus(t, rr, http.StatusConflict)
		body := testutil.UnmarshalResponse[struct {
			Error     string                `json:"error"`
			Conflicts []commit.ConflictItem `json:"conflicts"`
		}](t, rr)
		assert.Equal(t, string(dErrors.CodeConflict), body.Error)
		require.Len(t, body.Conflicts, 1)
		assert.Equal(t, "authorities must differ", body.Conflicts[0].Message)
		assert.NotEmpty(t, body.Conflicts[0].Link)
	})
}

func TestSubmit(t *testing.T) {
	t.Run("received", func(t *testing.T) {
		svc := &stubService{}
		router := newTestRouter(svc, nil)

		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodPost,
			"/journeys/crown-development/CROWN/2026/0000001/submit"))

		testutil.AssertStatus(t, rr, http.StatusOK)
		body := testutil.UnmarshalErrorResponse(t, rr)
		assert.Equal(t, "received", body["status"])
	})

	t.Run("publish failure is retryable", func(t *testing.T) {
		svc := &stubService{submitErr: dErrors.Wrap(errors.New("brokers unreachable"),
			dErrors.CodeUnavailable, "case submitted but not yet announced, retry")}
		router := newTestRouter(svc, nil)

		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodPost,
			"/journeys/crown-development/CROWN/2026/0000001/submit"))

		testutil.AssertStatus(t, rr, http.StatusServiceUnavailable)
		testutil.AssertErrorCode(t, rr, string(dErrors.CodeUnavailable))
	})
}

func TestHealth(t *testing.T) {
	t.Run("all dependencies up", func(t *testing.T) {
		router := newTestRouter(&stubService{}, map[string]Pinger{"postgres": stubPinger{}})
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/healthz"))
		testutil.AssertStatus(t, rr, http.StatusOK)
	})

	t.Run("a failing dependency degrades", func(t *testing.T) {
		router := newTestRouter(&stubService{}, map[string]Pinger{
			"postgres": stubPinger{err: errors.New("connection refused")},
		})
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/healthz"))

		testutil.AssertStatus(t, rr, http.StatusServiceUnavailable)
		body := testutil.UnmarshalErrorResponse(t, rr)
		assert.Equal(t, "degraded", body["status"])
		assert.Equal(t, "postgres", body["dependency"])
	})
}
