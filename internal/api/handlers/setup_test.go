package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/hugh/docvault/internal/api/handlers"
	"github.com/hugh/docvault/internal/api/middleware"
	"github.com/hugh/docvault/internal/database/models"
	"github.com/hugh/docvault/internal/documents"
	"github.com/hugh/docvault/internal/reports"
	"github.com/hugh/docvault/internal/testutil"
)

const testMaxUpload = 1 << 20

type testServer struct {
	*testutil.TestSetup
	Router    *chi.Mux
	Documents *documents.Store
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	s.Router.ServeHTTP(rr, req)
	return rr
}

// newTestServer wires every handler behind the same guards the production
// router uses. queue may be nil.
func newTestServer(t *testing.T, queue handlers.Enqueuer) *testServer {
	t.Helper()

	tc := testutil.NewTestContext(t)
	docs := documents.NewStore(tc.DB)

	authHandler := handlers.NewAuthHandler(tc.Auth, time.Hour, false)
	userHandler := handlers.NewUserHandler(tc.Users)
	documentHandler := handlers.NewDocumentHandler(docs, testMaxUpload)
	reportHandler := handlers.NewReportHandler(reports.NewService(tc.DB), queue)

	admin := middleware.RequireRole(models.RoleAdmin)
	uploaders := middleware.RequireRole(models.RoleAdmin, models.RoleEditor)
	anyone := middleware.RequireRole(models.RoleAdmin, models.RoleEditor, models.RoleViewer)

	r := chi.NewRouter()
	r.Post("/auth/register", authHandler.Register)
	r.Post("/auth/login", authHandler.Login)
	r.Post("/users", authHandler.Register)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(tc.Auth))

		r.Post("/auth/logout", authHandler.Logout)

		r.With(admin).Get("/users", userHandler.List)
		r.With(admin).Get("/users/{id}", userHandler.Get)
		r.With(uploaders).Put("/users/{id}", userHandler.Update)
		r.With(admin).Delete("/users/{id}", userHandler.Delete)

		r.With(uploaders).Post("/documents/upload", documentHandler.Upload)
		r.With(anyone).Get("/documents", documentHandler.List)
		r.With(anyone).Get("/documents/{id}", documentHandler.Get)
		r.With(uploaders).Put("/documents/{id}", documentHandler.Update)
		r.With(uploaders).Delete("/documents/{id}", documentHandler.Delete)

		r.With(admin).Get("/ingestion/total-users-by-role", reportHandler.UsersByRole)
		r.With(admin).Get("/ingestion/documents-uploaded-by-role", reportHandler.DocumentsByRole)
		r.With(admin).Get("/ingestion/documents-uploaded-by-user", reportHandler.DocumentsByUser)
		r.With(admin).Get("/ingestion/total-documents-uploaded-by-admin-and-editor", reportHandler.AdminEditorTotal)
		r.With(admin).Get("/ingestion/all-documents-with-user", reportHandler.DocumentsWithUploader)
		r.With(admin).Post("/ingestion/trigger", reportHandler.Trigger)
	})

	return &testServer{TestSetup: tc, Router: r, Documents: docs}
}

type fakeQueue struct {
	tasks []*asynq.Task
	err   error
}

func (q *fakeQueue) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	if q.err != nil {
		return nil, q.err
	}
	q.tasks = append(q.tasks, task)
	return &asynq.TaskInfo{ID: "task-1", Type: task.Type(), Queue: "default"}, nil
}
