package handlers_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/hugh/docvault/internal/api/dto"
	"github.com/hugh/docvault/internal/reports"
	"github.com/hugh/docvault/internal/tasks"
	"github.com/hugh/docvault/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportHandler_Endpoints(t *testing.T) {
	srv := newTestServer(t, nil)
	defer srv.Cleanup()

	testutil.CreateTestDocument(t, srv.DB, srv.Admin, "a1", []byte("a"))
	testutil.CreateTestDocument(t, srv.DB, srv.Editor, "e1", []byte("e"))
	testutil.CreateTestDocument(t, srv.DB, srv.Editor, "e2", []byte("e"))

	t.Run("total users by role", func(t *testing.T) {
		rr := srv.do(testutil.AuthenticatedRequest(t, "GET", "/ingestion/total-users-by-role", nil, srv.AdminToken))
		testutil.AssertStatus(t, rr, http.StatusOK)
		assert.JSONEq(t, `{"admin":1,"editor":1,"viewer":1}`, rr.Body.String())
	})

	t.Run("documents by role", func(t *testing.T) {
		rr := srv.do(testutil.AuthenticatedRequest(t, "GET", "/ingestion/documents-uploaded-by-role", nil, srv.AdminToken))
		testutil.AssertStatus(t, rr, http.StatusOK)
		assert.JSONEq(t, `{"admin":1,"editor":2,"viewer":0}`, rr.Body.String())
	})

	t.Run("documents by user", func(t *testing.T) {
		rr := srv.do(testutil.AuthenticatedRequest(t, "GET", "/ingestion/documents-uploaded-by-user", nil, srv.AdminToken))
		testutil.AssertStatus(t, rr, http.StatusOK)

		var resp []reports.UserDocuments
		testutil.ParseJSONResponse(t, rr, &resp)
		assert.Len(t, resp, 2)
	})

	t.Run("admin and editor total", func(t *testing.T) {
		rr := srv.do(testutil.AuthenticatedRequest(t, "GET", "/ingestion/total-documents-uploaded-by-admin-and-editor", nil, srv.AdminToken))
		testutil.AssertStatus(t, rr, http.StatusOK)

		var resp dto.TotalResponse
		testutil.ParseJSONResponse(t, rr, &resp)
		assert.Equal(t, int64(3), resp.Total)
	})

	t.Run("all documents with user", func(t *testing.T) {
		rr := srv.do(testutil.AuthenticatedRequest(t, "GET", "/ingestion/all-documents-with-user", nil, srv.AdminToken))
		testutil.AssertStatus(t, rr, http.StatusOK)

		var resp []reports.DocumentUploader
		testutil.ParseJSONResponse(t, rr, &resp)
		assert.Len(t, resp, 3)
	})

	t.Run("non-admins are forbidden", func(t *testing.T) {
		for _, token := range []string{srv.EditorToken, srv.ViewerToken} {
			rr := srv.do(testutil.AuthenticatedRequest(t, "GET", "/ingestion/total-users-by-role", nil, token))
			testutil.AssertStatus(t, rr, http.StatusForbidden)
		}
	})
}

func TestReportHandler_Trigger(t *testing.T) {
	t.Run("enqueues the task", func(t *testing.T) {
		queue := &fakeQueue{}
		srv := newTestServer(t, queue)
		defer srv.Cleanup()

		rr := srv.do(testutil.AuthenticatedRequest(t, "POST", "/ingestion/trigger", nil, srv.AdminToken))
		testutil.AssertStatus(t, rr, http.StatusAccepted)

		var resp dto.TriggerResponse
		testutil.ParseJSONResponse(t, rr, &resp)
		assert.Equal(t, "Ingestion triggered", resp.Message)
		assert.Equal(t, "task-1", resp.TaskID)

		require.Len(t, queue.tasks, 1)
		assert.Equal(t, tasks.TypeIngestionTrigger, queue.tasks[0].Type())

		var payload tasks.IngestionTriggerPayload
		require.NoError(t, json.Unmarshal(queue.tasks[0].Payload(), &payload))
		assert.Equal(t, srv.Admin.ID, payload.RequestedBy)
	})

	t.Run("queue failure", func(t *testing.T) {
		srv := newTestServer(t, &fakeQueue{err: errors.New("redis down")})
		defer srv.Cleanup()

		rr := srv.do(testutil.AuthenticatedRequest(t, "POST", "/ingestion/trigger", nil, srv.AdminToken))
		testutil.AssertStatus(t, rr, http.StatusInternalServerError)
		assert.NotContains(t, rr.Body.String(), "redis down")
	})

	t.Run("no queue configured", func(t *testing.T) {
		srv := newTestServer(t, nil)
		defer srv.Cleanup()

		rr := srv.do(testutil.AuthenticatedRequest(t, "POST", "/ingestion/trigger", nil, srv.AdminToken))
		testutil.AssertStatus(t, rr, http.StatusServiceUnavailable)
	})

	t.Run("editor is forbidden", func(t *testing.T) {
		queue := &fakeQueue{}
		srv := newTestServer(t, queue)
		defer srv.Cleanup()

		rr := srv.do(testutil.AuthenticatedRequest(t, "POST", "/ingestion/trigger", nil, srv.EditorToken))
		testutil.AssertStatus(t, rr, http.StatusForbidden)
		assert.Empty(t, queue.tasks)
	})
}
