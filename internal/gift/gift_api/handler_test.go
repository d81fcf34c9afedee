package gift_api_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"ms-gifting/internal/draft"
	"ms-gifting/internal/gift"
	"ms-gifting/internal/gift/db"
	"ms-gifting/internal/gift/gift_api"
	"ms-gifting/internal/logger"
	"ms-gifting/internal/models"
	"ms-gifting/internal/session"
	"ms-gifting/internal/utils"
)

const testSecret = "handler-test-secret"

// memGuard is an in-process ConfirmGuard with SetNX semantics.
type memGuard struct {
	held map[string]string
}

func (g *memGuard) LockConfirm(draftKey, sessionID string) (bool, error) {
	if _, ok := g.held[draftKey]; ok {
		return false, nil
	}
	g.held[draftKey] = sessionID
	return true, nil
}

func (g *memGuard) UnlockConfirm(draftKey, sessionID string) error {
	if g.held[draftKey] == sessionID {
		delete(g.held, draftKey)
	}
	return nil
}

func setupRouter(t *testing.T) *chi.Mux {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, "file::memory:?cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { sqldb.Close() })

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())
	ctx := context.Background()
	for _, m := range []interface{}{
		(*models.User)(nil),
		(*models.Performer)(nil),
		(*models.Event)(nil),
		(*models.Gift)(nil),
	} {
		require.NoError(t, bunDB.ResetModel(ctx, m))
	}

	user := models.User{ID: "user-1", Email: "aoi@example.com", DisplayName: "Aoi", CreatedAt: time.Now()}
	_, err = bunDB.NewInsert().Model(&user).Exec(ctx)
	require.NoError(t, err)
	performer := models.Performer{ID: "performer-1", Name: "Sakura Hoshino", Email: "sakura@example.com", CreatedAt: time.Now()}
	_, err = bunDB.NewInsert().Model(&performer).Exec(ctx)
	require.NoError(t, err)
	event := models.Event{ID: "event-1", Title: "Summer Live 2026", Date: time.Now(), CreatedAt: time.Now()}
	_, err = bunDB.NewInsert().Model(&event).Exec(ctx)
	require.NoError(t, err)

	log := logger.NewLogger()
	t.Cleanup(log.Close)

	database := &db.DB{Bun: bunDB}
	guard := &memGuard{held: make(map[string]string)}
	service := gift.NewService(database, guard, nil, log)

	manager := session.NewManager(session.NewMemoryStore(), testSecret, time.Hour)
	sequencer := draft.NewSequencer(draft.NewMemoryStore(), service)

	handler := gift_api.NewHandler(service, sequencer, manager, database, log)
	sseHandler := gift_api.NewSSEHandler(log)

	r := chi.NewRouter()
	handler.RegisterRoutes(r, sseHandler)
	return r
}

func doJSON(t *testing.T, r *chi.Mux, method, path, token string, body interface{}) (*httptest.ResponseRecorder, utils.APIResponse) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var resp utils.APIResponse
	if rec.Body.Len() > 0 && rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return rec, resp
}

func login(t *testing.T, r *chi.Mux) string {
	t.Helper()

	rec, resp := doJSON(t, r, http.MethodPost, "/api/session", "", models.LoginRequest{
		Email:      "aoi@example.com",
		AccessCode: testSecret,
		Role:       models.RoleFan,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	data, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var loginResp models.LoginResponse
	require.NoError(t, json.Unmarshal(data, &loginResp))
	require.NotEmpty(t, loginResp.Token)
	return loginResp.Token
}

func draftBody() models.GiftDraft {
	return models.GiftDraft{
		EventID:       "event-1",
		PerformerID:   "performer-1",
		PerformerName: "Sakura Hoshino",
		Amount:        "1000",
		Comment:       "Great show!",
	}
}

func TestLogin_RejectsBadCredentials(t *testing.T) {
	r := setupRouter(t)

	rec, _ := doJSON(t, r, http.MethodPost, "/api/session", "", models.LoginRequest{
		Email:      "aoi@example.com",
		AccessCode: "wrong",
		Role:       models.RoleFan,
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = doJSON(t, r, http.MethodPost, "/api/session", "", models.LoginRequest{
		Email:      "nobody@example.com",
		AccessCode: testSecret,
		Role:       models.RoleFan,
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDraftFlow(t *testing.T) {
	r := setupRouter(t)
	token := login(t, r)

	// Draft endpoints reject unauthenticated requests.
	rec, _ := doJSON(t, r, http.MethodPut, "/api/gifting/draft", "", draftBody())
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// No draft yet.
	rec, _ = doJSON(t, r, http.MethodGet, "/api/gifting/draft", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Compose, then review.
	rec, _ = doJSON(t, r, http.MethodPut, "/api/gifting/draft", token, draftBody())
	require.Equal(t, http.StatusOK, rec.Code)

	rec, resp := doJSON(t, r, http.MethodGet, "/api/gifting/draft", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)

	// Confirm creates the gift.
	rec, _ = doJSON(t, r, http.MethodPost, "/api/gifting/confirm", token, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	// Thanks shows the draft once and clears the slot.
	rec, _ = doJSON(t, r, http.MethodPost, "/api/gifting/thanks", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = doJSON(t, r, http.MethodPost, "/api/gifting/thanks", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// History now shows the gift.
	rec, resp = doJSON(t, r, http.MethodGet, "/api/gifting/history", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	history, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var gifts []models.Gift
	require.NoError(t, json.Unmarshal(history, &gifts))
	require.Len(t, gifts, 1)
	assert.Equal(t, 1000, gifts[0].Amount)
	assert.Equal(t, "Aoi", gifts[0].UserName)
}

func TestConfirm_DuplicateDraftIdentityConflicts(t *testing.T) {
	r := setupRouter(t)
	token := login(t, r)

	rec, _ := doJSON(t, r, http.MethodPut, "/api/gifting/draft", token, draftBody())
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = doJSON(t, r, http.MethodPost, "/api/gifting/confirm", token, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	// Re-composing the same draft and confirming again hits the guard.
	rec, _ = doJSON(t, r, http.MethodPut, "/api/gifting/draft", token, draftBody())
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = doJSON(t, r, http.MethodPost, "/api/gifting/confirm", token, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAbandonDraft(t *testing.T) {
	r := setupRouter(t)
	token := login(t, r)

	rec, _ := doJSON(t, r, http.MethodPut, "/api/gifting/draft", token, draftBody())
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = doJSON(t, r, http.MethodDelete, "/api/gifting/draft", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = doJSON(t, r, http.MethodGet, "/api/gifting/draft", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLogout(t *testing.T) {
	r := setupRouter(t)
	token := login(t, r)

	rec, _ := doJSON(t, r, http.MethodDelete, "/api/session", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// The token no longer resolves to a session.
	rec, _ = doJSON(t, r, http.MethodGet, "/api/gifting/draft", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
