package routes_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amirhossein-jamali/credits-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/credits-ledger/internal/domain/error"
	"github.com/amirhossein-jamali/credits-ledger/internal/domain/usecase/earn"
	"github.com/amirhossein-jamali/credits-ledger/internal/domain/usecase/giveaway"
	"github.com/amirhossein-jamali/credits-ledger/internal/domain/usecase/store"
	"github.com/amirhossein-jamali/credits-ledger/internal/domain/usecase/user"
	"github.com/amirhossein-jamali/credits-ledger/internal/infrastructure/adapter/api/dto"
	"github.com/amirhossein-jamali/credits-ledger/internal/infrastructure/adapter/api/handler"
	"github.com/amirhossein-jamali/credits-ledger/internal/infrastructure/adapter/api/middleware"
	"github.com/amirhossein-jamali/credits-ledger/internal/infrastructure/adapter/api/routes"
	"github.com/amirhossein-jamali/credits-ledger/internal/testutil"
)

const adminToken = "admin-secret"

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type apiEnv struct {
	*testutil.Env
	router *gin.Engine
}

func newAPI(t *testing.T) *apiEnv {
	t.Helper()
	env := testutil.NewEnv(t)

	users := user.NewUserUseCase(env.Runner, env.Ledger, env.Policy, env.Clock, env.Logger)
	storeSvc := store.NewService(env.Runner, env.Ledger, env.Clock, env.Logger)
	h := routes.Handlers{
		User:     handler.NewUserHandler(users, env.Logger),
		Earn:     handler.NewEarnHandler(earn.NewService(env.Runner, env.Ledger, env.Devices, env.Flags, env.Gate, env.Policy, env.Clock, env.Logger), env.Ledger, env.Logger),
		Store:    handler.NewStoreHandler(storeSvc, env.Logger),
		Giveaway: handler.NewGiveawayHandler(giveaway.NewService(env.Runner, env.Ledger, env.Gate, env.Policy, env.Clock, env.Logger), env.Logger),
		Admin:    handler.NewAdminHandler(users, storeSvc, env.Logger),
		Health:   handler.NewHealthHandler("memory", nil),
	}
	return &apiEnv{
		Env:    env,
		router: routes.NewRouter(h, env.Logger, env.Clock, adminToken, nil),
	}
}

func (a *apiEnv) do(t *testing.T, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func asUser(id string) map[string]string {
	return map[string]string{middleware.UserIDHeader: id}
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestCreateUserAndGetMe(t *testing.T) {
	api := newAPI(t)

	rec := api.do(t, http.MethodPost, "/v1/users", map[string]any{"userId": 7, "email": "a@example.com"}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = api.do(t, http.MethodPost, "/v1/users", map[string]any{"userId": 7}, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, errs.CodeDuplicateUser, decodeError(t, rec).Code)

	rec = api.do(t, http.MethodGet, "/v1/me", nil, asUser("7"))
	require.Equal(t, http.StatusOK, rec.Code)
	var view entity.AccountView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, uint64(7), view.UserID)
	assert.Equal(t, "new", view.Tier.Name)
}

func TestIdentityIsRequired(t *testing.T) {
	api := newAPI(t)

	for _, id := range []string{"", "abc", "0"} {
		rec := api.do(t, http.MethodGet, "/v1/me", nil, asUser(id))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, id)
		assert.Equal(t, string(errs.KindUnauthenticated), decodeError(t, rec).Kind)
	}
}

func TestEarnCheckin(t *testing.T) {
	api := newAPI(t)
	api.CreateUser(t, 1, 30)

	rec := api.do(t, http.MethodPost, "/v1/me/earn", map[string]any{"type": "checkin"}, asUser("1"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var result struct {
		Credited int64 `json:"credited"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, api.Policy.CheckinReward, result.Credited)

	rec = api.do(t, http.MethodPost, "/v1/me/earn", map[string]any{"type": "checkin"}, asUser("1"))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, errs.CodeAlreadyCompleted, decodeError(t, rec).Code)

	rec = api.do(t, http.MethodGet, "/v1/me/earn-events", nil, asUser("1"))
	require.Equal(t, http.StatusOK, rec.Code)
	var events []dto.EarnEventResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &events))
	require.Len(t, events, 1)
	assert.Equal(t, entity.EarnTypeCheckin, events[0].Type)
}

func TestEarnValidation(t *testing.T) {
	api := newAPI(t)
	api.CreateUser(t, 1, 30)

	rec := api.do(t, http.MethodPost, "/v1/me/earn", map[string]any{"type": "referral"}, asUser("1"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(t, http.MethodPost, "/v1/me/earn", map[string]any{}, asUser("1"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, errs.CodeInvalidRequest, decodeError(t, rec).Code)
}

func TestRedeemInsufficientBalance(t *testing.T) {
	api := newAPI(t)
	api.CreateUser(t, 1, 30)
	item := api.AddItem(t, entity.StoreItem{Code: "badge", Name: "Badge", CreditsCost: 100, ItemType: entity.ItemTypeBadge})

	rec := api.do(t, http.MethodGet, "/v1/store/items", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var items []dto.StoreItemResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	require.Len(t, items, 1)

	rec = api.do(t, http.MethodPost, "/v1/me/redemptions", map[string]any{"itemId": item.ID}, asUser("1"))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, errs.CodeInsufficientBalance, resp.Code)
	assert.EqualValues(t, 100, resp.Details["required"])

	api.Fund(t, 1, 150)
	rec = api.do(t, http.MethodPost, "/v1/me/redemptions", map[string]any{"itemId": item.ID}, asUser("1"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var redeemed dto.RedeemResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &redeemed))
	assert.Equal(t, int64(50), redeemed.Balance.Current)
	assert.Equal(t, entity.RedemptionCompleted, redeemed.Redemption.Status)
}

func TestAdminRoutes(t *testing.T) {
	api := newAPI(t)
	api.CreateUser(t, 1, 30)

	rec := api.do(t, http.MethodPost, "/v1/admin/users/1/ban", map[string]any{"reason": "abuse"}, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, errs.CodeForbidden, decodeError(t, rec).Code)

	admin := map[string]string{middleware.AdminTokenHeader: adminToken}
	rec = api.do(t, http.MethodPost, "/v1/admin/users/1/ban", map[string]any{"reason": "abuse"}, admin)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = api.do(t, http.MethodPost, "/v1/me/earn", map[string]any{"type": "checkin"}, asUser("1"))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, errs.CodeAccountBanned, decodeError(t, rec).Code)

	rec = api.do(t, http.MethodDelete, "/v1/admin/users/1/ban", nil, admin)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = api.do(t, http.MethodPost, "/v1/admin/redemptions/99/fulfill", map[string]any{"code": "X"}, admin)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGiveawayEntries(t *testing.T) {
	api := newAPI(t)
	api.CreateUser(t, 1, 30)
	g := api.AddGiveaway(t, 3)
	path := "/v1/me/giveaways/" + jsonNumber(g.ID) + "/entries"

	rec := api.do(t, http.MethodPost, path, map[string]any{"action": "claim_free"}, asUser("1"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = api.do(t, http.MethodPost, path, map[string]any{"action": "claim_free"}, asUser("1"))
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = api.do(t, http.MethodGet, path, nil, asUser("1"))
	require.Equal(t, http.StatusOK, rec.Code)
	var summary entity.EntrySummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, 1, summary.Free)
	assert.Equal(t, 1, summary.Total)

	rec = api.do(t, http.MethodGet, "/v1/me/giveaways/abc/entries", nil, asUser("1"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthAndRequestID(t *testing.T) {
	api := newAPI(t)

	rec := api.do(t, http.MethodGet, "/health", nil, map[string]string{middleware.RequestIDHeader: "req-42"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "req-42", rec.Header().Get(middleware.RequestIDHeader))

	rec = api.do(t, http.MethodGet, "/health", nil, nil)
	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))
}

func TestPanicIsRecovered(t *testing.T) {
	env := testutil.NewEnv(t)
	router := gin.New()
	routes.SetupMiddlewares(router, env.Logger, env.Clock, nil)
	router.GET("/boom", func(*gin.Context) { panic("boom") })

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, errs.CodeInternalServer, decodeError(t, rec).Code)
}

func jsonNumber(id uint64) string {
	b, _ := json.Marshal(id)
	return string(b)
}
