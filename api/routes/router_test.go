package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/agrilink/agrilink-backend/internal/notifications"
	"github.com/agrilink/agrilink-backend/internal/orderrequests"
	"github.com/agrilink/agrilink-backend/internal/reviewer"
	pkgAuth "github.com/agrilink/agrilink-backend/pkg/auth"
	"github.com/agrilink/agrilink-backend/pkg/config"
	"github.com/agrilink/agrilink-backend/pkg/db/models"
	"github.com/agrilink/agrilink-backend/pkg/enums"
	"github.com/agrilink/agrilink-backend/pkg/logger"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubRequestService struct{}

func (stubRequestService) Submit(ctx context.Context, input orderrequests.SubmitInput) (*models.OrderRequest, error) {
	return &models.OrderRequest{ID: uuid.New(), Status: enums.RequestStatusPending}, nil
}

func (stubRequestService) Get(context.Context, uuid.UUID) (*models.OrderRequest, error) {
	return nil, nil
}

func (stubRequestService) Transition(context.Context, orderrequests.TransitionInput) (*models.OrderRequest, error) {
	return nil, nil
}

type stubReviewerService struct{}

func (stubReviewerService) List(context.Context, reviewer.ListParams) (*reviewer.ListResult, error) {
	return &reviewer.ListResult{CountsByStatus: map[enums.RequestStatus]int64{}}, nil
}

func (stubReviewerService) Respond(ctx context.Context, input reviewer.RespondInput) (*models.OrderRequest, error) {
	return &models.OrderRequest{ID: input.ID, Status: enums.RequestStatusAccepted}, nil
}

func (stubReviewerService) Complete(ctx context.Context, id uuid.UUID) (*models.OrderRequest, error) {
	return &models.OrderRequest{ID: id, Status: enums.RequestStatusCompleted}, nil
}

type stubNotificationsService struct{}

func (stubNotificationsService) List(context.Context, notifications.ListParams) (*notifications.ListResult, error) {
	return &notifications.ListResult{}, nil
}

func (stubNotificationsService) MarkRead(context.Context, notifications.Scope, uuid.UUID) error {
	return nil
}

func (stubNotificationsService) MarkAllRead(context.Context, notifications.Scope) (int64, error) {
	return 0, nil
}

func (stubNotificationsService) Dispatch(context.Context, *models.Notification) error {
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:            "secret",
			Issuer:            "agrilink",
			ExpirationMinutes: 60,
		},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(
		cfg,
		logg,
		stubPinger{},
		stubPinger{},
		stubRequestService{},
		stubReviewerService{},
		stubNotificationsService{},
	)
}

func buildToken(t *testing.T, cfg *config.Config, role enums.Role) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID: uuid.New(),
		Role:   role,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthLiveIsPublic(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for liveness got %d", resp.Code)
	}
}

func TestAPIGroupRejectsMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/order-requests", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestAPIGroupSucceedsWithJWT(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/order-requests", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.RoleCustomer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for authenticated listing got %d", resp.Code)
	}
}

func TestStatusTransitionRequiresReviewerRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	target := "/api/v1/order-requests/" + uuid.NewString() + "/status"
	body := `{"status":"accepted","message":"Kumily hub can fulfil this."}`

	customer := httptest.NewRequest(http.MethodPatch, target, strings.NewReader(body))
	customer.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.RoleCustomer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, customer)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for customer transition got %d", resp.Code)
	}

	manager := httptest.NewRequest(http.MethodPatch, target, strings.NewReader(body))
	manager.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.RoleHubManager))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, manager)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for hub manager transition got %d", resp.Code)
	}
}

func TestNotificationRoutesAreScopedToCaller(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/notifications?limit=10", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.RoleCustomer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for notifications list got %d", resp.Code)
	}

	markAll := httptest.NewRequest(http.MethodPatch, "/api/v1/notifications/read-all", nil)
	markAll.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.RoleCustomer))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, markAll)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for read-all got %d", resp.Code)
	}
}

func TestMetricsEndpointIsPublic(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for metrics got %d", resp.Code)
	}
}
