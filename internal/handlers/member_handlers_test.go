package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/faistasortieaToulouse/ToulouseRendonneesPWA2/internal/handlers"
	"github.com/faistasortieaToulouse/ToulouseRendonneesPWA2/internal/middleware"
	"github.com/faistasortieaToulouse/ToulouseRendonneesPWA2/internal/models"
	"github.com/faistasortieaToulouse/ToulouseRendonneesPWA2/internal/optimistic"
	"github.com/faistasortieaToulouse/ToulouseRendonneesPWA2/internal/routes"
	"github.com/faistasortieaToulouse/ToulouseRendonneesPWA2/internal/services"
	"github.com/faistasortieaToulouse/ToulouseRendonneesPWA2/internal/session"
	"github.com/faistasortieaToulouse/ToulouseRendonneesPWA2/internal/validation"
)

type mockSvc struct {
	signup func(ctx context.Context, in validation.SignupInput) (*models.Member, error)
	login  func(ctx context.Context, username, password string) (*models.Member, error)
	lookup func(ctx context.Context, username string) (*models.Member, error)
}

func (m *mockSvc) Signup(ctx context.Context, in validation.SignupInput) (*models.Member, error) {
	return m.signup(ctx, in)
}

func (m *mockSvc) Login(ctx context.Context, username, password string) (*models.Member, error) {
	return m.login(ctx, username, password)
}

func (m *mockSvc) Lookup(ctx context.Context, username string) (*models.Member, error) {
	return m.lookup(ctx, username)
}

func sampleMember() *models.Member {
	return &models.Member{
		ID:             primitive.NewObjectID(),
		Username:       "RandoFan",
		Email:          "m@example.com",
		Gender:         models.GenderFemale,
		IsAdult:        true,
		Role:           models.RoleMember,
		Recommendation: models.DefaultRecommendation,
		CreatedAt:      time.Now().UTC(),
		UpdatedAt:      time.Now().UTC(),
	}
}

func newTestApp(t *testing.T, svc services.MemberService) (*fiber.App, *session.Manager, *optimistic.Writer) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	log := zap.NewNop().Sugar()
	sessions := session.NewManager(rdb, "test-secret", 15, 30)
	writer := optimistic.NewWriter(log, 8, 8, time.Second)
	t.Cleanup(writer.Close)

	h := handlers.NewHandler(svc, sessions, writer, log)
	app := fiber.New()
	limiter := middleware.NewIPRateLimiter(6000, log)
	routes.Setup(app, h, sessions, limiter)
	return app, sessions, writer
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any, header map[string]string) (*http.Response, []byte) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, b
}

func TestSignupHandler_Created_NoPasswordInBody(t *testing.T) {
	svc := &mockSvc{
		signup: func(ctx context.Context, in validation.SignupInput) (*models.Member, error) {
			assert.Equal(t, "RandoFan", in.Username)
			return sampleMember(), nil
		},
	}
	app, _, _ := newTestApp(t, svc)

	resp, body := doJSON(t, app, fiber.MethodPost, "/api/v1/auth/signup", fiber.Map{
		"identite": "RandoFan",
		"email":    "m@example.com",
		"password": "abc123",
		"genre":    "Femme",
		"etudiant": false,
		"majeur":   true,
	}, nil)

	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.NotContains(t, string(body), "password")
	assert.Contains(t, string(body), "Compte créé pour RandoFan!")

	var out struct {
		User models.Member `json:"user"`
	}
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, models.RoleMember, out.User.Role)
}

func TestSignupHandler_ValidationMessageVerbatim(t *testing.T) {
	svc := &mockSvc{
		signup: func(ctx context.Context, in validation.SignupInput) (*models.Member, error) {
			return nil, &services.ValidationError{Msg: validation.MsgAdultRequired}
		},
	}
	app, _, _ := newTestApp(t, svc)

	resp, body := doJSON(t, app, fiber.MethodPost, "/api/v1/auth/signup", fiber.Map{"majeur": false}, nil)

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, validation.MsgAdultRequired, string(body))
}

func TestSignupHandler_Conflict(t *testing.T) {
	svc := &mockSvc{
		signup: func(ctx context.Context, in validation.SignupInput) (*models.Member, error) {
			return nil, services.ErrUsernameTaken
		},
	}
	app, _, _ := newTestApp(t, svc)

	resp, body := doJSON(t, app, fiber.MethodPost, "/api/v1/auth/signup", fiber.Map{"identite": "RandoFan"}, nil)

	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, handlers.MsgUsernameTaken, string(body))
}

func TestLoginHandler_GenericFailureMessage(t *testing.T) {
	svc := &mockSvc{
		login: func(ctx context.Context, username, password string) (*models.Member, error) {
			return nil, services.ErrInvalidCredentials
		},
	}
	app, _, _ := newTestApp(t, svc)

	// Unknown user and wrong password take the same path in the
	// service; the handler must render one message for both.
	resp1, body1 := doJSON(t, app, fiber.MethodPost, "/api/v1/auth/login",
		fiber.Map{"identite": "ghost", "password": "x"}, nil)
	resp2, body2 := doJSON(t, app, fiber.MethodPost, "/api/v1/auth/login",
		fiber.Map{"identite": "RandoFan", "password": "wrong"}, nil)

	assert.Equal(t, fiber.StatusUnauthorized, resp1.StatusCode)
	assert.Equal(t, fiber.StatusUnauthorized, resp2.StatusCode)
	assert.Equal(t, handlers.MsgLoginFailed, string(body1))
	assert.Equal(t, string(body1), string(body2))
}

func TestLoginHandler_SuccessOpensSession(t *testing.T) {
	member := sampleMember()
	svc := &mockSvc{
		login: func(ctx context.Context, username, password string) (*models.Member, error) {
			return member, nil
		},
		lookup: func(ctx context.Context, username string) (*models.Member, error) {
			return member, nil
		},
	}
	app, _, _ := newTestApp(t, svc)

	resp, body := doJSON(t, app, fiber.MethodPost, "/api/v1/auth/login",
		fiber.Map{"identite": "RandoFan", "password": "abc123"}, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var out struct {
		Message string          `json:"message"`
		Session session.Session `json:"session"`
	}
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Contains(t, out.Message, "Bienvenue, RandoFan")
	require.NotEmpty(t, out.Session.Token)
	require.NotEmpty(t, out.Session.AccessToken)

	// The access token drives /members/me.
	respMe, bodyMe := doJSON(t, app, fiber.MethodGet, "/api/v1/members/me", nil,
		map[string]string{"Authorization": "Bearer " + out.Session.AccessToken})
	assert.Equal(t, fiber.StatusOK, respMe.StatusCode)
	assert.Contains(t, string(bodyMe), "RandoFan")

	// The durable token drives the restore step.
	respR, bodyR := doJSON(t, app, fiber.MethodPost, "/api/v1/session/restore",
		fiber.Map{"session_token": out.Session.Token}, nil)
	assert.Equal(t, fiber.StatusOK, respR.StatusCode)
	assert.Contains(t, string(bodyR), "RandoFan")

	// Logout revokes it.
	respL, _ := doJSON(t, app, fiber.MethodPost, "/api/v1/auth/logout",
		fiber.Map{"session_token": out.Session.Token}, nil)
	assert.Equal(t, fiber.StatusOK, respL.StatusCode)

	respGone, _ := doJSON(t, app, fiber.MethodPost, "/api/v1/session/restore",
		fiber.Map{"session_token": out.Session.Token}, nil)
	assert.Equal(t, fiber.StatusUnauthorized, respGone.StatusCode)
}

func TestMeHandler_RequiresBearer(t *testing.T) {
	app, _, _ := newTestApp(t, &mockSvc{})

	resp, _ := doJSON(t, app, fiber.MethodGet, "/api/v1/members/me", nil, nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp, _ = doJSON(t, app, fiber.MethodGet, "/api/v1/members/me", nil,
		map[string]string{"Authorization": "Bearer garbage"})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestWriteFailuresFeed(t *testing.T) {
	app, _, writer := newTestApp(t, &mockSvc{})

	require.NoError(t, writer.Enqueue("signup:Lea", func(ctx context.Context) error {
		return assert.AnError
	}))
	require.Eventually(t, func() bool { return len(writer.Failures()) == 1 },
		2*time.Second, 10*time.Millisecond)

	resp, body := doJSON(t, app, fiber.MethodGet, "/api/v1/members/write-failures", nil, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "signup:Lea")
}

func TestAuthRateLimit(t *testing.T) {
	svc := &mockSvc{
		login: func(ctx context.Context, username, password string) (*models.Member, error) {
			return nil, services.ErrInvalidCredentials
		},
	}
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	log := zap.NewNop().Sugar()
	sessions := session.NewManager(rdb, "test-secret", 15, 30)
	writer := optimistic.NewWriter(log, 8, 8, time.Second)
	t.Cleanup(writer.Close)

	app := fiber.New()
	// One request a minute: the burst of 5 is all an IP gets.
	routes.Setup(app, handlers.NewHandler(svc, sessions, writer, log), sessions, middleware.NewIPRateLimiter(1, log))

	var last int
	for i := 0; i < 6; i++ {
		resp, _ := doJSON(t, app, fiber.MethodPost, "/api/v1/auth/login",
			fiber.Map{"identite": "x", "password": "y"}, nil)
		last = resp.StatusCode
	}
	assert.Equal(t, fiber.StatusTooManyRequests, last)
}

func TestHealthz(t *testing.T) {
	app, _, _ := newTestApp(t, &mockSvc{})
	resp, body := doJSON(t, app, fiber.MethodGet, "/healthz", nil, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "ok")
}
