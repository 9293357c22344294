package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"userhub.org/internal/auth"
	"userhub.org/internal/config"
	"userhub.org/internal/user"
)

// memStore is an in-memory user.Store for HTTP-level tests.
type memStore struct {
	users  []user.User
	nextID int64
}

func (s *memStore) Create(_ context.Context, u *user.User) error {
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return user.ErrEmailTaken
		}
	}
	s.nextID++
	u.ID = s.nextID
	u.CreatedAt = time.Now().UTC()
	s.users = append(s.users, *u)
	return nil
}

func (s *memStore) FindByEmail(_ context.Context, email string) (*user.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			copied := u
			return &copied, nil
		}
	}
	return nil, user.ErrNotFound
}

func (s *memStore) List(_ context.Context) ([]user.User, error) {
	out := make([]user.User, len(s.users))
	copy(out, s.users)
	return out, nil
}

type testEnv struct {
	t      *testing.T
	cfg    *config.Config
	store  *memStore
	mr     *miniredis.Miniredis
	tokens *auth.TokenManager

	baseURL string
	client  *http.Client
}

type testOption func(*testOptions)

type testOptions struct {
	rate *limiter.Rate
	env  string
}

func withRate(limit int64, period time.Duration) testOption {
	return func(o *testOptions) {
		o.rate = &limiter.Rate{Limit: limit, Period: period}
	}
}

func withEnv(env string) testOption {
	return func(o *testOptions) { o.env = env }
}

func newTestEnv(t *testing.T, opts ...testOption) *testEnv {
	t.Helper()

	options := testOptions{env: config.EnvProduction}
	for _, opt := range opts {
		opt(&options)
	}

	cfg := &config.Config{
		Addr:            ":0",
		Env:             options.env,
		DatabaseDSN:     "postgres://test",
		AuthSecret:      "test-secret",
		TokenTTL:        time.Hour,
		BcryptCost:      4,
		RateLimitWindow: time.Minute,
		RateLimitMax:    100,
		CacheTTL:        5 * time.Minute,
	}

	tokens, err := auth.NewTokenManager(cfg.AuthSecret, cfg.TokenTTL)
	if err != nil {
		t.Fatalf("NewTokenManager: %v", err)
	}

	backing := &memStore{}
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	var store user.Store = user.NewCachedStore(backing, rdb, cfg.CacheTTL)
	users := user.NewService(store, tokens, cfg.BcryptCost)

	rate := limiter.Rate{Limit: cfg.RateLimitMax, Period: cfg.RateLimitWindow}
	if options.rate != nil {
		rate = *options.rate
	}
	lim := limiter.New(memory.NewStore(), rate)

	api := New(cfg, users, tokens, lim, ReadyProbe{Redis: rdb}, "test")
	srv := httptest.NewServer(api.Handler())
	t.Cleanup(srv.Close)

	return &testEnv{
		t:       t,
		cfg:     cfg,
		store:   backing,
		mr:      mr,
		tokens:  tokens,
		baseURL: srv.URL,
		client:  srv.Client(),
	}
}

func (e *testEnv) post(path string, body any, headers map[string]string) *http.Response {
	e.t.Helper()
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			e.t.Fatalf("marshal body: %v", err)
		}
	}
	req, err := http.NewRequest(http.MethodPost, e.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		e.t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := e.client.Do(req)
	if err != nil {
		e.t.Fatalf("do request: %v", err)
	}
	return resp
}

func (e *testEnv) get(path string, headers map[string]string) *http.Response {
	e.t.Helper()
	req, err := http.NewRequest(http.MethodGet, e.baseURL+path, nil)
	if err != nil {
		e.t.Fatalf("new request: %v", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := e.client.Do(req)
	if err != nil {
		e.t.Fatalf("get request: %v", err)
	}
	return resp
}

func (e *testEnv) register(name, email, password, role string) *http.Response {
	e.t.Helper()
	body := map[string]any{"name": name, "email": email, "password": password}
	if role != "" {
		body["role"] = role
	}
	return e.post("/register", body, nil)
}

func (e *testEnv) login(email, password string) string {
	e.t.Helper()
	resp := e.post("/login", map[string]any{"email": email, "password": password}, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		e.t.Fatalf("unexpected login status: %d", resp.StatusCode)
	}
	var payload loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		e.t.Fatalf("decode login response: %v", err)
	}
	if payload.Token == "" {
		e.t.Fatalf("empty token issued")
	}
	return payload.Token
}

func decode[T any](t *testing.T, r *http.Response) T {
	t.Helper()
	defer r.Body.Close()
	var v T
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func bearerHeader(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}
