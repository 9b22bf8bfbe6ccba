package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-credit-sum/internal/jwt"
	"github.com/sbilibin2017/gw-credit-sum/internal/middlewares"
	"github.com/sbilibin2017/gw-credit-sum/internal/models"
	"github.com/sbilibin2017/gw-credit-sum/internal/repositories"
	"github.com/sbilibin2017/gw-credit-sum/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memDB is an in-memory stand-in for the Postgres and Redis stores.
type memDB struct {
	mu      sync.Mutex
	users   map[uuid.UUID]models.User
	credits map[uuid.UUID]int
	resets  map[string]uuid.UUID
}

func newMemDB() *memDB {
	return &memDB{
		users:   make(map[uuid.UUID]models.User),
		credits: make(map[uuid.UUID]int),
		resets:  make(map[string]uuid.UUID),
	}
}

func (db *memDB) GetByEmail(_ context.Context, email string) (*models.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	for _, u := range db.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, nil
}

func (db *memDB) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	u, ok := db.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (db *memDB) List(_ context.Context, limit, offset, defaultCredits int) ([]models.UserWithCredits, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	var out []models.UserWithCredits
	for _, u := range db.users {
		c, ok := db.credits[u.ID]
		if !ok {
			c = defaultCredits
		}
		out = append(out, models.UserWithCredits{User: u, Credits: c})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (db *memDB) Create(_ context.Context, user *models.User) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	for _, u := range db.users {
		if u.Email == user.Email {
			return repositories.ErrDuplicate
		}
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	db.users[user.ID] = *user
	return nil
}

func (db *memDB) Update(_ context.Context, id uuid.UUID, upd models.UserUpdate) (*models.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	u, ok := db.users[id]
	if !ok {
		return nil, nil
	}
	if upd.Email != nil {
		u.Email = *upd.Email
	}
	if upd.PasswordHash != nil {
		u.PasswordHash = *upd.PasswordHash
	}
	if upd.IsActive != nil {
		u.IsActive = *upd.IsActive
	}
	if upd.IsVerified != nil {
		u.IsVerified = *upd.IsVerified
	}
	if upd.IsSuperuser != nil {
		u.IsSuperuser = *upd.IsSuperuser
	}
	db.users[id] = u
	return &u, nil
}

func (db *memDB) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if _, ok := db.users[id]; !ok {
		return false, nil
	}
	delete(db.users, id)
	delete(db.credits, id)
	return true, nil
}

// memCredits implements the ledger store on top of memDB.
type memCredits struct{ db *memDB }

func (c memCredits) Ensure(_ context.Context, userID uuid.UUID, initial int) (int, error) {
	c.db.mu.Lock()
	defer c.db.mu.Unlock()
	if _, ok := c.db.users[userID]; !ok {
		return 0, repositories.ErrReferenceMissing
	}
	if balance, ok := c.db.credits[userID]; ok {
		return balance, nil
	}
	c.db.credits[userID] = initial
	return initial, nil
}

func (c memCredits) Debit(_ context.Context, userID uuid.UUID, amount int) (int, error) {
	c.db.mu.Lock()
	defer c.db.mu.Unlock()
	balance, ok := c.db.credits[userID]
	if !ok || balance < amount {
		return 0, repositories.ErrInsufficientBalance
	}
	c.db.credits[userID] = balance - amount
	return balance - amount, nil
}

func (c memCredits) Set(_ context.Context, userID uuid.UUID, amount int) (int, error) {
	c.db.mu.Lock()
	defer c.db.mu.Unlock()
	if _, ok := c.db.users[userID]; !ok {
		return 0, repositories.ErrReferenceMissing
	}
	c.db.credits[userID] = amount
	return amount, nil
}

// memResets implements the one-time reset token store.
type memResets struct{ db *memDB }

func (r memResets) Save(_ context.Context, token string, userID uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.resets[token] = userID
	return nil
}

func (r memResets) Consume(_ context.Context, token string) (uuid.UUID, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	id, ok := r.db.resets[token]
	if !ok {
		return uuid.Nil, nil
	}
	delete(r.db.resets, token)
	return id, nil
}

// outbox records reset emails instead of sending them.
type outbox struct {
	mu     sync.Mutex
	tokens map[string]string
}

func (o *outbox) SendResetPassword(_ context.Context, email, token string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.tokens[email] = token
	return nil
}

type testApp struct {
	server *httptest.Server
	db     *memDB
	auth   *services.AuthService
	mail   *outbox
}

func newTestApp(t *testing.T, opts ...func(*Deps)) *testApp {
	t.Helper()

	db := newMemDB()
	mail := &outbox{tokens: make(map[string]string)}
	tokens := jwt.New(jwt.WithSecretKey("test-secret"), jwt.WithExpiration(time.Hour))

	credits := services.NewCreditService(memCredits{db}, 10, nil)
	auth := services.NewAuthService(db, db, credits, tokens, memResets{db}, mail)
	users := services.NewUserService(db, db, credits, 10)

	deps := Deps{
		Auth:        auth,
		Users:       users,
		Credits:     credits,
		Sum:         services.NewSumService(credits),
		Tokens:      tokens,
		Guard:       services.NewGuardService(tokens, db),
		CORSOrigins: []string{"http://localhost:5173"},
	}
	for _, opt := range opts {
		opt(&deps)
	}
	router := NewRouter(deps)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &testApp{server: srv, db: db, auth: auth, mail: mail}
}

func (a *testApp) do(t *testing.T, method, path, token string, body any) (int, []byte) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, a.server.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := a.server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, buf.Bytes()
}

func (a *testApp) login(t *testing.T, email, password string) (int, string) {
	t.Helper()

	form := url.Values{"username": {email}, "password": {password}}
	resp, err := a.server.Client().Post(a.server.URL+"/auth/jwt/login",
		"application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	require.NoError(t, err)
	defer resp.Body.Close()

	var body struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	if resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "bearer", body.TokenType)
	}
	return resp.StatusCode, body.AccessToken
}

func detail(t *testing.T, body []byte) string {
	t.Helper()
	var resp struct {
		Detail string `json:"detail"`
	}
	require.NoError(t, json.Unmarshal(body, &resp))
	return resp.Detail
}

func meCredits(t *testing.T, a *testApp, token string) int {
	t.Helper()
	status, body := a.do(t, http.MethodGet, "/users/me", token, nil)
	require.Equal(t, http.StatusOK, status)
	var me models.UserWithCredits
	require.NoError(t, json.Unmarshal(body, &me))
	return me.Credits
}

func TestScenario_LoginMeSum(t *testing.T) {
	app := newTestApp(t)

	status, body := app.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"email":    "Alice@Example.com",
		"password": "Secret123",
	})
	require.Equal(t, http.StatusCreated, status, string(body))
	var registered models.UserWithCredits
	require.NoError(t, json.Unmarshal(body, &registered))
	assert.Equal(t, "alice@example.com", registered.Email)
	assert.Equal(t, 10, registered.Credits)

	status, _ = app.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"email":    "alice@example.com",
		"password": "Secret123",
	})
	assert.Equal(t, http.StatusConflict, status)

	status, token := app.login(t, "alice@example.com", "Secret123")
	require.Equal(t, http.StatusOK, status)
	require.NotEmpty(t, token)

	assert.Equal(t, 10, meCredits(t, app, token))

	status, body = app.do(t, http.MethodPost, "/api/sum", token, map[string]int{"a": 10, "b": 20})
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"result":30}`, string(body))

	assert.Equal(t, 9, meCredits(t, app, token))

	// Invalid operands cost nothing
	status, _ = app.do(t, http.MethodPost, "/api/sum", token, map[string]int{"a": 1024, "b": 0})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, 9, meCredits(t, app, token))
}

func TestScenario_LoginFailures(t *testing.T) {
	app := newTestApp(t)

	status, _ := app.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"email": "bob@example.com", "password": "Secret123",
	})
	require.Equal(t, http.StatusCreated, status)

	status, _ = app.login(t, "bob@example.com", "Wrong1234")
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = app.login(t, "nobody@example.com", "Secret123")
	assert.Equal(t, http.StatusBadRequest, status)

	status, body := app.do(t, http.MethodGet, "/users/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Unauthorized", detail(t, body))

	status, _ = app.do(t, http.MethodPost, "/api/sum", "not-a-token", map[string]int{"a": 1, "b": 2})
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestScenario_NonSuperuserForbidden(t *testing.T) {
	app := newTestApp(t)

	status, body := app.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"email": "carol@example.com", "password": "Secret123",
	})
	require.Equal(t, http.StatusCreated, status)
	var carol models.UserWithCredits
	require.NoError(t, json.Unmarshal(body, &carol))

	_, token := app.login(t, "carol@example.com", "Secret123")
	require.NotEmpty(t, token)

	id := carol.ID.String()
	requests := []struct {
		method string
		path   string
		body   any
	}{
		{http.MethodGet, "/users", nil},
		{http.MethodGet, "/users/" + id, nil},
		{http.MethodPatch, "/users/" + id, map[string]bool{"is_superuser": true}},
		{http.MethodDelete, "/users/" + id, nil},
		{http.MethodPatch, "/api/users/" + id + "/credits", map[string]int{"credits": 1000}},
		// Role check wins over a malformed payload
		{http.MethodPatch, "/api/users/" + id + "/credits", map[string]string{"credits": "lots"}},
		{http.MethodGet, "/users/not-a-uuid", nil},
	}

	for _, r := range requests {
		status, body := app.do(t, r.method, r.path, token, r.body)
		assert.Equal(t, http.StatusForbidden, status, "%s %s", r.method, r.path)
		assert.Equal(t, services.ErrNotSuperuser.Message, detail(t, body))
	}

	status, _ = app.do(t, http.MethodPatch, "/users/me", token, map[string]bool{"is_superuser": true})
	assert.Equal(t, http.StatusForbidden, status)

	me, err := app.db.GetByID(context.Background(), carol.ID)
	require.NoError(t, err)
	assert.False(t, me.IsSuperuser)
	assert.Equal(t, 10, meCredits(t, app, token))
}

func TestScenario_SuperuserManagesCredits(t *testing.T) {
	app := newTestApp(t)

	admin, err := app.auth.EnsureSuperuser(context.Background(), "admin@example.com", "Admin1234")
	require.NoError(t, err)

	status, body := app.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"email": "dave@example.com", "password": "Secret123",
	})
	require.Equal(t, http.StatusCreated, status)
	var dave models.UserWithCredits
	require.NoError(t, json.Unmarshal(body, &dave))

	_, adminToken := app.login(t, "admin@example.com", "Admin1234")
	_, daveToken := app.login(t, "dave@example.com", "Secret123")

	status, body = app.do(t, http.MethodPatch, "/api/users/"+dave.ID.String()+"/credits", adminToken, map[string]int{"credits": 0})
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"user_id":"`+dave.ID.String()+`","credits":0}`, string(body))

	status, body = app.do(t, http.MethodPost, "/api/sum", daveToken, map[string]int{"a": 1, "b": 2})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, services.ErrInsufficientCredits.Message, detail(t, body))
	assert.Equal(t, 0, meCredits(t, app, daveToken))

	status, _ = app.do(t, http.MethodPatch, "/api/users/"+dave.ID.String()+"/credits", adminToken, map[string]int{"credits": -1})
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	status, _ = app.do(t, http.MethodPatch, "/api/users/"+uuid.NewString()+"/credits", adminToken, map[string]int{"credits": 5})
	assert.Equal(t, http.StatusNotFound, status)

	status, body = app.do(t, http.MethodGet, "/users?limit=10", adminToken, nil)
	require.Equal(t, http.StatusOK, status)
	var list []models.UserWithCredits
	require.NoError(t, json.Unmarshal(body, &list))
	assert.Len(t, list, 2)

	status, _ = app.do(t, http.MethodDelete, "/users/"+admin.ID.String(), adminToken, nil)
	assert.Equal(t, http.StatusConflict, status)

	status, _ = app.do(t, http.MethodDelete, "/users/"+dave.ID.String(), adminToken, nil)
	assert.Equal(t, http.StatusNoContent, status)

	// Deleted users lose access immediately
	status, _ = app.do(t, http.MethodGet, "/users/me", daveToken, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestScenario_PasswordReset(t *testing.T) {
	app := newTestApp(t)

	status, _ := app.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"email": "erin@example.com", "password": "Secret123",
	})
	require.Equal(t, http.StatusCreated, status)

	status, _ = app.do(t, http.MethodPost, "/auth/forgot-password", "", map[string]string{"email": "erin@example.com"})
	require.Equal(t, http.StatusAccepted, status)

	status, _ = app.do(t, http.MethodPost, "/auth/forgot-password", "", map[string]string{"email": "ghost@example.com"})
	assert.Equal(t, http.StatusAccepted, status)

	app.mail.mu.Lock()
	token := app.mail.tokens["erin@example.com"]
	_, ghostMailed := app.mail.tokens["ghost@example.com"]
	app.mail.mu.Unlock()
	require.NotEmpty(t, token)
	assert.False(t, ghostMailed)

	status, _ = app.do(t, http.MethodPost, "/auth/reset-password", "", map[string]string{"token": token, "password": "NewSecret123"})
	require.Equal(t, http.StatusOK, status)

	status, body := app.do(t, http.MethodPost, "/auth/reset-password", "", map[string]string{"token": token, "password": "Another123"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "RESET_PASSWORD_BAD_TOKEN", detail(t, body))

	status, _ = app.login(t, "erin@example.com", "Secret123")
	assert.Equal(t, http.StatusBadRequest, status)

	status, sessionToken := app.login(t, "erin@example.com", "NewSecret123")
	require.Equal(t, http.StatusOK, status)

	status, body = app.do(t, http.MethodPatch, "/users/me/password", sessionToken, map[string]string{
		"current_password": "wrong", "password": "Third1234",
	})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "Current password is incorrect", detail(t, body))

	status, _ = app.do(t, http.MethodPatch, "/users/me/password", sessionToken, map[string]string{
		"current_password": "NewSecret123", "password": "Third1234",
	})
	assert.Equal(t, http.StatusOK, status)

	status, _ = app.login(t, "erin@example.com", "Third1234")
	assert.Equal(t, http.StatusOK, status)
}

func TestRouter_RootAndCORS(t *testing.T) {
	app := newTestApp(t)

	status, body := app.do(t, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"message":"Hello World"}`, string(body))

	req, err := http.NewRequest(http.MethodOptions, app.server.URL+"/api/sum", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	resp, err := app.server.Client().Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "http://localhost:5173", resp.Header.Get("Access-Control-Allow-Origin"))
}

// postLogin sends a failing login, optionally spoofing the client address.
func postLogin(t *testing.T, a *testApp, forwardedFor string) int {
	t.Helper()

	form := url.Values{"username": {"nobody@example.com"}, "password": {"Secret123"}}
	req, err := http.NewRequest(http.MethodPost, a.server.URL+"/auth/jwt/login", strings.NewReader(form.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if forwardedFor != "" {
		req.Header.Set("X-Forwarded-For", forwardedFor)
	}

	resp, err := a.server.Client().Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	return resp.StatusCode
}

func TestRouter_AuthRateLimitIgnoresForwardedFor(t *testing.T) {
	app := newTestApp(t, func(d *Deps) {
		d.AuthLimiter = middlewares.NewRateLimiter(1, 1)
	})

	assert.Equal(t, http.StatusBadRequest, postLogin(t, app, "10.0.0.1"))
	for i := 2; i <= 20; i++ {
		status := postLogin(t, app, fmt.Sprintf("10.0.0.%d", i))
		assert.Equal(t, http.StatusTooManyRequests, status, "request %d", i)
	}
}

func TestRouter_AuthRateLimitWithTrustedProxy(t *testing.T) {
	app := newTestApp(t, func(d *Deps) {
		d.AuthLimiter = middlewares.NewRateLimiter(1, 1)
		d.TrustProxyHeaders = true
	})

	// Each forwarded client gets its own bucket
	assert.Equal(t, http.StatusBadRequest, postLogin(t, app, "10.0.0.1"))
	assert.Equal(t, http.StatusBadRequest, postLogin(t, app, "10.0.0.2"))
	assert.Equal(t, http.StatusTooManyRequests, postLogin(t, app, "10.0.0.1"))
}

func TestRouter_TrustedHosts(t *testing.T) {
	app := newTestApp(t, func(d *Deps) {
		d.AllowedHosts = []string{"localhost", "127.0.0.1"}
	})

	status, body := app.do(t, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"message":"Hello World"}`, string(body))

	req, err := http.NewRequest(http.MethodGet, app.server.URL+"/", nil)
	require.NoError(t, err)
	req.Host = "evil.example"
	resp, err := app.server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var got map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid host header", got["detail"])
}
