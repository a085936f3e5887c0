package router_test

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	redislib "github.com/redis/go-redis/v9"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap/zaptest"

	apiHandler "github.com/fastygo/kanban/api/handler"
	"github.com/fastygo/kanban/internal/infrastructure/monitor"
	"github.com/fastygo/kanban/internal/middleware"
	"github.com/fastygo/kanban/internal/router"
	"github.com/fastygo/kanban/internal/testutil"
	"github.com/fastygo/kanban/pkg/httpcontext"
	redisRepo "github.com/fastygo/kanban/repository/redis"
	"github.com/fastygo/kanban/usecase"
	authUC "github.com/fastygo/kanban/usecase/auth"
	boardUC "github.com/fastygo/kanban/usecase/board"
	columnUC "github.com/fastygo/kanban/usecase/column"
	"github.com/fastygo/kanban/usecase/ledger"
	membershipUC "github.com/fastygo/kanban/usecase/membership"
	profileUC "github.com/fastygo/kanban/usecase/profile"
	taskUC "github.com/fastygo/kanban/usecase/task"
)

type healthyStatus struct{}

func (healthyStatus) GetStatus() monitor.Status {
	return monitor.Status{Driver: "sqlite", Database: true, Redis: true, LastCheck: time.Now()}
}

type envelope struct {
	Status string          `json:"status"`
	Code   string          `json:"code"`
	Data   json.RawMessage `json:"data"`
	Meta   struct {
		Count int `json:"count"`
	} `json:"meta"`
}

type api struct {
	t       *testing.T
	handler fasthttp.RequestHandler
}

func setupAPI(t *testing.T) *api {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redislib.NewClient(&redislib.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	logger := zaptest.NewLogger(t)
	store := testutil.NewStore(t)
	cache := redisRepo.NewBoardCache(client, time.Minute, logger)
	positions := ledger.New(logger)
	resolver := usecase.NewResolver(store)
	adapter := httpcontext.NewAdapter(5 * time.Second)

	auth := authUC.New(store, redisRepo.NewSessionRepository(client, time.Hour), authUC.TokenConfig{
		Secret: "router-test-secret",
		Issuer: "kanban",
		TTL:    time.Hour,
	}, logger)
	members := membershipUC.New(store, cache, logger)

	r := router.New(router.Handlers{
		Auth:    apiHandler.NewAuthHandler(auth, adapter, logger),
		Profile: apiHandler.NewProfileHandler(profileUC.New(store, cache, logger), adapter, logger),
		Board:   apiHandler.NewBoardHandler(boardUC.New(store, cache, logger), members, resolver, adapter, logger),
		Column:  apiHandler.NewColumnHandler(columnUC.New(store, positions, cache, logger), members, resolver, adapter, logger),
		Task:    apiHandler.NewTaskHandler(taskUC.New(store, positions, cache, logger), members, resolver, adapter, logger),
		Health:  apiHandler.NewHealthHandler(healthyStatus{}, adapter, logger),
	}, middleware.JWTAuth(auth, time.Second, logger))

	return &api{t: t, handler: r.Handler}
}

func (a *api) do(method, path, token string, body interface{}) (int, envelope) {
	a.t.Helper()

	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod(method)
	ctx.Request.SetRequestURI(path)
	if token != "" {
		ctx.Request.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			a.t.Fatalf("encode body: %v", err)
		}
		ctx.Request.SetBody(raw)
	}

	a.handler(ctx)

	var env envelope
	if len(ctx.Response.Body()) > 0 {
		if err := json.Unmarshal(ctx.Response.Body(), &env); err != nil {
			a.t.Fatalf("%s %s: decode response %q: %v", method, path, ctx.Response.Body(), err)
		}
	}
	return ctx.Response.StatusCode(), env
}

func (a *api) expect(want int, method, path, token string, body interface{}, out interface{}) {
	a.t.Helper()

	status, env := a.do(method, path, token, body)
	if status != want {
		a.t.Fatalf("%s %s: expected %d, got %d (%s)", method, path, want, status, env.Code)
	}
	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			a.t.Fatalf("%s %s: decode data: %v", method, path, err)
		}
	}
}

func (a *api) login(email string) string {
	a.t.Helper()

	a.expect(http.StatusCreated, "POST", "/api/v1/auth/register", "", map[string]string{
		"email": email, "name": email, "password": "correct-horse",
	}, nil)

	var token struct {
		Token string `json:"access_token"`
	}
	a.expect(http.StatusCreated, "POST", "/api/v1/auth/login", "", map[string]string{
		"email": email, "password": "correct-horse",
	}, &token)
	return token.Token
}

type taskBody struct {
	ID       string `json:"id"`
	Status   string `json:"status"`
	Position int    `json:"position"`
	ColumnID string `json:"column_id"`
}

func TestBoardWorkflow(t *testing.T) {
	a := setupAPI(t)

	a.expect(http.StatusOK, "GET", "/health", "", nil, nil)
	a.expect(http.StatusUnauthorized, "GET", "/api/v1/boards", "", nil, nil)
	a.expect(http.StatusUnauthorized, "GET", "/api/v1/boards", "forged", nil, nil)

	alice := a.login("alice@example.com")
	bob := a.login("bob@example.com")

	var created struct {
		Board struct {
			ID string `json:"id"`
		} `json:"board"`
		Membership struct {
			Role string `json:"role"`
		} `json:"membership"`
	}
	a.expect(http.StatusCreated, "POST", "/api/v1/boards", alice, map[string]string{"title": "Roadmap"}, &created)
	if created.Membership.Role != "OWNER" {
		t.Fatalf("expected OWNER membership, got %q", created.Membership.Role)
	}
	boardPath := "/api/v1/boards/" + created.Board.ID

	var todo, done struct {
		ID       string `json:"id"`
		Position int    `json:"position"`
	}
	a.expect(http.StatusCreated, "POST", boardPath+"/columns", alice, map[string]string{"title": "To Do"}, &todo)
	a.expect(http.StatusCreated, "POST", boardPath+"/columns", alice, map[string]string{"title": "Done"}, &done)
	if todo.Position != 0 || done.Position != 1 {
		t.Fatalf("expected columns at 0 and 1, got %d and %d", todo.Position, done.Position)
	}

	var task taskBody
	a.expect(http.StatusCreated, "POST", "/api/v1/tasks", alice, map[string]string{
		"board_id": created.Board.ID, "column_id": todo.ID, "title": "Ship it",
	}, &task)
	if task.Status != "TODO" || task.Position != 0 {
		t.Fatalf("unexpected new task %+v", task)
	}

	status, env := a.do("GET", boardPath+"/tasks", alice, nil)
	if status != http.StatusOK || env.Meta.Count != 1 {
		t.Fatalf("expected one listed task, got status %d count %d", status, env.Meta.Count)
	}

	taskPath := "/api/v1/tasks/" + task.ID
	a.expect(http.StatusOK, "PATCH", taskPath, alice, map[string]string{"column_id": done.ID}, &task)
	if task.Status != "DONE" || task.ColumnID != done.ID || task.Position != 0 {
		t.Fatalf("expected task derived to DONE in the Done column, got %+v", task)
	}
	a.expect(http.StatusBadRequest, "PATCH", taskPath, alice, map[string]string{"status": "TODO"}, nil)
	a.expect(http.StatusBadRequest, "PATCH", taskPath, alice, map[string]string{"status": "ARCHIVED"}, nil)

	t.Run("Membership", func(t *testing.T) {
		a.expect(http.StatusForbidden, "GET", boardPath, bob, nil, nil)
		a.expect(http.StatusForbidden, "PATCH", taskPath, bob, map[string]string{"title": "mine"}, nil)

		a.expect(http.StatusForbidden, "POST", boardPath+"/members", alice, map[string]string{
			"email": "bob@example.com", "role": "OWNER",
		}, nil)
		a.expect(http.StatusNotFound, "POST", boardPath+"/members", alice, map[string]string{
			"email": "nobody@example.com",
		}, nil)
		a.expect(http.StatusCreated, "POST", boardPath+"/members", alice, map[string]string{
			"email": "bob@example.com",
		}, nil)
		a.expect(http.StatusConflict, "POST", boardPath+"/members", alice, map[string]string{
			"email": "bob@example.com",
		}, nil)

		var view struct {
			Columns []json.RawMessage `json:"columns"`
			Tasks   []json.RawMessage `json:"tasks"`
			Members []json.RawMessage `json:"members"`
		}
		a.expect(http.StatusOK, "GET", boardPath, bob, nil, &view)
		if len(view.Columns) != 2 || len(view.Tasks) != 1 || len(view.Members) != 2 {
			t.Fatalf("unexpected board view: %d columns, %d tasks, %d members", len(view.Columns), len(view.Tasks), len(view.Members))
		}

		a.expect(http.StatusForbidden, "DELETE", "/api/v1/columns/"+todo.ID, bob, nil, nil)
		a.expect(http.StatusForbidden, "DELETE", taskPath, bob, nil, nil)
		a.expect(http.StatusForbidden, "DELETE", boardPath, bob, nil, nil)
	})

	t.Run("Positions", func(t *testing.T) {
		a.expect(http.StatusBadRequest, "PATCH", "/api/v1/columns/"+done.ID, alice, map[string]int{"position": 2}, nil)
		a.expect(http.StatusOK, "PATCH", "/api/v1/columns/"+done.ID, alice, map[string]int{"position": 0}, &done)
		if done.Position != 0 {
			t.Fatalf("expected Done column first, got %d", done.Position)
		}
		a.expect(http.StatusBadRequest, "POST", "/api/v1/tasks", alice, map[string]string{"title": "orphan"}, nil)
	})

	t.Run("Logout", func(t *testing.T) {
		a.expect(http.StatusNoContent, "DELETE", taskPath, alice, nil, nil)
		a.expect(http.StatusNotFound, "PATCH", taskPath, alice, map[string]string{"title": "gone"}, nil)
		a.expect(http.StatusNoContent, "POST", "/api/v1/auth/logout", alice, nil, nil)
		a.expect(http.StatusUnauthorized, "GET", "/api/v1/boards", alice, nil, nil)
	})
}

func TestProfile(t *testing.T) {
	a := setupAPI(t)
	token := a.login("carol@example.com")

	var profile struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	a.expect(http.StatusOK, "PUT", "/api/v1/profile", token, map[string]string{"name": "Carol"}, &profile)
	if profile.Name != "Carol" {
		t.Fatalf("expected updated name, got %q", profile.Name)
	}
	a.expect(http.StatusOK, "GET", "/api/v1/profile", token, nil, &profile)
	if profile.Email != "carol@example.com" || profile.Name != "Carol" {
		t.Fatalf("unexpected profile %+v", profile)
	}

	a.expect(http.StatusBadRequest, "POST", "/api/v1/auth/register", "", map[string]string{
		"email": "dave@example.com", "name": "Dave", "password": "short",
	}, nil)
	a.expect(http.StatusConflict, "POST", "/api/v1/auth/register", "", map[string]string{
		"email": "carol@example.com", "name": "Carol", "password": "correct-horse",
	}, nil)
	a.expect(http.StatusUnauthorized, "POST", "/api/v1/auth/login", "", map[string]string{
		"email": "carol@example.com", "password": "wrong-horse",
	}, nil)

	var refreshed struct {
		Token string `json:"access_token"`
	}
	a.expect(http.StatusOK, "POST", "/api/v1/auth/refresh", token, nil, &refreshed)
	if refreshed.Token == "" {
		t.Fatal("expected a new token")
	}
	a.expect(http.StatusOK, "GET", "/api/v1/profile", refreshed.Token, nil, nil)
}
