package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/clipsum/backend/internal/api"
	"github.com/clipsum/backend/internal/auth"
	"github.com/clipsum/backend/internal/testutil"
	"github.com/clipsum/backend/internal/users"
	"github.com/clipsum/backend/internal/videos"
	"github.com/clipsum/backend/pkg/util"
)

// apiEnvelope mirrors the response envelope with the payload left raw so each
// test can decode it into the shape it expects.
type apiEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   struct {
		Message string            `json:"message"`
		Code    string            `json:"code"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

type apiTest struct {
	*testutil.TestSetup
	Router http.Handler
}

func setupAPI(t *testing.T) *apiTest {
	t.Helper()

	ts := testutil.NewTestContext(t)
	t.Cleanup(ts.Cleanup)

	logger := util.NewLogger("test")
	router := api.NewRouter(api.RouterConfig{
		DB:           ts.DB,
		Logger:       logger,
		JWTService:   ts.JWTService,
		AuthService:  auth.NewService(ts.DB, ts.JWTService, ts.Mailer, 10*time.Minute),
		UserService:  users.NewService(ts.DB),
		VideoService: videos.NewService(ts.DB, ts.Store, logger),
	})

	return &apiTest{TestSetup: ts, Router: router}
}

func (a *apiTest) do(t *testing.T, req *http.Request) (*httptest.ResponseRecorder, apiEnvelope) {
	t.Helper()

	rr := httptest.NewRecorder()
	a.Router.ServeHTTP(rr, req)

	var env apiEnvelope
	if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
		t.Fatalf("response is not an envelope: %v. Body: %s", err, rr.Body.String())
	}
	return rr, env
}
