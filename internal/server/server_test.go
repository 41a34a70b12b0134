package server_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/kode4food/banquet"
	"github.com/kode4food/banquet/internal/assert"
	"github.com/kode4food/banquet/internal/assert/helpers"
	"github.com/kode4food/banquet/internal/assert/wait"
	"github.com/kode4food/banquet/internal/engine"
	"github.com/kode4food/banquet/internal/server"
	"github.com/kode4food/banquet/pkg/api"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func newTestServer(
	t *testing.T,
) (*httptest.Server, *server.Server, *helpers.TestEnv) {
	t.Helper()

	env := helpers.NewTestEnv(t)
	srv := server.NewServer(
		env.Engine,
		env.Mock.Bindings(engine.RequiredCapabilities()...),
	)
	ts := httptest.NewServer(srv.SetupRoutes())
	t.Cleanup(func() {
		ts.Close()
		env.Cleanup()
	})
	return ts, srv, env
}

func postJSON(
	as *assert.Wrapper, url string, body any, out any,
) *http.Response {
	as.Helper()
	data, err := json.Marshal(body)
	as.Require.NoError(err)

	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	as.Require.NoError(err)
	decodeBody(as, resp, out)
	return resp
}

func getJSON(as *assert.Wrapper, url string, out any) *http.Response {
	as.Helper()
	resp, err := http.Get(url)
	as.Require.NoError(err)
	decodeBody(as, resp, out)
	return resp
}

func decodeBody(as *assert.Wrapper, resp *http.Response, out any) {
	as.Helper()
	defer func() { _ = resp.Body.Close() }()
	data, err := io.ReadAll(resp.Body)
	as.Require.NoError(err)
	if out != nil {
		as.Require.NoError(json.Unmarshal(data, out))
	}
}

func TestHealthEndpoint(t *testing.T) {
	as := assert.New(t)
	ts, _, _ := newTestServer(t)

	var health api.HealthResponse
	resp := getJSON(as, ts.URL+"/health", &health)
	as.Equal(http.StatusOK, resp.StatusCode)
	as.Equal(banquet.Name, health.Service)
	as.Equal(banquet.Version, health.Version)
	as.Equal("healthy", health.Status)
	as.Equal(0, health.ActiveRuns)
}

func TestStartRunRejectsBadRequests(t *testing.T) {
	as := assert.New(t)
	ts, _, _ := newTestServer(t)

	var errResp api.ErrorResponse
	resp := postJSON(as, ts.URL+"/api/runs",
		api.CreateRunRequest{}, &errResp)
	as.Equal(http.StatusBadRequest, resp.StatusCode)
	as.Contains(errResp.Error, "at least one guest")

	resp, err := http.Post(ts.URL+"/api/runs", "application/json",
		bytes.NewReader([]byte("{not json")))
	as.Require.NoError(err)
	decodeBody(as, resp, &errResp)
	as.Equal(http.StatusBadRequest, resp.StatusCode)
	as.Contains(errResp.Error, "invalid JSON")
}

func TestStartRunAndGetState(t *testing.T) {
	as := assert.New(t)
	ts, _, env := newTestServer(t)
	scriptCatalogRun(env.Mock)

	cons := env.Engine.NewConsumer()
	defer cons.Close()

	var started api.RunStartedResponse
	resp := postJSON(as, ts.URL+"/api/runs", api.CreateRunRequest{
		Guests: helpers.NewVeganParty(2),
	}, &started)
	as.Equal(http.StatusCreated, resp.StatusCode)
	as.NotEmpty(started.RunID)
	as.Equal(api.RunActive, started.Status)

	wait.On(t, cons).ForEvent(wait.RunCompleted(started.RunID))

	var st api.RunState
	resp = getJSON(as,
		ts.URL+"/api/runs/"+string(started.RunID), &st)
	as.Equal(http.StatusOK, resp.StatusCode)
	as.RunStatus(&st, api.RunCompleted)
	as.Equal("PLAN", st.Report)
	as.Len(st.Branches, 1)
}

func TestGetRunNotFound(t *testing.T) {
	as := assert.New(t)
	ts, _, _ := newTestServer(t)

	var errResp api.ErrorResponse
	resp := getJSON(as, ts.URL+"/api/runs/no-such-run", &errResp)
	as.Equal(http.StatusNotFound, resp.StatusCode)
	as.Contains(errResp.Error, "run not found")
	as.Equal(http.StatusNotFound, errResp.Status)
}

func TestListRuns(t *testing.T) {
	as := assert.New(t)
	ts, _, env := newTestServer(t)
	scriptCatalogRun(env.Mock)

	var runs api.RunsListResponse
	resp := getJSON(as, ts.URL+"/api/runs", &runs)
	as.Equal(http.StatusOK, resp.StatusCode)
	as.Equal(0, runs.Count)

	cons := env.Engine.NewConsumer()
	defer cons.Close()
	id, err := env.Engine.StartRun(helpers.NewVeganParty(2), 0)
	as.Require.NoError(err)
	wait.On(t, cons).ForEvent(wait.RunCompleted(id))

	resp = getJSON(as, ts.URL+"/api/runs", &runs)
	as.Equal(http.StatusOK, resp.StatusCode)
	as.Equal(1, runs.Count)
	as.Equal(id, runs.Runs[0].ID)
}

func TestListSteps(t *testing.T) {
	as := assert.New(t)
	ts, _, _ := newTestServer(t)

	var steps api.StepsListResponse
	resp := getJSON(as, ts.URL+"/api/steps", &steps)
	as.Equal(http.StatusOK, resp.StatusCode)
	as.Equal(7, steps.Count)
	as.Equal(api.StepID("intake"), steps.Steps[0].ID)
	for _, s := range steps.Steps {
		as.StepValid(s)
	}
}

func TestCORSHeaders(t *testing.T) {
	as := assert.New(t)
	ts, _, _ := newTestServer(t)

	req, err := http.NewRequest("OPTIONS", ts.URL+"/api/runs", nil)
	as.Require.NoError(err)
	resp, err := http.DefaultClient.Do(req)
	as.Require.NoError(err)
	defer func() { _ = resp.Body.Close() }()

	as.Equal(http.StatusOK, resp.StatusCode)
	as.Equal("*", resp.Header.Get("Access-Control-Allow-Origin"))
	as.Contains(resp.Header.Get("Access-Control-Allow-Methods"), "POST")
}

// scriptCatalogRun scripts a party whose single requirement resolves
// from the recipe catalog
func scriptCatalogRun(mock *helpers.MockBindings) {
	mock.Respond(api.CapabilityAnalyzeDiet, api.Args{
		api.ArgAnalysis: helpers.NewAnalysis(2,
			helpers.NewRequirement(api.Vegan)),
	})
	mock.Respond(api.CapabilityFindRecipeAndChef, api.Args{
		api.ArgResult: "recipe: Chickpea Tagine\nchef: Sam",
	})
	mock.Respond(api.CapabilityFormatReport, api.Args{
		api.ArgReport: "PLAN",
	})
	mock.Respond(api.CapabilityWriteFile, api.Args{
		api.ArgConfirmation: "written",
	})
}
