package server_test

import (
	"bytes"
	"errors"
	"net/http"
	"testing"

	"github.com/kode4food/banquet/internal/assert"
	"github.com/kode4food/banquet/pkg/api"
)

func TestInvokeTool(t *testing.T) {
	as := assert.New(t)
	ts, _, env := newTestServer(t)
	env.Mock.Respond(api.CapabilitySearchWeb, api.Args{
		api.ArgContent: "Stuffed Peppers with quinoa",
	})

	var res api.CapabilityResult
	resp := postJSON(as, ts.URL+"/tools/search_web",
		api.CapabilityRequest{
			Arguments: api.Args{api.ArgQuery: "vegan mains"},
			Metadata:  api.Metadata{api.MetaRunID: "remote-run"},
		}, &res)
	as.Equal(http.StatusOK, resp.StatusCode)
	as.True(res.Success)
	as.Empty(res.Error)
	as.Equal("Stuffed Peppers with quinoa",
		res.Outputs.GetString(api.ArgContent, ""))

	inv, ok := env.Mock.LastInvocation(api.CapabilitySearchWeb)
	as.Require.True(ok)
	as.Equal("vegan mains", inv.Args.GetString(api.ArgQuery, ""))
	as.Equal("remote-run", inv.Meta[api.MetaRunID])
}

func TestInvokeToolFailureTravelsInBand(t *testing.T) {
	as := assert.New(t)
	ts, _, env := newTestServer(t)
	env.Mock.RespondError(api.CapabilityMatchChef,
		errors.New("chef directory offline"))

	var res api.CapabilityResult
	resp := postJSON(as, ts.URL+"/tools/match_chef",
		api.CapabilityRequest{
			Arguments: api.Args{api.ArgQuery: "pastry"},
		}, &res)
	as.Equal(http.StatusOK, resp.StatusCode)
	as.False(res.Success)
	as.Contains(res.Error, "chef directory offline")
}

func TestInvokeToolUnbound(t *testing.T) {
	as := assert.New(t)
	ts, _, _ := newTestServer(t)

	var errResp api.ErrorResponse
	resp := postJSON(as, ts.URL+"/tools/carve_ice_sculpture",
		api.CapabilityRequest{}, &errResp)
	as.Equal(http.StatusNotFound, resp.StatusCode)
	as.Contains(errResp.Error, "capability not bound")
}

func TestInvokeToolBadJSON(t *testing.T) {
	as := assert.New(t)
	ts, _, _ := newTestServer(t)

	resp, err := http.Post(ts.URL+"/tools/search_web",
		"application/json", bytes.NewReader([]byte("[[")))
	as.Require.NoError(err)

	var errResp api.ErrorResponse
	decodeBody(as, resp, &errResp)
	as.Equal(http.StatusBadRequest, resp.StatusCode)
	as.Contains(errResp.Error, "invalid JSON")
}
