package tools_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/kode4food/banquet/internal/assert"
	"github.com/kode4food/banquet/internal/catalog"
	"github.com/kode4food/banquet/internal/report"
	"github.com/kode4food/banquet/internal/research"
	"github.com/kode4food/banquet/internal/segment"
	"github.com/kode4food/banquet/internal/tools"
	"github.com/kode4food/banquet/pkg/api"
)

func testDeps(t *testing.T) *tools.Dependencies {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	store := catalog.NewStore(rdb, "banquet_test")

	srv := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = fmt.Fprint(w, `{
				"choices": [{"message": {"content": "canned completion"}}]
			}`)
		},
	))
	t.Cleanup(srv.Close)
	rc := research.NewClient(srv.URL, "", "test-model", time.Second)

	writer, err := report.NewWriter(
		context.Background(), "mem://", "catering_result.txt",
	)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = writer.Close() })

	return &tools.Dependencies{
		Store:    store,
		Research: rc,
		Writer:   writer,
	}
}

func TestBindingsComplete(t *testing.T) {
	as := assert.New(t)
	b := tools.NewBindings(testDeps(t))

	names := []api.Capability{
		api.CapabilityAnalyzeDiet,
		api.CapabilityFindRecipeAndChef,
		api.CapabilityListSpecializations,
		api.CapabilitySearchWeb,
		api.CapabilityFetch,
		api.CapabilityReviewContent,
		api.CapabilityMatchChef,
		api.CapabilityWriteFile,
		api.CapabilityFormatReport,
	}
	as.Len(b.Names(), len(names))
	for _, name := range names {
		cl, err := b.Resolve(name)
		as.NoError(err)
		as.NotNil(cl)
	}
}

func TestAnalyzeDiet(t *testing.T) {
	as := assert.New(t)
	b := tools.NewBindings(testDeps(t))
	cl, err := b.Resolve(api.CapabilityAnalyzeDiet)
	as.Require.NoError(err)

	guests := []api.GuestRecord{
		{Name: "Dana", Vegan: true},
		{Name: "Ash", Vegan: true, Allergens: []string{"nuts"}},
		{Name: "Kim", Vegan: true},
	}
	out, err := cl.Invoke(
		context.Background(), api.Args{api.ArgGuests: guests}, nil,
	)
	as.Require.NoError(err)

	res, ok := out[api.ArgAnalysis].(*api.AnalysisResult)
	as.Require.True(ok)
	as.AnalysisCovers(res, len(guests))
	as.Equal([]api.Restriction{api.Vegan}, res.Universal.Dietary)
}

func TestAnalyzeDietDecoded(t *testing.T) {
	as := assert.New(t)
	b := tools.NewBindings(testDeps(t))
	cl, err := b.Resolve(api.CapabilityAnalyzeDiet)
	as.Require.NoError(err)

	// Shape the arguments the way they arrive over the wire
	args := api.Args{
		api.ArgGuests: []any{
			map[string]any{"name": "Dana", "is_gluten_free": true},
			map[string]any{"name": "Ash", "is_gluten_free": true},
		},
	}
	out, err := cl.Invoke(context.Background(), args, nil)
	as.Require.NoError(err)

	res, ok := out[api.ArgAnalysis].(*api.AnalysisResult)
	as.Require.True(ok)
	as.AnalysisCovers(res, 2)
	as.Equal([]api.Restriction{api.GlutenFree}, res.Universal.Dietary)
}

func TestAnalyzeDietMissingGuests(t *testing.T) {
	as := assert.New(t)
	b := tools.NewBindings(testDeps(t))
	cl, err := b.Resolve(api.CapabilityAnalyzeDiet)
	as.Require.NoError(err)

	_, err = cl.Invoke(context.Background(), api.Args{}, nil)
	as.ErrorIs(err, tools.ErrMissingGuests)
}

func TestAnalyzeDietEmptyParty(t *testing.T) {
	as := assert.New(t)
	b := tools.NewBindings(testDeps(t))
	cl, err := b.Resolve(api.CapabilityAnalyzeDiet)
	as.Require.NoError(err)

	args := api.Args{api.ArgGuests: []api.GuestRecord{}}
	_, err = cl.Invoke(context.Background(), args, nil)
	as.ErrorIs(err, segment.ErrNoGuests)
}

func TestBindingsServeCatalog(t *testing.T) {
	as := assert.New(t)
	deps := testDeps(t)
	as.Require.NoError(deps.Store.Seed(context.Background()))
	b := tools.NewBindings(deps)

	cl, err := b.Resolve(api.CapabilityListSpecializations)
	as.Require.NoError(err)
	out, err := cl.Invoke(context.Background(), api.Args{}, nil)
	as.Require.NoError(err)

	specs, ok := out.GetStrings(api.ArgSpecializations)
	as.True(ok)
	as.NotEmpty(specs)
}

func TestBindingsServeResearch(t *testing.T) {
	as := assert.New(t)
	b := tools.NewBindings(testDeps(t))

	cl, err := b.Resolve(api.CapabilitySearchWeb)
	as.Require.NoError(err)
	out, err := cl.Invoke(
		context.Background(),
		api.Args{api.ArgQuery: "vegan dinner for twelve"}, nil,
	)
	as.Require.NoError(err)
	as.Equal("canned completion", out.GetString(api.ArgContent, ""))
}
