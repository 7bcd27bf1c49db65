package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olehluchkiv/javadeps/internal/analysis"
	"github.com/olehluchkiv/javadeps/internal/diagram"
	"github.com/olehluchkiv/javadeps/internal/graph"
	"github.com/olehluchkiv/javadeps/internal/logging"
	"github.com/olehluchkiv/javadeps/internal/model"
)

func sampleResult() *analysis.Result {
	g := graph.New()
	g.Insert("shop.Order", "shop.Customer")
	g.Insert("shop.Order", "java.util.List")
	g.Insert("shop.Invoice", "shop.Order")

	return &analysis.Result{
		Root:  "/src/shop",
		Units: 3,
		Graph: g,
		Types: []model.TypeDecl{
			{Name: "Order", Package: "shop", Identity: "shop.Order", Kind: model.KindClass,
				Modifiers: model.Modifiers{"public"}, Line: 3, File: "shop/Order.java",
				Methods: []model.Method{{Name: "total", Return: model.PrimitiveRef("int"), Modifiers: model.Modifiers{"public"}, Line: 5}}},
			{Name: "Customer", Package: "shop", Identity: "shop.Customer", Kind: model.KindInterface,
				Line: 1, File: "shop/Customer.java"},
			{Name: "Invoice", Package: "shop", Identity: "shop.Invoice", Kind: model.KindRecord,
				Line: 1, File: "shop/Invoice.java"},
		},
	}
}

func newTestServer(t *testing.T, opts Options) *httptest.Server {
	t.Helper()
	v, err := New(sampleResult(), opts, logging.Discard())
	require.NoError(t, err)
	srv := httptest.NewServer(v.Handler())
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, url string) (int, string, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, resp.Header.Get("Content-Type"), string(body)
}

func TestIndex(t *testing.T) {
	srv := newTestServer(t, DefaultOptions())

	status, ctype, body := get(t, srv.URL+"/")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "text/html; charset=utf-8", ctype)
	assert.Contains(t, body, "<title>javadeps: Type Dependencies</title>")
	assert.Contains(t, body, "3 types, 3 dependencies")
	assert.Contains(t, body, "classDiagram")
	assert.Contains(t, body, "nav hidden", "a single slide hides navigation")
	assert.Contains(t, body, `"Full Diagram"`)
}

func TestIndex_Slides(t *testing.T) {
	opts := DefaultOptions()
	opts.Slides.Threshold = 2
	srv := newTestServer(t, opts)

	_, _, body := get(t, srv.URL+"/")
	assert.NotContains(t, body, "nav hidden")
	assert.Contains(t, body, "Package Map")

	status, _, mmd := get(t, srv.URL+"/graph.mmd?slide=0")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, mmd, "flowchart LR")
}

func TestUnknownPath(t *testing.T) {
	srv := newTestServer(t, DefaultOptions())
	status, _, _ := get(t, srv.URL+"/nope")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestMermaid(t *testing.T) {
	srv := newTestServer(t, DefaultOptions())

	status, ctype, body := get(t, srv.URL+"/graph.mmd")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "text/plain; charset=utf-8", ctype)
	assert.Equal(t, diagram.GenerateMermaid(sampleResult().Types, sampleResult().Graph, diagram.DefaultDiagramOptions()), body)
}

func TestMermaid_Focus(t *testing.T) {
	srv := newTestServer(t, DefaultOptions())

	_, _, body := get(t, srv.URL+"/graph.mmd?focus=shop.Customer")
	assert.Contains(t, body, diagram.NodeID("shop.Order")+" --> "+diagram.NodeID("shop.Customer"))
	assert.NotContains(t, body, diagram.NodeID("shop.Invoice"))
}

func TestMermaid_BadSlide(t *testing.T) {
	srv := newTestServer(t, DefaultOptions())
	for _, q := range []string{"x", "-1", "7"} {
		status, _, _ := get(t, srv.URL+"/graph.mmd?slide="+q)
		assert.Equal(t, http.StatusBadRequest, status, q)
	}
}

func TestDOT(t *testing.T) {
	srv := newTestServer(t, DefaultOptions())

	status, _, body := get(t, srv.URL+"/graph.dot")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, diagram.GenerateDOT(sampleResult().Graph, diagram.DefaultDOTOptions()), body)
}

func TestReport(t *testing.T) {
	srv := newTestServer(t, DefaultOptions())

	_, _, body := get(t, srv.URL+"/report.txt")
	assert.Contains(t, body, "Parsed 3 compilation units.\n")
	assert.Contains(t, body, "Class Name: Order\n")
	assert.Contains(t, body, "  Is Interface: true\n")
}

func TestTypesJSON(t *testing.T) {
	srv := newTestServer(t, DefaultOptions())

	status, ctype, body := get(t, srv.URL+"/api/types")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "application/json", ctype)

	var data diagram.InteractiveData
	require.NoError(t, json.Unmarshal([]byte(body), &data))
	assert.Equal(t, "/src/shop", data.RepoAddress)
	assert.Len(t, data.Types, 3)
	assert.Len(t, data.Edges, 3)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a.B", "c.D"}, splitList(" a.B, ,c.D "))
	assert.Nil(t, splitList(""))
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	v, err := New(sampleResult(), DefaultOptions(), logging.Discard())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- v.Serve(ctx, 0, false) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
