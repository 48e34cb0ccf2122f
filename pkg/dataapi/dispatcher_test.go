package dataapi

import (
	"context"
	"errors"
	"net/http"
	"reflect"
	"testing"
)

type fakeTransport struct {
	lastURL  string
	lastOpts RequestOptions
	resp     *Response
	err      error
	calls    int
}

func (f *fakeTransport) Do(_ context.Context, url string, opts RequestOptions) (*Response, error) {
	f.calls++
	f.lastURL = url
	f.lastOpts = opts
	if f.err != nil {
		return nil, f.err
	}
	if f.resp != nil {
		return f.resp, nil
	}
	return &Response{StatusCode: http.StatusOK, Body: []byte(`{}`)}, nil
}

func testConfig() Config {
	return Config{
		BaseURL:    "https://data.example.com/api/v1/action",
		DataSource: "test-source",
		Database:   "test-db",
		APIKey:     "secret-key",
	}
}

func newTestDispatcher(t *testing.T, ft *fakeTransport) *Dispatcher[Endpoint] {
	t.Helper()
	d, err := NewDispatcher(testConfig(), WithTransport[Endpoint](ft))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return d
}

func TestNewDispatcher_Validation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing base URL", func(c *Config) { c.BaseURL = "" }},
		{"missing data source", func(c *Config) { c.DataSource = "" }},
		{"missing database", func(c *Config) { c.Database = "" }},
		{"missing api key", func(c *Config) { c.APIKey = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testConfig()
			tc.mutate(&cfg)
			if _, err := NewDispatcher[Endpoint](cfg); err == nil {
				t.Fatal("expected config validation error")
			}
		})
	}
}

func TestDispatch_MissingEndpoint(t *testing.T) {
	ft := &fakeTransport{}
	d := newTestDispatcher(t, ft)

	req := ForCollection("books")
	_, err := d.Dispatch(context.Background(), req)

	var missing *MissingParameterError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingParameterError, got %v", err)
	}
	if missing.Parameter != ParamEndpoint {
		t.Fatalf("parameter = %q, want %q", missing.Parameter, ParamEndpoint)
	}
	if ft.calls != 0 {
		t.Fatalf("transport must not be called, got %d calls", ft.calls)
	}
}

func TestDispatch_MissingQuery(t *testing.T) {
	ft := &fakeTransport{}
	d := newTestDispatcher(t, ft)

	req := New().SetEndpoint(EndpointFind)
	_, err := d.Dispatch(context.Background(), req)

	var missing *MissingParameterError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingParameterError, got %v", err)
	}
	if missing.Parameter != ParamQuery {
		t.Fatalf("parameter = %q, want %q", missing.Parameter, ParamQuery)
	}
	if ft.calls != 0 {
		t.Fatalf("transport must not be called, got %d calls", ft.calls)
	}
}

// Endpoint problems are diagnosed before query problems when both are
// missing at once.
func TestDispatch_EndpointCheckedBeforeQuery(t *testing.T) {
	d := newTestDispatcher(t, &fakeTransport{})

	_, err := d.Dispatch(context.Background(), New())

	var missing *MissingParameterError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingParameterError, got %v", err)
	}
	if missing.Parameter != ParamEndpoint {
		t.Fatalf("parameter = %q, want %q", missing.Parameter, ParamEndpoint)
	}
}

func TestDispatch_BuildsExactBody(t *testing.T) {
	ft := &fakeTransport{}
	d := newTestDispatcher(t, ft)

	req := New().SetEndpoint(EndpointFind).SetQuery(Query{"collection": "books"})
	if _, err := d.Dispatch(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := `{"dataSource":"test-source","database":"test-db","collection":"books"}`
	if got := string(ft.lastOpts.Body); got != want {
		t.Fatalf("body = %s, want %s", got, want)
	}
}

func TestDispatch_QueryOverridesInjectedFields(t *testing.T) {
	ft := &fakeTransport{}
	d := newTestDispatcher(t, ft)

	req := New().SetEndpoint(EndpointFind).SetQuery(Query{
		"collection": "books",
		"database":   "override-db",
	})
	if _, err := d.Dispatch(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var body map[string]interface{}
	if err := (&Response{Body: ft.lastOpts.Body}).JSON(&body); err != nil {
		t.Fatalf("body is not valid JSON: %v", err)
	}
	if body["database"] != "override-db" {
		t.Fatalf("database = %v, want override-db", body["database"])
	}
	if body["dataSource"] != "test-source" {
		t.Fatalf("dataSource = %v, want test-source", body["dataSource"])
	}
}

func TestDispatch_BuildsURLAndMethod(t *testing.T) {
	ft := &fakeTransport{}
	d := newTestDispatcher(t, ft)

	req := ForCollection("books").SetEndpoint(EndpointInsertOne).
		SetQuery(Query{"document": map[string]interface{}{"title": "dune"}})
	if _, err := d.Dispatch(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if want := testConfig().BaseURL + "/insertOne"; ft.lastURL != want {
		t.Fatalf("url = %s, want %s", ft.lastURL, want)
	}
	if ft.lastOpts.Method != http.MethodPost {
		t.Fatalf("method = %s, want POST", ft.lastOpts.Method)
	}
	if ft.calls != 1 {
		t.Fatalf("transport calls = %d, want exactly 1", ft.calls)
	}
}

func TestDispatch_DefaultHeaders(t *testing.T) {
	ft := &fakeTransport{}
	d := newTestDispatcher(t, ft)

	req := ForCollection("books").SetEndpoint(EndpointFind)
	if _, err := d.Dispatch(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := ft.lastOpts.Headers["Content-Type"]; got != "application/json" {
		t.Fatalf("Content-Type = %q", got)
	}
	if got := ft.lastOpts.Headers["api-key"]; got != "secret-key" {
		t.Fatalf("api-key = %q", got)
	}
}

func TestDispatch_CustomHeadersMergeAndOverride(t *testing.T) {
	ft := &fakeTransport{}
	d := newTestDispatcher(t, ft)

	req := ForCollection("books").SetEndpoint(EndpointFind).
		SetHeaders(map[string]string{
			"X-Custom":     "v",
			"Content-Type": "application/ejson",
		})
	if _, err := d.Dispatch(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	headers := ft.lastOpts.Headers
	if headers["X-Custom"] != "v" {
		t.Fatalf("X-Custom = %q, want v", headers["X-Custom"])
	}
	if headers["Content-Type"] != "application/ejson" {
		t.Fatalf("Content-Type = %q, custom header must override default", headers["Content-Type"])
	}
	if headers["api-key"] != "secret-key" {
		t.Fatalf("api-key = %q, default must survive merge", headers["api-key"])
	}
}

func TestDispatch_TransportFailure(t *testing.T) {
	cause := errors.New("connection refused")
	ft := &fakeTransport{err: cause}
	d := newTestDispatcher(t, ft)

	req := ForCollection("books").SetEndpoint(EndpointFind)
	_, err := d.Dispatch(context.Background(), req)

	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("expected RequestError, got %v", err)
	}
	if reqErr.Endpoint != "/find" {
		t.Fatalf("endpoint = %q, want /find", reqErr.Endpoint)
	}
	if !reflect.DeepEqual(reqErr.Query, Query{"collection": "books"}) {
		t.Fatalf("query = %v, want the effective query sent", reqErr.Query)
	}
	if !errors.Is(err, cause) {
		t.Fatal("expected underlying cause to survive Unwrap")
	}
	if reqErr.Error() == "" {
		t.Fatal("expected non-empty composed message")
	}
}

func TestDispatch_ReturnsParsedJSON(t *testing.T) {
	ft := &fakeTransport{resp: &Response{
		StatusCode: http.StatusOK,
		Body:       []byte(`{"documents":[{"title":"dune"}]}`),
	}}
	d := newTestDispatcher(t, ft)

	req := ForCollection("books").SetEndpoint(EndpointFind)
	got, err := d.Dispatch(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := map[string]interface{}{
		"documents": []interface{}{map[string]interface{}{"title": "dune"}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("result = %v, want %v", got, want)
	}
}

// A non-2xx response with a JSON body is returned as a success value, not
// classified as an error. Callers add status handling themselves.
func TestDispatch_NonSuccessStatusPassesThrough(t *testing.T) {
	ft := &fakeTransport{resp: &Response{
		StatusCode: http.StatusNotFound,
		Body:       []byte(`{"error":"collection not found"}`),
	}}
	d := newTestDispatcher(t, ft)

	req := ForCollection("missing").SetEndpoint(EndpointFindOne)
	got, err := d.Dispatch(context.Background(), req)
	if err != nil {
		t.Fatalf("expected pass-through, got error: %v", err)
	}
	if got["error"] != "collection not found" {
		t.Fatalf("result = %v", got)
	}
}

func TestDispatch_MalformedResponseBody(t *testing.T) {
	ft := &fakeTransport{resp: &Response{
		StatusCode: http.StatusOK,
		Body:       []byte(`<html>gateway error</html>`),
	}}
	d := newTestDispatcher(t, ft)

	req := ForCollection("books").SetEndpoint(EndpointFind)
	_, err := d.Dispatch(context.Background(), req)
	if err == nil {
		t.Fatal("expected decode error")
	}

	var missing *MissingParameterError
	var reqErr *RequestError
	if errors.As(err, &missing) || errors.As(err, &reqErr) {
		t.Fatalf("decode failure must stay unclassified, got %T", err)
	}
}

func TestDispatchInto_DecodesTypedResult(t *testing.T) {
	ft := &fakeTransport{resp: &Response{
		StatusCode: http.StatusOK,
		Body:       []byte(`{"insertedId":"651f2e4a"}`),
	}}
	d := newTestDispatcher(t, ft)

	req := ForCollection("books").SetEndpoint(EndpointInsertOne).
		SetQuery(Query{"document": map[string]interface{}{"title": "dune"}})
	got, err := DispatchInto[InsertOneResult](context.Background(), d, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.InsertedID != "651f2e4a" {
		t.Fatalf("insertedId = %v", got.InsertedID)
	}
}

func TestDispatch_ExtendedEndpointType(t *testing.T) {
	type opsEndpoint string
	const epAggregate opsEndpoint = "/aggregate"

	ft := &fakeTransport{}
	d, err := NewDispatcher(testConfig(), WithTransport[opsEndpoint](ft))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	req := NewRequest[opsEndpoint]().SetEndpoint(epAggregate).
		SetQuery(Query{"collection": "books", "pipeline": []interface{}{}})
	if _, err := d.Dispatch(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := testConfig().BaseURL + "/aggregate"; ft.lastURL != want {
		t.Fatalf("url = %s, want %s", ft.lastURL, want)
	}
}
