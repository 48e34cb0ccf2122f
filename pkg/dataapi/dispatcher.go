package dataapi

import (
	"context"
	"fmt"
	"net/http"
	"sort"

	"github.com/docuflow/dataapi/pkg/observability/logger"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
)

// Config holds the static connection parameters shared by every dispatch
// made through one Dispatcher. It is never mutated after creation.
type Config struct {
	// BaseURL is the data API root; endpoint paths are appended verbatim.
	BaseURL string
	// DataSource names the cluster the API routes operations to.
	DataSource string
	// Database names the target database.
	Database string
	// APIKey is sent on every request in the api-key header.
	APIKey string
}

// Dispatcher validates a Request, serializes it, performs one HTTP POST and
// returns the parsed JSON response. It holds no per-call state; concurrent
// dispatches through the same instance are independent.
//
// The dispatcher applies no timeout of its own. Callers wanting one pass a
// context with a deadline or wrap the call with resilience.WithTimeout.
type Dispatcher[E ~string] struct {
	cfg       Config
	transport Transport
	logger    logger.Logger
}

// Option configures a Dispatcher at creation time.
type Option[E ~string] func(*Dispatcher[E])

// WithTransport replaces the default net/http transport. Tests inject fakes
// through this.
func WithTransport[E ~string](t Transport) Option[E] {
	return func(d *Dispatcher[E]) {
		if t != nil {
			d.transport = t
		}
	}
}

// WithLogger attaches a structured logger. Dispatches log at debug level.
func WithLogger[E ~string](log logger.Logger) Option[E] {
	return func(d *Dispatcher[E]) {
		if log != nil {
			d.logger = log
		}
	}
}

// NewDispatcher creates a dispatcher bound to cfg. All four connection
// parameters are required.
func NewDispatcher[E ~string](cfg Config, opts ...Option[E]) (*Dispatcher[E], error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("data api base URL is required")
	}
	if cfg.DataSource == "" {
		return nil, fmt.Errorf("data api data source is required")
	}
	if cfg.Database == "" {
		return nil, fmt.Errorf("data api database is required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("data api key is required")
	}

	d := &Dispatcher[E]{
		cfg:       cfg,
		transport: NewHTTPTransport(nil),
		logger:    logger.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Dispatch validates req, issues exactly one POST and returns the parsed
// JSON response.
//
// Preconditions are checked in a fixed order, first failure wins: the
// endpoint must be set, then the effective query must be non-empty. Either
// violation returns a MissingParameterError before any network activity.
//
// A transport-level failure returns a RequestError carrying the endpoint,
// the effective query and the underlying error. A response of any HTTP
// status whose body parses as JSON is returned as a success value; callers
// needing strict status handling inspect the returned document themselves.
func (d *Dispatcher[E]) Dispatch(ctx context.Context, req *Request[E]) (map[string]interface{}, error) {
	resp, err := d.dispatch(ctx, req)
	if err != nil {
		return nil, err
	}
	var out map[string]interface{}
	if err := resp.JSON(&out); err != nil {
		return nil, fmt.Errorf("decode response body: %w", err)
	}
	return out, nil
}

// DispatchInto dispatches req through d and decodes the JSON response into a
// value of type T. Decoding is plain JSON field matching; no schema check is
// performed.
func DispatchInto[T any, E ~string](ctx context.Context, d *Dispatcher[E], req *Request[E]) (T, error) {
	var out T
	resp, err := d.dispatch(ctx, req)
	if err != nil {
		return out, err
	}
	if err := resp.JSON(&out); err != nil {
		return out, fmt.Errorf("decode response body: %w", err)
	}
	return out, nil
}

func (d *Dispatcher[E]) dispatch(ctx context.Context, req *Request[E]) (*Response, error) {
	if req == nil || req.Endpoint() == "" {
		return nil, &MissingParameterError{Parameter: ParamEndpoint}
	}
	effective := req.EffectiveQuery()
	if len(effective) == 0 {
		return nil, &MissingParameterError{Parameter: ParamQuery}
	}

	endpoint := string(req.Endpoint())
	url := d.cfg.BaseURL + endpoint
	body, err := encodeBody(d.cfg, effective)
	if err != nil {
		return nil, fmt.Errorf("encode request body: %w", err)
	}

	headers := map[string]string{
		"Content-Type": "application/json",
		"api-key":      d.cfg.APIKey,
	}
	for k, v := range req.Headers() {
		headers[k] = v
	}

	requestID := uuid.NewString()
	log := d.logger.With("request_id", requestID, "endpoint", endpoint)
	log.Debug("dispatching data api request", "url", url)

	resp, err := d.transport.Do(ctx, url, RequestOptions{
		Method:  http.MethodPost,
		Headers: headers,
		Body:    body,
	})
	if err != nil {
		log.Debug("data api request failed", "error", err)
		return nil, &RequestError{Endpoint: endpoint, Query: effective, Err: err}
	}

	log.Debug("data api request completed", "status", resp.StatusCode)
	return resp, nil
}

// encodeBody serializes {dataSource, database} overlaid with the effective
// query as relaxed extended JSON. The injected fields are skipped when the
// query carries a same-named key, so query values win on collision. Query
// keys are emitted in sorted order to keep the wire body deterministic.
func encodeBody(cfg Config, query Query) ([]byte, error) {
	doc := bson.D{}
	if _, ok := query["dataSource"]; !ok {
		doc = append(doc, bson.E{Key: "dataSource", Value: cfg.DataSource})
	}
	if _, ok := query["database"]; !ok {
		doc = append(doc, bson.E{Key: "database", Value: cfg.Database})
	}

	keys := make([]string, 0, len(query))
	for k := range query {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		doc = append(doc, bson.E{Key: k, Value: query[k]})
	}

	return bson.MarshalExtJSON(doc, false, false)
}
