package dataapi

// Query is a key-value mapping passed through verbatim to the data API.
// Values must be JSON-serializable; bson.M satisfies Query directly.
type Query map[string]interface{}

// Request describes one intended operation against the data API: which
// endpoint to address, reusable default query fields, and per-call query
// fields. It performs no I/O and no validation; all checks happen at
// dispatch time.
//
// The type parameter fixes the endpoint enumeration. Most callers use
// Request[Endpoint]; callers with custom endpoints supply their own string
// type and keep compile-time checking over the extended set.
//
// A Request is not safe for concurrent mutation. The usual pattern is one
// request per collection, reused sequentially by replacing the per-call
// query and endpoint between dispatches.
type Request[E ~string] struct {
	endpoint  E
	baseQuery Query
	query     Query
	headers   map[string]string
}

// NewRequest creates an empty request with an unset endpoint.
func NewRequest[E ~string]() *Request[E] {
	return &Request[E]{
		baseQuery: Query{},
		query:     Query{},
		headers:   map[string]string{},
	}
}

// New creates an empty request over the basic endpoint set.
func New() *Request[Endpoint] {
	return NewRequest[Endpoint]()
}

// ForCollection creates a request whose base query pins the target
// collection, so per-call queries only carry operation parameters.
func ForCollection(name string) *Request[Endpoint] {
	r := New()
	r.MergeBaseQuery(Query{"collection": name})
	return r
}

// SetEndpoint selects the operation to dispatch.
func (r *Request[E]) SetEndpoint(endpoint E) *Request[E] {
	r.endpoint = endpoint
	return r
}

// Endpoint returns the currently selected operation, or the zero value when
// unset.
func (r *Request[E]) Endpoint() E {
	return r.endpoint
}

// MergeBaseQuery merges fields into the accumulated base query. The merge is
// shallow and right-biased: new keys overwrite same-named existing keys one
// level deep, nested values are replaced wholesale. Successive calls
// accumulate defaults without restating earlier ones.
func (r *Request[E]) MergeBaseQuery(fields Query) *Request[E] {
	if r.baseQuery == nil {
		r.baseQuery = Query{}
	}
	for k, v := range fields {
		r.baseQuery[k] = v
	}
	return r
}

// BaseQuery returns a copy of the accumulated base query.
func (r *Request[E]) BaseQuery() Query {
	return copyQuery(r.baseQuery)
}

// SetQuery replaces the per-call query wholesale. Parameters from a prior
// call never leak into the next dispatch.
func (r *Request[E]) SetQuery(query Query) *Request[E] {
	r.query = copyQuery(query)
	return r
}

// Query returns a copy of the per-call query.
func (r *Request[E]) Query() Query {
	return copyQuery(r.query)
}

// EffectiveQuery returns the shallow merge of the base query and the
// per-call query, per-call keys winning on collision. The merge is computed
// fresh on every read and the returned map is owned by the caller.
func (r *Request[E]) EffectiveQuery() Query {
	merged := copyQuery(r.baseQuery)
	for k, v := range r.query {
		merged[k] = v
	}
	return merged
}

// SetHeaders replaces the custom headers sent with this request. They are
// merged on top of the dispatcher's mandatory headers at dispatch time, the
// custom value winning on collision.
func (r *Request[E]) SetHeaders(headers map[string]string) *Request[E] {
	r.headers = make(map[string]string, len(headers))
	for k, v := range headers {
		r.headers[k] = v
	}
	return r
}

// Headers returns a copy of the custom headers.
func (r *Request[E]) Headers() map[string]string {
	out := make(map[string]string, len(r.headers))
	for k, v := range r.headers {
		out[k] = v
	}
	return out
}

func copyQuery(q Query) Query {
	out := make(Query, len(q))
	for k, v := range q {
		out[k] = v
	}
	return out
}
