package document

import (
	"context"
	"fmt"

	"github.com/docuflow/dataapi/pkg/dataapi"
	"github.com/docuflow/dataapi/pkg/observability/logger"
)

// APIEndpoint extends the basic data API endpoint set with the aggregation
// operation the executor needs for Count.
type APIEndpoint string

const (
	endpointFind       APIEndpoint = APIEndpoint(dataapi.EndpointFind)
	endpointFindOne    APIEndpoint = APIEndpoint(dataapi.EndpointFindOne)
	endpointInsertOne  APIEndpoint = APIEndpoint(dataapi.EndpointInsertOne)
	endpointInsertMany APIEndpoint = APIEndpoint(dataapi.EndpointInsertMany)
	endpointUpdateOne  APIEndpoint = APIEndpoint(dataapi.EndpointUpdateOne)
	endpointUpdateMany APIEndpoint = APIEndpoint(dataapi.EndpointUpdateMany)
	endpointDeleteOne  APIEndpoint = APIEndpoint(dataapi.EndpointDeleteOne)
	endpointDeleteMany APIEndpoint = APIEndpoint(dataapi.EndpointDeleteMany)
	endpointAggregate  APIEndpoint = "/aggregate"
)

// ExecutorConfig configures a DataAPIExecutor.
type ExecutorConfig struct {
	// Connection is the data API connection configuration.
	Connection dataapi.Config
	// Collection is the target collection for every operation.
	Collection string
	// Transport overrides the default net/http transport (optional).
	Transport dataapi.Transport
	// Logger attaches structured logging to dispatches (optional).
	Logger logger.Logger
}

// DataAPIExecutor executes document operations for one collection through
// the data API dispatcher. It is the repository layer's only network path.
type DataAPIExecutor struct {
	dispatcher *dataapi.Dispatcher[APIEndpoint]
	collection string
}

// NewDataAPIExecutor creates an executor bound to one collection.
func NewDataAPIExecutor(cfg ExecutorConfig) (*DataAPIExecutor, error) {
	if cfg.Collection == "" {
		return nil, fmt.Errorf("collection is required")
	}

	opts := []dataapi.Option[APIEndpoint]{}
	if cfg.Transport != nil {
		opts = append(opts, dataapi.WithTransport[APIEndpoint](cfg.Transport))
	}
	if cfg.Logger != nil {
		opts = append(opts, dataapi.WithLogger[APIEndpoint](cfg.Logger))
	}

	dispatcher, err := dataapi.NewDispatcher(cfg.Connection, opts...)
	if err != nil {
		return nil, fmt.Errorf("create data api dispatcher: %w", err)
	}
	return &DataAPIExecutor{
		dispatcher: dispatcher,
		collection: cfg.Collection,
	}, nil
}

// Collection returns the collection this executor is bound to.
func (e *DataAPIExecutor) Collection() string {
	return e.collection
}

// InsertOne inserts a document and returns its inserted id.
func (e *DataAPIExecutor) InsertOne(ctx context.Context, doc map[string]interface{}) (interface{}, error) {
	result, err := dataapi.DispatchInto[dataapi.InsertOneResult](ctx, e.dispatcher,
		e.request(endpointInsertOne, dataapi.Query{"document": doc}))
	if err != nil {
		return nil, err
	}
	return result.InsertedID, nil
}

// InsertMany inserts documents and returns their inserted ids.
func (e *DataAPIExecutor) InsertMany(ctx context.Context, docs []map[string]interface{}) ([]interface{}, error) {
	result, err := dataapi.DispatchInto[dataapi.InsertManyResult](ctx, e.dispatcher,
		e.request(endpointInsertMany, dataapi.Query{"documents": docs}))
	if err != nil {
		return nil, err
	}
	return result.InsertedIDs, nil
}

// FindOne returns the first document matching the filter, or nil when
// nothing matched.
func (e *DataAPIExecutor) FindOne(ctx context.Context, filter Filter) (map[string]interface{}, error) {
	result, err := dataapi.DispatchInto[dataapi.FindOneResult](ctx, e.dispatcher,
		e.request(endpointFindOne, dataapi.Query{"filter": map[string]interface{}(filter)}))
	if err != nil {
		return nil, err
	}
	return result.Document, nil
}

// Find returns all documents matching the query options.
func (e *DataAPIExecutor) Find(ctx context.Context, opts QueryOptions) ([]map[string]interface{}, error) {
	query := dataapi.Query{}
	if opts.Filter != nil {
		query["filter"] = map[string]interface{}(opts.Filter)
	} else {
		query["filter"] = map[string]interface{}{}
	}
	if opts.Sort.Field != "" {
		direction := 1
		if opts.Sort.Order == SortDesc {
			direction = -1
		}
		query["sort"] = map[string]interface{}{opts.Sort.Field: direction}
	}
	if opts.Pagination.Limit > 0 {
		query["limit"] = opts.Pagination.Limit
	}
	if opts.Pagination.Skip > 0 {
		query["skip"] = opts.Pagination.Skip
	}

	result, err := dataapi.DispatchInto[dataapi.FindResult](ctx, e.dispatcher,
		e.request(endpointFind, query))
	if err != nil {
		return nil, err
	}
	return result.Documents, nil
}

// UpdateOne updates the first document matching the filter.
func (e *DataAPIExecutor) UpdateOne(ctx context.Context, filter Filter, update map[string]interface{}) (*dataapi.UpdateResult, error) {
	return e.update(ctx, endpointUpdateOne, filter, update)
}

// UpdateMany updates every document matching the filter.
func (e *DataAPIExecutor) UpdateMany(ctx context.Context, filter Filter, update map[string]interface{}) (*dataapi.UpdateResult, error) {
	return e.update(ctx, endpointUpdateMany, filter, update)
}

func (e *DataAPIExecutor) update(ctx context.Context, endpoint APIEndpoint, filter Filter, update map[string]interface{}) (*dataapi.UpdateResult, error) {
	result, err := dataapi.DispatchInto[dataapi.UpdateResult](ctx, e.dispatcher,
		e.request(endpoint, dataapi.Query{
			"filter": map[string]interface{}(filter),
			"update": update,
		}))
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// DeleteOne deletes the first document matching the filter and returns the
// deleted count.
func (e *DataAPIExecutor) DeleteOne(ctx context.Context, filter Filter) (int64, error) {
	return e.delete(ctx, endpointDeleteOne, filter)
}

// DeleteMany deletes every document matching the filter and returns the
// deleted count.
func (e *DataAPIExecutor) DeleteMany(ctx context.Context, filter Filter) (int64, error) {
	return e.delete(ctx, endpointDeleteMany, filter)
}

func (e *DataAPIExecutor) delete(ctx context.Context, endpoint APIEndpoint, filter Filter) (int64, error) {
	result, err := dataapi.DispatchInto[dataapi.DeleteResult](ctx, e.dispatcher,
		e.request(endpoint, dataapi.Query{"filter": map[string]interface{}(filter)}))
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

// Count counts documents matching the filter through the aggregation
// endpoint, which extends the basic operation set.
func (e *DataAPIExecutor) Count(ctx context.Context, filter Filter) (int64, error) {
	match := map[string]interface{}{}
	if filter != nil {
		match = map[string]interface{}(filter)
	}
	pipeline := []interface{}{
		map[string]interface{}{"$match": match},
		map[string]interface{}{"$count": "count"},
	}

	result, err := dataapi.DispatchInto[dataapi.FindResult](ctx, e.dispatcher,
		e.request(endpointAggregate, dataapi.Query{"pipeline": pipeline}))
	if err != nil {
		return 0, err
	}
	if len(result.Documents) == 0 {
		return 0, nil
	}

	switch n := result.Documents[0]["count"].(type) {
	case float64:
		return int64(n), nil
	case int64:
		return n, nil
	case int32:
		return int64(n), nil
	default:
		return 0, fmt.Errorf("unexpected count type %T", result.Documents[0]["count"])
	}
}

func (e *DataAPIExecutor) request(endpoint APIEndpoint, query dataapi.Query) *dataapi.Request[APIEndpoint] {
	req := dataapi.NewRequest[APIEndpoint]()
	req.MergeBaseQuery(dataapi.Query{"collection": e.collection})
	req.SetEndpoint(endpoint)
	req.SetQuery(query)
	return req
}
