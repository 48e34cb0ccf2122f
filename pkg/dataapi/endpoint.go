package dataapi

// Endpoint selects one operation of the remote data API. The value is the
// path segment appended to the configured base URL.
type Endpoint string

// Basic operation endpoints supported by the data API.
const (
	EndpointFind       Endpoint = "/find"
	EndpointFindOne    Endpoint = "/findOne"
	EndpointInsertOne  Endpoint = "/insertOne"
	EndpointInsertMany Endpoint = "/insertMany"
	EndpointUpdateOne  Endpoint = "/updateOne"
	EndpointUpdateMany Endpoint = "/updateMany"
	EndpointDeleteOne  Endpoint = "/deleteOne"
	EndpointDeleteMany Endpoint = "/deleteMany"
)

// Callers needing endpoints beyond the basic set declare their own string
// type with additional constants and instantiate Request and Dispatcher with
// it. The dispatcher treats any non-empty endpoint as addressable; it does
// not restrict the path to the constants above.
