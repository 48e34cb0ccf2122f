package dataapi

// Typed shapes of the data API's response bodies, for use with DispatchInto.
// The dispatcher itself performs no schema check; these are conveniences for
// callers that know which endpoint they addressed.

// FindOneResult is the response body of /findOne. Document is nil when no
// document matched.
type FindOneResult struct {
	Document map[string]interface{} `json:"document"`
}

// FindResult is the response body of /find.
type FindResult struct {
	Documents []map[string]interface{} `json:"documents"`
}

// InsertOneResult is the response body of /insertOne.
type InsertOneResult struct {
	InsertedID interface{} `json:"insertedId"`
}

// InsertManyResult is the response body of /insertMany.
type InsertManyResult struct {
	InsertedIDs []interface{} `json:"insertedIds"`
}

// UpdateResult is the response body of /updateOne and /updateMany.
type UpdateResult struct {
	MatchedCount  int64       `json:"matchedCount"`
	ModifiedCount int64       `json:"modifiedCount"`
	UpsertedID    interface{} `json:"upsertedId,omitempty"`
}

// DeleteResult is the response body of /deleteOne and /deleteMany.
type DeleteResult struct {
	DeletedCount int64 `json:"deletedCount"`
}
