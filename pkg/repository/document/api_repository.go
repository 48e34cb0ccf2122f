package document

import (
	"context"
	"encoding/json"
	"fmt"
)

const defaultIDField = "_id"

// APIRepository is a generic Repository implementation backed by a
// DataAPIExecutor. Entities are mapped to documents through their JSON
// representation; the identity field defaults to "_id".
type APIRepository[T any, ID comparable] struct {
	exec    *DataAPIExecutor
	idField string
}

// NewAPIRepository creates a repository over the given executor.
func NewAPIRepository[T any, ID comparable](exec *DataAPIExecutor) (*APIRepository[T, ID], error) {
	if exec == nil {
		return nil, fmt.Errorf("executor is required")
	}
	return &APIRepository[T, ID]{exec: exec, idField: defaultIDField}, nil
}

// WithIDField overrides the document field used as entity identity.
func (r *APIRepository[T, ID]) WithIDField(field string) *APIRepository[T, ID] {
	if field != "" {
		r.idField = field
	}
	return r
}

// FindByID returns the entity with the given id, or nil when absent.
func (r *APIRepository[T, ID]) FindByID(ctx context.Context, id ID) (*T, error) {
	doc, err := r.exec.FindOne(ctx, Filter{r.idField: id})
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, nil
	}
	entity, err := decodeEntity[T](doc)
	if err != nil {
		return nil, err
	}
	return entity, nil
}

// FindAll returns every entity matching the query options.
func (r *APIRepository[T, ID]) FindAll(ctx context.Context, opts QueryOptions) ([]T, error) {
	docs, err := r.exec.Find(ctx, opts)
	if err != nil {
		return nil, err
	}
	entities := make([]T, 0, len(docs))
	for _, doc := range docs {
		entity, err := decodeEntity[T](doc)
		if err != nil {
			return nil, err
		}
		entities = append(entities, *entity)
	}
	return entities, nil
}

// Count counts entities matching the filter.
func (r *APIRepository[T, ID]) Count(ctx context.Context, filter Filter) (int64, error) {
	return r.exec.Count(ctx, filter)
}

// Create inserts the entity as a new document.
func (r *APIRepository[T, ID]) Create(ctx context.Context, entity *T) error {
	doc, err := encodeEntity(entity)
	if err != nil {
		return err
	}
	_, err = r.exec.InsertOne(ctx, doc)
	return err
}

// Update replaces the stored fields of the entity identified by its id
// field with a $set of the remaining fields.
func (r *APIRepository[T, ID]) Update(ctx context.Context, entity *T) error {
	doc, err := encodeEntity(entity)
	if err != nil {
		return err
	}
	id, ok := doc[r.idField]
	if !ok {
		return fmt.Errorf("entity document has no %q field", r.idField)
	}
	delete(doc, r.idField)

	result, err := r.exec.UpdateOne(ctx, Filter{r.idField: id}, map[string]interface{}{"$set": doc})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("no document matched %s=%v", r.idField, id)
	}
	return nil
}

// Delete removes the entity with the given id.
func (r *APIRepository[T, ID]) Delete(ctx context.Context, id ID) error {
	deleted, err := r.exec.DeleteOne(ctx, Filter{r.idField: id})
	if err != nil {
		return err
	}
	if deleted == 0 {
		return fmt.Errorf("no document matched %s=%v", r.idField, id)
	}
	return nil
}

func encodeEntity[T any](entity *T) (map[string]interface{}, error) {
	raw, err := json.Marshal(entity)
	if err != nil {
		return nil, fmt.Errorf("encode entity: %w", err)
	}
	var doc map[string]interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("encode entity: %w", err)
	}
	return doc, nil
}

func decodeEntity[T any](doc map[string]interface{}) (*T, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	var entity T
	if err := json.Unmarshal(raw, &entity); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return &entity, nil
}
