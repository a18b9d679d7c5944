package mongodb

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MemoryCollection is an in-process Collection for tests. Filters
// support top-level equality only; updates support $set and $inc.
type MemoryCollection struct {
	mu   sync.Mutex
	docs []bson.M
}

// NewMemoryCollection returns an empty collection.
func NewMemoryCollection() *MemoryCollection {
	return &MemoryCollection{}
}

// Len returns the number of stored documents.
func (m *MemoryCollection) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.docs)
}

func (m *MemoryCollection) InsertOne(ctx context.Context, doc interface{}) (interface{}, error) {
	stored, err := toDocument(doc)
	if err != nil {
		return nil, err
	}
	if _, ok := stored["_id"]; !ok {
		stored["_id"] = primitive.NewObjectID()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.docs {
		if reflect.DeepEqual(existing["_id"], stored["_id"]) {
			return nil, fmt.Errorf("duplicate key: _id %v", stored["_id"])
		}
	}
	m.docs = append(m.docs, stored)
	return stored["_id"], nil
}

func (m *MemoryCollection) FindOne(ctx context.Context, filter interface{}) Decoder {
	m.mu.Lock()
	defer m.mu.Unlock()

	match, err := toFilter(filter)
	if err != nil {
		return &memorySingleResult{err: err}
	}
	if i := m.indexOf(match); i >= 0 {
		return &memorySingleResult{doc: copyDocument(m.docs[i])}
	}
	return &memorySingleResult{err: mongo.ErrNoDocuments}
}

func (m *MemoryCollection) UpdateOne(ctx context.Context, filter, update interface{}) (WriteCounts, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	match, err := toFilter(filter)
	if err != nil {
		return WriteCounts{}, err
	}
	i := m.indexOf(match)
	if i < 0 {
		return WriteCounts{}, nil
	}
	modified, err := applyUpdate(m.docs[i], update)
	if err != nil {
		return WriteCounts{}, err
	}
	res := WriteCounts{Matched: 1}
	if modified {
		res.Modified = 1
	}
	return res, nil
}

func (m *MemoryCollection) DeleteOne(ctx context.Context, filter interface{}) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	match, err := toFilter(filter)
	if err != nil {
		return 0, err
	}
	i := m.indexOf(match)
	if i < 0 {
		return 0, nil
	}
	m.docs = append(m.docs[:i], m.docs[i+1:]...)
	return 1, nil
}

func (m *MemoryCollection) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (Cursor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	match, err := toFilter(filter)
	if err != nil {
		return nil, err
	}
	cur := &memoryCursor{pos: -1}
	for _, doc := range m.docs {
		if matches(doc, match) {
			cur.docs = append(cur.docs, copyDocument(doc))
		}
	}
	return cur, nil
}

func (m *MemoryCollection) FindOneAndUpdate(ctx context.Context, filter, update interface{}, opts ...*options.FindOneAndUpdateOptions) Decoder {
	m.mu.Lock()
	defer m.mu.Unlock()

	match, err := toFilter(filter)
	if err != nil {
		return &memorySingleResult{err: err}
	}
	i := m.indexOf(match)
	if i < 0 {
		return &memorySingleResult{err: mongo.ErrNoDocuments}
	}

	before := copyDocument(m.docs[i])
	if _, err := applyUpdate(m.docs[i], update); err != nil {
		return &memorySingleResult{err: err}
	}
	for _, opt := range opts {
		if opt != nil && opt.ReturnDocument != nil && *opt.ReturnDocument == options.After {
			return &memorySingleResult{doc: copyDocument(m.docs[i])}
		}
	}
	return &memorySingleResult{doc: before}
}

func (m *MemoryCollection) indexOf(filter bson.M) int {
	for i, doc := range m.docs {
		if matches(doc, filter) {
			return i
		}
	}
	return -1
}

func matches(doc, filter bson.M) bool {
	for key, want := range filter {
		got, ok := doc[key]
		if !ok || !reflect.DeepEqual(got, want) {
			return false
		}
	}
	return true
}

func applyUpdate(doc bson.M, update interface{}) (bool, error) {
	ops, ok := asMap(update)
	if !ok {
		return false, fmt.Errorf("unsupported update document %T", update)
	}

	modified := false
	for op, arg := range ops {
		fields, ok := asMap(arg)
		if !ok {
			return false, fmt.Errorf("operator %s expects a document, got %T", op, arg)
		}
		switch op {
		case "$set":
			for key, value := range fields {
				if !reflect.DeepEqual(doc[key], value) {
					doc[key] = value
					modified = true
				}
			}
		case "$inc":
			for key, delta := range fields {
				sum, err := addNumbers(doc[key], delta)
				if err != nil {
					return false, fmt.Errorf("$inc %s: %w", key, err)
				}
				doc[key] = sum
				modified = true
			}
		default:
			return false, fmt.Errorf("unsupported update operator %s", op)
		}
	}
	return modified, nil
}

func addNumbers(current, delta interface{}) (interface{}, error) {
	d, ok := toInt64(delta)
	if !ok {
		return nil, fmt.Errorf("non-integer delta %T", delta)
	}
	if current == nil {
		return d, nil
	}
	switch v := current.(type) {
	case float64:
		return v + float64(d), nil
	default:
		c, ok := toInt64(current)
		if !ok {
			return nil, fmt.Errorf("cannot increment %T", current)
		}
		return c + d, nil
	}
}

func toInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	default:
		return 0, false
	}
}

func asMap(v interface{}) (map[string]interface{}, bool) {
	switch m := v.(type) {
	case bson.M:
		return m, true
	case map[string]interface{}:
		return m, true
	case bson.D:
		out := make(map[string]interface{}, len(m))
		for _, e := range m {
			out[e.Key] = e.Value
		}
		return out, true
	default:
		return nil, false
	}
}

func toFilter(filter interface{}) (bson.M, error) {
	if filter == nil {
		return bson.M{}, nil
	}
	m, ok := asMap(filter)
	if !ok {
		return nil, fmt.Errorf("unsupported filter %T", filter)
	}
	return bson.M(m), nil
}

// toDocument normalises doc through BSON so stored values have the same
// types a real server would hand back.
func toDocument(doc interface{}) (bson.M, error) {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	var out bson.M
	if err := bson.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("unmarshal document: %w", err)
	}
	return out, nil
}

func copyDocument(doc bson.M) bson.M {
	out := make(bson.M, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out
}

func decodeDocument(doc bson.M, v interface{}) error {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return err
	}
	return bson.Unmarshal(raw, v)
}

type memorySingleResult struct {
	doc bson.M
	err error
}

func (r *memorySingleResult) Decode(v interface{}) error {
	if r.err != nil {
		return r.err
	}
	return decodeDocument(r.doc, v)
}

type memoryCursor struct {
	docs []bson.M
	pos  int
}

func (c *memoryCursor) Next(ctx context.Context) bool {
	if c.pos+1 >= len(c.docs) {
		return false
	}
	c.pos++
	return true
}

func (c *memoryCursor) Decode(val interface{}) error {
	if c.pos < 0 || c.pos >= len(c.docs) {
		return fmt.Errorf("cursor is not positioned on a document")
	}
	return decodeDocument(c.docs[c.pos], val)
}

func (c *memoryCursor) Close(ctx context.Context) error { return nil }
func (c *memoryCursor) Err() error                      { return nil }

var _ Collection = (*MemoryCollection)(nil)
