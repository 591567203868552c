package vod

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type memRepo struct {
	mu    sync.Mutex
	docs  []Vod
	lists int
	err   error
}

func (r *memRepo) List(context.Context) ([]Vod, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lists++
	if r.err != nil {
		return nil, r.err
	}
	return append([]Vod(nil), r.docs...), nil
}

func (r *memRepo) Get(_ context.Context, id string) (*Vod, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.docs {
		if r.docs[i].ID == oid {
			v := r.docs[i]
			return &v, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memRepo) Create(_ context.Context, in VodCreate) (*Vod, error) {
	if err := ValidateCreate(in); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	v := in.document(time.Now().UTC())
	v.ID = primitive.NewObjectID()
	r.docs = append(r.docs, v)
	return &v, nil
}

func (r *memRepo) UpsertByURL(ctx context.Context, in VodCreate) (*Vod, error) {
	r.mu.Lock()
	for i := range r.docs {
		if r.docs[i].URL == in.URL {
			v := in.document(time.Now().UTC())
			v.ID = r.docs[i].ID
			v.CreatedAt = r.docs[i].CreatedAt
			r.docs[i] = v
			r.mu.Unlock()
			return &v, nil
		}
	}
	r.mu.Unlock()
	return r.Create(ctx, in)
}

func (r *memRepo) Update(_ context.Context, id string, in VodUpdate) (*Vod, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	if err := ValidateUpdate(in); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.docs {
		if r.docs[i].ID != oid {
			continue
		}
		if in.Title != nil {
			r.docs[i].Title = *in.Title
		}
		if in.Description != nil {
			r.docs[i].Description = in.Description
		}
		if in.URL != nil {
			r.docs[i].URL = *in.URL
		}
		if in.Tags != nil {
			r.docs[i].Tags = *in.Tags
		}
		v := r.docs[i]
		return &v, nil
	}
	return nil, ErrNotFound
}

func (r *memRepo) Delete(_ context.Context, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.docs {
		if r.docs[i].ID == oid {
			r.docs = append(r.docs[:i], r.docs[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (r *memRepo) Count(context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.docs)), nil
}

// memCache mimics the redis cache contract with JSON round-trips.
type memCache struct {
	mu          sync.Mutex
	entries     map[string][]byte
	invalidated []string
	failGet     bool
}

func newMemCache() *memCache { return &memCache{entries: map[string][]byte{}} }

func (c *memCache) GetOrSet(ctx context.Context, key string, _ time.Duration, dest interface{}, compute func(context.Context) (interface{}, error)) error {
	c.mu.Lock()
	b, ok := c.entries[key]
	c.mu.Unlock()
	if ok && !c.failGet {
		return json.Unmarshal(b, dest)
	}
	v, err := compute(ctx)
	if err != nil {
		return err
	}
	b, err = json.Marshal(v)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.entries[key] = b
	c.mu.Unlock()
	return json.Unmarshal(b, dest)
}

func (c *memCache) Invalidate(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.entries, k)
		c.invalidated = append(c.invalidated, k)
	}
	return nil
}
