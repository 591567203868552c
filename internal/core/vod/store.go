package vod

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vodcrawler/internal/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store persists catalog documents in a Mongo collection.
type Store struct {
	coll *mongo.Collection
	log  *logger.Logger
	now  func() time.Time
}

func NewStore(coll *mongo.Collection) *Store {
	return &Store{coll: coll, log: logger.New("VodStore"), now: time.Now}
}

// EnsureIndexes creates the title text index and the listing indexes.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	models := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "title", Value: "text"}},
			Options: options.Index().SetDefaultLanguage("english").SetLanguageOverride("none"),
		},
		{Keys: bson.D{{Key: "release_year", Value: -1}}},
		{Keys: bson.D{{Key: "genre", Value: 1}}},
		{Keys: bson.D{{Key: "url", Value: 1}}},
	}
	names, err := s.coll.Indexes().CreateMany(ctx, models)
	if err != nil {
		return fmt.Errorf("create indexes: %w", err)
	}
	s.log.LogInfof("indexes ready: %v", names)
	return nil
}

func (s *Store) List(ctx context.Context) ([]Vod, error) {
	cur, err := s.coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("find vods: %w", err)
	}
	defer cur.Close(ctx)

	out := []Vod{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode vods: %w", err)
	}
	return out, nil
}

func (s *Store) Get(ctx context.Context, id string) (*Vod, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	var v Vod
	if err := s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&v); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find vod %s: %w", id, err)
	}
	return &v, nil
}

// Create validates and inserts a new document. Repeated calls with the same
// url insert separate documents.
func (s *Store) Create(ctx context.Context, in VodCreate) (*Vod, error) {
	if err := ValidateCreate(in); err != nil {
		return nil, err
	}
	doc := in.document(s.now().UTC())
	res, err := s.coll.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert vod: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		doc.ID = oid
	}
	return &doc, nil
}

// UpsertByURL replaces the document with the same url, inserting it when
// none exists. The original creation time is kept.
func (s *Store) UpsertByURL(ctx context.Context, in VodCreate) (*Vod, error) {
	if err := ValidateCreate(in); err != nil {
		return nil, err
	}
	now := s.now().UTC()
	doc := in.document(now)

	set, err := toBSON(doc)
	if err != nil {
		return nil, err
	}
	delete(set, "_id")
	delete(set, "created_at")

	update := bson.M{
		"$set":         set,
		"$setOnInsert": bson.M{"created_at": now},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var out Vod
	if err := s.coll.FindOneAndUpdate(ctx, bson.M{"url": in.URL}, update, opts).Decode(&out); err != nil {
		return nil, fmt.Errorf("upsert vod %s: %w", in.URL, err)
	}
	return &out, nil
}

// Update sets only the fields present in the request.
func (s *Store) Update(ctx context.Context, id string, in VodUpdate) (*Vod, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	if err := ValidateUpdate(in); err != nil {
		return nil, err
	}

	set := bson.M{"updated_at": s.now().UTC()}
	if in.Title != nil {
		set["title"] = *in.Title
	}
	if in.Description != nil {
		set["description"] = *in.Description
	}
	if in.URL != nil {
		set["url"] = *in.URL
	}
	if in.Tags != nil {
		set["tags"] = *in.Tags
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var out Vod
	if err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&out); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update vod %s: %w", id, err)
	}
	return &out, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete vod %s: %w", id, err)
	}
	if res.DeletedCount != 1 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) Count(ctx context.Context) (int64, error) {
	n, err := s.coll.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("count vods: %w", err)
	}
	return n, nil
}

func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %s", ErrInvalidID, id)
	}
	return oid, nil
}

func toBSON(v interface{}) (bson.M, error) {
	data, err := bson.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal vod: %w", err)
	}
	var m bson.M
	if err := bson.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshal vod: %w", err)
	}
	return m, nil
}
