// Package mongostore keeps todos in a MongoDB collection.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"tasklet/internal/models"
	"tasklet/internal/store"
)

const (
	collectionName = "todos"
	connectTimeout = 10 * time.Second
)

// todoDocument is the stored shape of a todo.
type todoDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Text      string             `bson:"text"`
	DueDate   *time.Time         `bson:"dueDate,omitempty"`
	ImageURL  string             `bson:"imageUrl,omitempty"`
	PDFURL    string             `bson:"pdfUrl,omitempty"`
	Completed bool               `bson:"completed"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

func (d todoDocument) model() models.Todo {
	todo := models.Todo{
		ID:        d.ID.Hex(),
		Text:      d.Text,
		ImageURL:  d.ImageURL,
		PDFURL:    d.PDFURL,
		Completed: d.Completed,
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}
	if d.DueDate != nil {
		due := d.DueDate.UTC()
		todo.DueDate = &due
	}
	return todo
}

// Store implements store.TodoStore on a MongoDB database.
type Store struct {
	client *mongo.Client
	todos  *mongo.Collection
	now    func() time.Time
}

var _ store.TodoStore = (*Store)(nil)

// Open connects once and prepares the todos collection.
func Open(ctx context.Context, uri, dbName string) (*Store, error) {
	if uri == "" {
		return nil, fmt.Errorf("mongodb uri is required")
	}
	if dbName == "" {
		return nil, fmt.Errorf("mongodb database name is required")
	}

	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Join(store.ErrUnavailable, err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Join(store.ErrUnavailable, err)
	}

	s := New(client.Database(dbName))
	if err := s.ensureIndexes(connectCtx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, wrapErr(err)
	}
	return s, nil
}

// New wraps an already connected database handle.
func New(db *mongo.Database) *Store {
	return &Store{
		client: db.Client(),
		todos:  db.Collection(collectionName),
		now:    func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	_, err := s.todos.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}},
		Options: options.Index().SetName("createdAt_desc"),
	})
	return err
}

// ListTodos returns every todo, newest first.
func (s *Store) ListTodos(ctx context.Context) ([]models.Todo, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := s.todos.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, wrapErr(err)
	}
	defer cur.Close(ctx)

	todos := []models.Todo{}
	for cur.Next(ctx) {
		var doc todoDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		todos = append(todos, doc.model())
	}
	if err := cur.Err(); err != nil {
		return nil, wrapErr(err)
	}
	return todos, nil
}

// GetTodo returns a todo by id.
func (s *Store) GetTodo(ctx context.Context, id string) (*models.Todo, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, store.ErrNotFound
	}

	var doc todoDocument
	if err := s.todos.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, wrapErr(err)
	}
	todo := doc.model()
	return &todo, nil
}

// CreateTodo inserts a new document and returns it as stored.
func (s *Store) CreateTodo(ctx context.Context, fields store.TodoFields) (*models.Todo, error) {
	if err := store.ValidateFields(&fields); err != nil {
		return nil, err
	}

	ts := s.now()
	doc := todoDocument{
		ID:        primitive.NewObjectID(),
		Text:      fields.Text,
		DueDate:   utcPtr(fields.DueDate),
		ImageURL:  fields.ImageURL,
		PDFURL:    fields.PDFURL,
		Completed: fields.Completed,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	if _, err := s.todos.InsertOne(ctx, doc); err != nil {
		return nil, wrapErr(err)
	}
	todo := doc.model()
	return &todo, nil
}

// UpdateTodo merges the provided fields and returns the document after the write.
func (s *Store) UpdateTodo(ctx context.Context, id string, patch store.TodoPatch) (*models.Todo, error) {
	if err := store.ValidatePatch(&patch); err != nil {
		return nil, err
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, store.ErrNotFound
	}

	set, unset := patchDocuments(patch)
	set = append(set, bson.E{Key: "updatedAt", Value: s.now()})
	update := bson.D{{Key: "$set", Value: set}}
	if len(unset) > 0 {
		update = append(update, bson.E{Key: "$unset", Value: unset})
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc todoDocument
	if err := s.todos.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&doc); err != nil {
		return nil, wrapErr(err)
	}
	todo := doc.model()
	return &todo, nil
}

// DeleteTodo removes a todo by id.
func (s *Store) DeleteTodo(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return store.ErrNotFound
	}
	res, err := s.todos.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return wrapErr(err)
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

// Ping checks the primary is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if s == nil || s.client == nil {
		return store.ErrUnavailable
	}
	if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
		return errors.Join(store.ErrUnavailable, err)
	}
	return nil
}

// Close disconnects the client.
func (s *Store) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Disconnect(context.Background())
}

// patchDocuments splits a patch into $set and $unset parts. Empty URLs are
// unset so the document matches a freshly created one without attachments.
func patchDocuments(patch store.TodoPatch) (bson.D, bson.D) {
	set := bson.D{}
	unset := bson.D{}

	if patch.Text != nil {
		set = append(set, bson.E{Key: "text", Value: *patch.Text})
	}
	if patch.ClearDueDate {
		unset = append(unset, bson.E{Key: "dueDate", Value: ""})
	} else if patch.DueDate != nil {
		set = append(set, bson.E{Key: "dueDate", Value: patch.DueDate.UTC()})
	}
	if patch.ImageURL != nil {
		if *patch.ImageURL == "" {
			unset = append(unset, bson.E{Key: "imageUrl", Value: ""})
		} else {
			set = append(set, bson.E{Key: "imageUrl", Value: *patch.ImageURL})
		}
	}
	if patch.PDFURL != nil {
		if *patch.PDFURL == "" {
			unset = append(unset, bson.E{Key: "pdfUrl", Value: ""})
		} else {
			set = append(set, bson.E{Key: "pdfUrl", Value: *patch.PDFURL})
		}
	}
	if patch.Completed != nil {
		set = append(set, bson.E{Key: "completed", Value: *patch.Completed})
	}
	return set, unset
}

func wrapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return store.ErrNotFound
	case mongo.IsNetworkError(err), mongo.IsTimeout(err), errors.Is(err, mongo.ErrClientDisconnected):
		return errors.Join(store.ErrUnavailable, err)
	}
	return err
}

func utcPtr(value *time.Time) *time.Time {
	if value == nil || value.IsZero() {
		return nil
	}
	t := value.UTC()
	return &t
}
