// Package mongostore implements a store backend on MongoDB.
//
// The collection is one document in the "dashboards" collection; reports and
// trashed reports live in "reports" and "trash", keyed by link.
package mongostore

import (
	"context"
	stderrors "errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/navtree/pkg/dashboard"
	"github.com/matzehuels/navtree/pkg/errors"
	"github.com/matzehuels/navtree/pkg/store/internal/record"
)

// DefaultDatabase is used when no database name is given.
const DefaultDatabase = "navtree"

const collectionID = "collection"

// Store is a MongoDB backed store.
type Store struct {
	client     *mongo.Client
	dashboards *mongo.Collection
	reports    *mongo.Collection
	trash      *mongo.Collection
}

type entryDoc struct {
	Link   string `bson:"link"`
	Title  string `bson:"title"`
	IsMain bool   `bson:"isMain"`
	Level  string `bson:"level"`
	Parent string `bson:"parent,omitempty"`
}

type collectionDoc struct {
	ID      string     `bson:"_id"`
	Entries []entryDoc `bson:"entries"`
}

type reportDoc struct {
	Link      string    `bson:"_id"`
	Doc       string    `bson:"doc"`
	DeletedAt time.Time `bson:"deletedAt,omitempty"`
}

// Open connects to the deployment at uri and uses database (or
// DefaultDatabase).
func Open(ctx context.Context, uri, database string) (*Store, error) {
	if uri == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "mongo uri is required")
	}
	if database == "" {
		database = DefaultDatabase
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "connect to mongo")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "mongo unreachable")
	}
	return New(client, database), nil
}

// New uses an existing client. Close disconnects it.
func New(client *mongo.Client, database string) *Store {
	db := client.Database(database)
	return &Store{
		client:     client,
		dashboards: db.Collection("dashboards"),
		reports:    db.Collection("reports"),
		trash:      db.Collection("trash"),
	}
}

func byID(id string) bson.D { return bson.D{{Key: "_id", Value: id}} }

// Dashboards implements store.Backend.
func (s *Store) Dashboards(ctx context.Context) ([]dashboard.Entry, error) {
	var doc collectionDoc
	err := s.dashboards.FindOne(ctx, byID(collectionID)).Decode(&doc)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return []dashboard.Entry{}, nil
	}
	if err != nil {
		return nil, err
	}

	entries := make([]dashboard.Entry, 0, len(doc.Entries))
	for _, d := range doc.Entries {
		level, err := dashboard.ParseLevel(d.Level)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "dashboard %q", d.Link)
		}
		entries = append(entries, dashboard.Entry{
			Link:   d.Link,
			Title:  d.Title,
			IsMain: d.IsMain,
			Level:  level,
			Parent: d.Parent,
		})
	}
	return entries, nil
}

// ReplaceDashboards implements store.Backend.
func (s *Store) ReplaceDashboards(ctx context.Context, entries []dashboard.Entry) error {
	doc := collectionDoc{ID: collectionID, Entries: make([]entryDoc, 0, len(entries))}
	for _, e := range dashboard.Clone(entries) {
		doc.Entries = append(doc.Entries, entryDoc{
			Link:   e.Link,
			Title:  e.Title,
			IsMain: e.IsMain,
			Level:  e.Level.String(),
			Parent: e.Parent,
		})
	}
	_, err := s.dashboards.ReplaceOne(ctx, byID(collectionID), doc, options.Replace().SetUpsert(true))
	return err
}

// Report implements store.Backend.
func (s *Store) Report(ctx context.Context, link string) ([]byte, error) {
	var doc reportDoc
	err := s.reports.FindOne(ctx, byID(link)).Decode(&doc)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return nil, record.NotFound(link)
	}
	if err != nil {
		return nil, err
	}
	return []byte(doc.Doc), nil
}

// ScaffoldReport implements store.Backend.
func (s *Store) ScaffoldReport(ctx context.Context, link string) error {
	if err := record.CheckKey(link); err != nil {
		return err
	}
	_, err := s.reports.InsertOne(ctx, reportDoc{Link: link, Doc: string(record.Scaffold(link))})
	if mongo.IsDuplicateKeyError(err) {
		return record.Exists(link)
	}
	return err
}

// RenameReport implements store.Backend. The new document is inserted before
// the old one is removed, so the unique _id index rejects a taken link.
func (s *Store) RenameReport(ctx context.Context, oldLink, newLink string) error {
	if err := record.CheckKey(newLink); err != nil {
		return err
	}
	doc, err := s.Report(ctx, oldLink)
	if err != nil || oldLink == newLink {
		return err
	}
	relinked, err := record.Relink(doc, newLink)
	if err != nil {
		return err
	}
	_, err = s.reports.InsertOne(ctx, reportDoc{Link: newLink, Doc: string(relinked)})
	if mongo.IsDuplicateKeyError(err) {
		return record.Exists(newLink)
	}
	if err != nil {
		return err
	}
	_, err = s.reports.DeleteOne(ctx, byID(oldLink))
	return err
}

// DeleteReport implements store.Backend. The report is moved to the trash
// collection.
func (s *Store) DeleteReport(ctx context.Context, link string) error {
	doc, err := s.Report(ctx, link)
	if err != nil {
		return err
	}
	trashed := reportDoc{Link: link, Doc: string(doc), DeletedAt: time.Now().UTC()}
	if _, err := s.trash.ReplaceOne(ctx, byID(link), trashed, options.Replace().SetUpsert(true)); err != nil {
		return err
	}
	_, err = s.reports.DeleteOne(ctx, byID(link))
	return err
}

// Close implements store.Backend.
func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
