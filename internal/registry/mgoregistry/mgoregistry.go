package mgoregistry

import (
	"context"
	"time"

	"github.com/denismitr/redactor/internal/document"
	"github.com/denismitr/redactor/internal/registry"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

type Config struct {
	DB                  string
	DocumentsCollection string
}

type MongoRegistry struct {
	client    *mongo.Client
	db        *mongo.Database
	documents *mongo.Collection
}

func New(client *mongo.Client, cfg Config) *MongoRegistry {
	r := MongoRegistry{
		client: client,
		db:     client.Database(cfg.DB),
	}

	r.documents = r.db.Collection(cfg.DocumentsCollection)

	return &r
}

func (r *MongoRegistry) GenerateID() document.ID {
	return document.ID(primitive.NewObjectID().Hex())
}

func (r *MongoRegistry) Migrate(ctx context.Context) error {
	_, err := r.documents.Indexes().CreateMany(
		ctx,
		[]mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "namespace", Value: 1}, {Key: "key", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{
				Keys: bson.D{{Key: "fileType", Value: 1}, {Key: "imageEligible", Value: 1}},
			},
		},
	)

	if err != nil {
		return errors.Wrap(err, "could not create indexes on documents collection")
	}

	return nil
}

func (r *MongoRegistry) CreateDocument(ctx context.Context, doc *document.Document) error {
	return r.transaction(ctx, 3*time.Second, func(sessCtx mongo.SessionContext) error {
		dr := mapDocumentToMongoRecord(doc)

		if err := r.createDocument(sessCtx, dr); err != nil {
			return err
		}

		return nil
	})
}

func (r *MongoRegistry) GetDocumentByID(ctx context.Context, ID document.ID) (*document.Document, error) {
	docID, err := primitive.ObjectIDFromHex(ID.String())
	if err != nil {
		return nil, errors.Wrapf(registry.ErrInvalidID, "[%s]", ID.String())
	}

	var doc *document.Document

	txErr := r.transaction(ctx, 2*time.Second, func(sessCtx mongo.SessionContext) error {
		dr, err := r.getDocumentByID(sessCtx, docID)
		if err != nil {
			return err
		}

		doc, err = mapMongoRecordToDocument(dr)

		return err
	})

	if txErr != nil {
		return nil, txErr
	}

	return doc, nil
}

func (r *MongoRegistry) GetDocuments(ctx context.Context, filter document.Filter) (*document.Collection, error) {
	collection := new(document.Collection)

	txErr := r.transaction(ctx, 3*time.Second, func(sessCtx mongo.SessionContext) error {
		records, total, err := r.getDocuments(sessCtx, filter)
		if err != nil {
			return err
		}

		for i := range records {
			doc, err := mapMongoRecordToDocument(&records[i])
			if err != nil {
				return err
			}

			collection.Documents = append(collection.Documents, *doc)
		}

		if collection.Documents == nil {
			collection.Documents = make([]document.Document, 0)
		}

		collection.Meta.Total = uint(total)
		collection.Meta.PerPage = filter.Limit()
		collection.Meta.Page = filter.Page

		return nil
	})

	if txErr != nil {
		return nil, txErr
	}

	return collection, nil
}

func (r *MongoRegistry) RemoveDocument(ctx context.Context, ID document.ID) error {
	docID, err := primitive.ObjectIDFromHex(ID.String())
	if err != nil {
		return errors.Wrapf(registry.ErrInvalidID, "[%s]", ID.String())
	}

	return r.transaction(ctx, 2*time.Second, func(sessCtx mongo.SessionContext) error {
		return r.removeDocument(sessCtx, docID, time.Now())
	})
}

func (r *MongoRegistry) transaction(ctx context.Context, commitTime time.Duration, f func(sessCtx mongo.SessionContext) error) error {
	wc := writeconcern.New(writeconcern.WMajority())
	rc := readconcern.Snapshot()

	txnOpts := options.Transaction().
		SetWriteConcern(wc).
		SetReadConcern(rc).
		SetMaxCommitTime(&commitTime)

	sess, err := r.client.StartSession()
	if err != nil {
		return errors.Wrapf(registry.ErrCouldNotOpenTx, "mongo db session failed %v", err)
	}

	defer sess.EndSession(ctx)

	_, txErr := sess.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		if err := f(sessCtx); err != nil {
			return nil, err
		}

		return nil, nil
	}, txnOpts)

	return txErr
}
