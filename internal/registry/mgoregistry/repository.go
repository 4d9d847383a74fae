package mgoregistry

import (
	"time"

	"github.com/denismitr/redactor/internal/document"
	"github.com/denismitr/redactor/internal/registry"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (r *MongoRegistry) getDocuments(ctx mongo.SessionContext, filter document.Filter) ([]documentRecord, int64, error) {
	var records []documentRecord

	query := mapFilterToQuery(filter)

	opts := options.Find()
	opts.SetSkip(int64(filter.Offset()))
	opts.SetLimit(int64(filter.Limit()))
	opts.SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.documents.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, errors.Wrapf(registry.ErrRegistryReadFailed, "mongodb could not find documents by filter %v", query)
	}

	if err := cursor.All(ctx, &records); err != nil {
		return nil, 0, errors.Wrapf(registry.ErrRegistryReadFailed, "mongodb could not decode documents: %v", err)
	}

	total, err := r.documents.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, errors.Wrapf(registry.ErrRegistryReadFailed, "mongodb could not count documents: %v", err)
	}

	return records, total, nil
}

func (r *MongoRegistry) getDocumentByID(ctx mongo.SessionContext, ID primitive.ObjectID) (*documentRecord, error) {
	var record documentRecord
	if err := r.documents.FindOne(ctx, activeDocumentQuery(ID)).Decode(&record); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, errors.Wrapf(registry.ErrEntityNotFound, "document with ID [%s]", ID.Hex())
		}

		return nil, errors.Wrapf(registry.ErrRegistryReadFailed, "mongodb could not get document with id %s", ID.Hex())
	}

	return &record, nil
}

func (r *MongoRegistry) createDocument(ctx mongo.SessionContext, dr *documentRecord) error {
	count, err := r.documents.CountDocuments(ctx, bson.M{"namespace": dr.Namespace, "key": dr.Key})
	if err != nil {
		return errors.Wrapf(registry.ErrRegistryReadFailed, "mongodb could not check document key %s", dr.Key)
	}

	if count > 0 {
		return errors.Wrapf(
			registry.ErrEntityAlreadyExists,
			"document with key %s already exists in namespace %s",
			dr.Key, dr.Namespace)
	}

	result, err := r.documents.InsertOne(ctx, dr)
	if err != nil || result == nil {
		return errors.Wrapf(registry.ErrRegistryWriteFailed, "could not insert document into MongoDB collection %v", err)
	}

	return nil
}

func (r *MongoRegistry) removeDocument(ctx mongo.SessionContext, ID primitive.ObjectID, now time.Time) error {
	result, err := r.documents.UpdateOne(ctx, activeDocumentQuery(ID), softRemoveUpdate(now))
	if err != nil {
		return errors.Wrapf(registry.ErrRegistryWriteFailed, "could not remove document %s: %v", ID.Hex(), err)
	}

	if result.MatchedCount == 0 {
		return errors.Wrapf(registry.ErrEntityNotFound, "document with ID [%s]", ID.Hex())
	}

	return nil
}
