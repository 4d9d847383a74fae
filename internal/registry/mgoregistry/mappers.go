package mgoregistry

import (
	"fmt"
	"time"

	"github.com/denismitr/redactor/internal/document"
	"github.com/denismitr/redactor/internal/filetype"
	"github.com/denismitr/redactor/internal/registry"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type documentRecord struct {
	ID            primitive.ObjectID `bson:"_id"`
	Name          string             `bson:"name"`
	OriginalName  string             `bson:"originalName"`
	Extension     string             `bson:"extension"`
	FileType      string             `bson:"fileType"`
	Mime          string             `bson:"mime"`
	Size          int                `bson:"size"`
	Width         int                `bson:"width"`
	Height        int                `bson:"height"`
	Namespace     string             `bson:"namespace"`
	Key           string             `bson:"key"`
	ImageEligible bool               `bson:"imageEligible"`
	Oriented      bool               `bson:"oriented"`
	Status        string             `bson:"status"`
	CreatedAt     time.Time          `bson:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt"`
}

func mapDocumentToMongoRecord(doc *document.Document) *documentRecord {
	if doc.ID.None() {
		panic("how can document ID be empty")
	}

	docID, err := primitive.ObjectIDFromHex(doc.ID.String())
	if err != nil {
		panic(fmt.Sprintf("invalid document ID [%s]", doc.ID.String()))
	}

	return &documentRecord{
		ID:            docID,
		Name:          doc.Name,
		OriginalName:  doc.OriginalName,
		Extension:     doc.Extension,
		FileType:      doc.FileType.String(),
		Mime:          doc.Mime,
		Size:          doc.Size,
		Width:         doc.Width,
		Height:        doc.Height,
		Namespace:     doc.Namespace,
		Key:           doc.Key,
		ImageEligible: doc.ImageEligible,
		Oriented:      doc.Oriented,
		Status:        string(doc.Status),
		CreatedAt:     doc.CreatedAt,
		UpdatedAt:     doc.UpdatedAt,
	}
}

func mapMongoRecordToDocument(dr *documentRecord) (*document.Document, error) {
	ft, err := filetype.Parse(dr.FileType)
	if err != nil {
		return nil, errors.Wrapf(registry.ErrRegistryReadFailed, "document [%s] has corrupt file type: %v", dr.ID.Hex(), err)
	}

	return &document.Document{
		ID:            document.ID(dr.ID.Hex()),
		Name:          dr.Name,
		OriginalName:  dr.OriginalName,
		Extension:     dr.Extension,
		FileType:      ft,
		Mime:          dr.Mime,
		Size:          dr.Size,
		Width:         dr.Width,
		Height:        dr.Height,
		Namespace:     dr.Namespace,
		Key:           dr.Key,
		ImageEligible: dr.ImageEligible,
		Oriented:      dr.Oriented,
		Status:        document.Status(dr.Status),
		CreatedAt:     dr.CreatedAt,
		UpdatedAt:     dr.UpdatedAt,
	}, nil
}

// removed documents stay in the collection but are invisible to lookups
func activeDocumentQuery(ID primitive.ObjectID) bson.M {
	return bson.M{"_id": ID, "status": bson.M{"$ne": string(document.Removed)}}
}

func softRemoveUpdate(now time.Time) bson.M {
	return bson.M{"$set": bson.M{"status": string(document.Removed), "updatedAt": now}}
}

func mapFilterToQuery(f document.Filter) bson.M {
	query := bson.M{"status": string(document.Ready)}

	if f.Namespace != "" {
		query["namespace"] = f.Namespace
	}

	if f.FileType != "" {
		query["fileType"] = f.FileType.String()
	}

	if f.OnlyImages {
		query["imageEligible"] = true
	}

	return query
}
