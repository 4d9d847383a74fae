package document

import (
	"strings"
	"time"

	"github.com/denismitr/redactor/internal/filetype"
	"github.com/gosimple/slug"
)

type ID string

func (id ID) String() string {
	return string(id)
}

func (id ID) None() bool {
	return id == ""
}

type Status string

const (
	Unsaved Status = "unsaved"
	Pending Status = "pending"
	Ready   Status = "ready"
	Removed Status = "removed"
)

type Document struct {
	ID           ID     `json:"id"`
	Name         string `json:"name"`
	OriginalName string `json:"originalName"`

	// Extension as it appeared in the original name, case preserved
	Extension string            `json:"extension"`
	FileType  filetype.FileType `json:"fileType"`
	Mime      string            `json:"mime"`
	Size      int               `json:"size"`

	// Width and Height are known only for image eligible documents
	Width  int `json:"width,omitempty"`
	Height int `json:"height,omitempty"`

	Namespace string `json:"namespace"`

	// Key in storage: id/slugged-name.ext
	Key string `json:"key"`

	ImageEligible bool      `json:"imageEligible"`
	Oriented      bool      `json:"oriented"`
	Status        Status    `json:"status"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// New resolves the file type of originalName and prepares an unsaved document
func New(id ID, originalName, namespace string, size int, now time.Time) (*Document, error) {
	ext, err := filetype.GetFileExtension(originalName)
	if err != nil {
		return nil, err
	}

	ft, err := filetype.GetFileType(originalName)
	if err != nil {
		return nil, err
	}

	mime, err := filetype.MimeType(ft)
	if err != nil {
		return nil, err
	}

	return &Document{
		ID:            id,
		Name:          baseName(originalName),
		OriginalName:  originalName,
		Extension:     ext,
		FileType:      ft,
		Mime:          mime,
		Size:          size,
		Namespace:     namespace,
		Key:           ComputeKey(id, originalName, ft),
		ImageEligible: filetype.IsSupportedImageType(ft),
		Status:        Unsaved,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// Filename is the last segment of the storage key
func (d *Document) Filename() string {
	if i := strings.LastIndex(d.Key, "/"); i >= 0 {
		return d.Key[i+1:]
	}

	return d.Key
}

func ComputeKey(id ID, originalName string, ft filetype.FileType) string {
	name := slug.Make(baseName(originalName))
	if name == "" {
		name = id.String()
	}

	return id.String() + "/" + name + "." + ft.String()
}

func ComputePath(namespace string, key string) string {
	return namespace + "/" + key
}

func baseName(fileName string) string {
	if i := strings.LastIndex(fileName, "."); i > 0 {
		return fileName[:i]
	}

	return fileName
}
