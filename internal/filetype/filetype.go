package filetype

import (
	"sort"
	"strings"

	"github.com/pkg/errors"
)

var ErrInvalidArgument = errors.New("invalid argument")

// FileType is one of the document formats the pipeline accepts
type FileType string

const (
	JPG  FileType = "jpg"
	JPEG FileType = "jpeg"
	PNG  FileType = "png"
	PDF  FileType = "pdf"
)

// extensions maps a lowercase extension, as it appears in a filename, to its FileType
var extensions = map[string]FileType{
	"jpg":  JPG,
	"jpeg": JPEG,
	"png":  PNG,
	"pdf":  PDF,
}

// imageTypes are the file types allowed for image redaction
var imageTypes = map[FileType]struct{}{
	JPEG: {},
	JPG:  {},
	PNG:  {},
}

var mimes = map[FileType]string{
	JPG:  "image/jpeg",
	JPEG: "image/jpeg",
	PNG:  "image/png",
	PDF:  "application/pdf",
}

func (ft FileType) String() string {
	return string(ft)
}

func (ft FileType) Valid() bool {
	_, ok := mimes[ft]
	return ok
}

func (ft FileType) IsImage() bool {
	return IsSupportedImageType(ft)
}

// GetFileExtension returns everything after the last dot of the file name,
// case preserved. A name whose only dot is the first character has no extension.
func GetFileExtension(fileName string) (string, error) {
	dotIndex := strings.LastIndex(fileName, ".")
	if dotIndex > 0 {
		return fileName[dotIndex+1:], nil
	}

	return "", errors.Wrapf(ErrInvalidArgument, "no extension found for file %s", fileName)
}

func GetFileType(fileName string) (FileType, error) {
	ext, err := GetFileExtension(fileName)
	if err != nil {
		return "", err
	}

	ft, ok := Lookup(ext)
	if !ok {
		return "", errors.Wrapf(
			ErrInvalidArgument,
			"extension '%s' is not supported for filename '%s'",
			ext, fileName)
	}

	return ft, nil
}

// Lookup resolves an extension without the leading dot, ignoring case
func Lookup(ext string) (FileType, bool) {
	ft, ok := extensions[strings.ToLower(ext)]
	return ft, ok
}

func IsSupportedImageType(ft FileType) bool {
	_, ok := imageTypes[ft]
	return ok
}

// Parse decodes a file type name as stored in the registry or sent by clients
func Parse(s string) (FileType, error) {
	ft := FileType(strings.ToLower(strings.TrimSpace(s)))
	if !ft.Valid() {
		return "", errors.Wrapf(ErrInvalidArgument, "unknown file type '%s'", s)
	}

	return ft, nil
}

func MimeType(ft FileType) (string, error) {
	if m, ok := mimes[ft]; ok {
		return m, nil
	}

	return "", errors.Wrapf(ErrInvalidArgument, "mime type unsupported for %s", ft)
}

// Extensions returns a sorted copy of every recognized extension
func Extensions() []string {
	result := make([]string, 0, len(extensions))
	for ext := range extensions {
		result = append(result, ext)
	}

	sort.Strings(result)

	return result
}

// SupportedImageTypes returns a sorted copy of the image redaction subset
func SupportedImageTypes() []FileType {
	result := make([]FileType, 0, len(imageTypes))
	for ft := range imageTypes {
		result = append(result, ft)
	}

	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })

	return result
}
