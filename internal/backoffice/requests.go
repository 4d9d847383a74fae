package backoffice

import "io"

type createDocumentDTO struct {
	originalName string
	size         int64
	namespace    string
	source       io.Reader
}

type preparedContent struct {
	content io.Reader
}
