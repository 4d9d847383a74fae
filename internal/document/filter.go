package document

import "github.com/denismitr/redactor/internal/filetype"

const DefaultPerPage = 25

type Pagination struct {
	Page    uint
	PerPage uint
}

func (p Pagination) Limit() uint {
	if p.PerPage == 0 {
		return DefaultPerPage
	}

	return p.PerPage
}

func (p Pagination) Offset() uint {
	if p.Page < 2 {
		return 0
	}

	return (p.Page - 1) * p.Limit()
}

type Filter struct {
	Namespace  string
	FileType   filetype.FileType
	OnlyImages bool
	Pagination
}

type Meta struct {
	Total   uint `json:"total"`
	Page    uint `json:"page"`
	PerPage uint `json:"perPage"`
}

type Collection struct {
	Documents []Document `json:"data"`
	Meta      Meta       `json:"meta"`
}
