package api

import (
	"github.com/joseph-ayodele/awb-extractor/constants"
	"github.com/joseph-ayodele/awb-extractor/internal/entity"
)

type envelope struct {
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
	Meta  any    `json:"meta,omitempty"`
}

type extractRequest struct {
	Text string `json:"text"`
}

type extractMeta struct {
	Status    constants.DocumentStatus `json:"status"`
	Defaulted []constants.Field        `json:"defaulted"`
	Cached    bool                     `json:"cached"`
	Persisted bool                     `json:"persisted"`
}

type batchRequest struct {
	Documents []batchDocument `json:"documents"`
}

type batchDocument struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type batchItem struct {
	ID    string            `json:"id"`
	Data  *entity.AWBRecord `json:"data,omitempty"`
	Error string            `json:"error,omitempty"`
}

const maxBatchDocuments = 500
