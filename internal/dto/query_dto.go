package dto

import (
	"mongolens-be/pkg/mongodb/query"

	"go.mongodb.org/mongo-driver/bson"
)

type DocumentsRequest struct {
	QueryId    string       `json:"queryId"`
	Collection string       `json:"collection" validate:"required"`
	Skip       int64        `json:"skip" validate:"min=0"`
	Limit      int64        `json:"limit" validate:"required,min=1"`
	Params     query.Params `json:"params"`
}

type AllDocumentsRequest struct {
	QueryId    string       `json:"queryId"`
	Collection string       `json:"collection" validate:"required"`
	Params     query.Params `json:"params"`
}

type CountRequest struct {
	QueryId    string       `json:"queryId"`
	Collection string       `json:"collection" validate:"required"`
	Params     query.Params `json:"params"`
}

type CancelQueryRequest struct {
	QueryId string `json:"queryId" validate:"required"`
}

type DocumentsResponse struct {
	Documents []bson.M `json:"documents"`
	Warnings  []string `json:"warnings,omitempty"`
}

type CountResponse struct {
	Count int64 `json:"count"`
}

type CollectionsResponse struct {
	Collections []string `json:"collections"`
}

type SchemaResponse struct {
	SchemaMap       map[string][]string `json:"schemaMap"`
	SampleDocuments []bson.M            `json:"sampleDocuments"`
}
