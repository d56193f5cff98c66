package jsonapi

import (
	"net/http"
	"strconv"
)

// ErrorObject is a single JSON:API error.
type ErrorObject struct {
	Status string `json:"status"`
	Title  string `json:"title"`
	Detail string `json:"detail,omitempty"`
}

// ErrorDocument is the top-level error envelope.
type ErrorDocument struct {
	Errors []ErrorObject `json:"errors"`
}

// NewErrorDocument builds an error envelope for a single error.
func NewErrorDocument(statusCode int, detail string) ErrorDocument {
	return ErrorDocument{
		Errors: []ErrorObject{
			{
				Status: strconv.Itoa(statusCode),
				Title:  http.StatusText(statusCode),
				Detail: detail,
			},
		},
	}
}
