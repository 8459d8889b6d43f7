package httputils

import (
	"net/http"

	"boscoin.io/devote/lib/errors"
)

var ErrorsToStatus = map[uint]int{
	errors.NotFound.Code:                  http.StatusNotFound,
	errors.TransactionNotFound.Code:       http.StatusNotFound,
	errors.StorageRecordDoesNotExist.Code: http.StatusNotFound,
	errors.TooManyRequests.Code:           http.StatusTooManyRequests,
	errors.StorageCoreError.Code:          http.StatusInternalServerError,
	errors.HTTPServerError.Code:           http.StatusInternalServerError,
	errors.ContentTypeNotJSON.Code:        http.StatusUnsupportedMediaType,
}

// StatusCode returns the http status for err; known *errors.Error which are
// not mapped in ErrorsToStatus are client errors.
func StatusCode(err error) int {
	e, ok := errors.As(err)
	if !ok {
		return http.StatusInternalServerError
	}

	if status, found := ErrorsToStatus[e.Code]; found {
		return status
	}

	return http.StatusBadRequest
}

// WriteJSONError writes err as problem document.
func WriteJSONError(w http.ResponseWriter, err error) {
	WriteJSON(w, StatusCode(err), err)
}

func IsJSONContentType(r *http.Request) bool {
	return r.Header.Get("Content-Type") == "application/json"
}
