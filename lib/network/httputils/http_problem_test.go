package httputils

import (
	"encoding/json"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"

	"boscoin.io/devote/lib/errors"
)

func getProblem(t *testing.T, url string) (*http.Response, map[string]interface{}) {
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	b, err := ioutil.ReadAll(resp.Body)
	require.NoError(t, err)

	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &m))

	return resp, m
}

func TestProblem(t *testing.T) {
	router := mux.NewRouter()

	statusProblem := NewStatusProblem(http.StatusBadRequest)
	detailedStatusProblem := NewDetailedStatusProblem(http.StatusBadRequest, "paramaters are not enough")
	notEligible := errors.NotEligible.Clone().SetData("address", "GABC")

	router.HandleFunc("/problem_status_default", func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, 400, statusProblem)
	})
	router.HandleFunc("/problem_status_with_detail_instance", func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, 400, detailedStatusProblem.SetInstance("http://boscoin.io/httperror/details/1"))
	})
	router.HandleFunc("/problem_with_error", func(w http.ResponseWriter, r *http.Request) {
		WriteJSONError(w, notEligible)
	})
	router.HandleFunc("/problem_with_not_found", func(w http.ResponseWriter, r *http.Request) {
		WriteJSONError(w, errors.StorageRecordDoesNotExist)
	})

	ts := httptest.NewServer(router)
	defer ts.Close()

	{ // problem_status_default
		resp, m := getProblem(t, ts.URL+"/problem_status_default")
		require.Equal(t, "application/problem+json", resp.Header.Get("Content-Type"))
		require.Equal(t, statusProblem.Type, m["type"])
		require.Equal(t, statusProblem.Title, m["title"])
		require.Equal(t, float64(statusProblem.Status), m["status"])
		require.Empty(t, m["detail"])
		require.Empty(t, m["instance"])
	}

	{ // problem_status_with_detail_instance
		_, m := getProblem(t, ts.URL+"/problem_status_with_detail_instance")
		require.Equal(t, detailedStatusProblem.Detail, m["detail"])
		require.Equal(t, "http://boscoin.io/httperror/details/1", m["instance"])
	}

	{ // problem_with_error
		resp, m := getProblem(t, ts.URL+"/problem_with_error")
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		require.Equal(t, errors.NotEligible.Message, m["title"])
		require.Equal(t, float64(errors.NotEligible.Code), m["code"])
		require.Equal(t, map[string]interface{}{"address": "GABC"}, m["data"])
	}

	{ // problem_with_not_found
		resp, m := getProblem(t, ts.URL+"/problem_with_not_found")
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
		require.Equal(t, float64(errors.StorageRecordDoesNotExist.Code), m["code"])
	}
}

func TestStatusCode(t *testing.T) {
	require.Equal(t, http.StatusBadRequest, StatusCode(errors.InvalidSequenceID))
	require.Equal(t, http.StatusTooManyRequests, StatusCode(errors.TooManyRequests.Clone()))
	require.Equal(t, http.StatusInternalServerError, StatusCode(errors.New("unknown")))
}
