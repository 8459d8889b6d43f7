package httputils

import (
	"fmt"
	"net/http"

	"boscoin.io/devote/lib/errors"
)

const (
	ProblemTypeDefault = "about:blank"
	ProblemTypePrefix  = "https://boscoin.io/devote/problems/"
)

// Problem is the `application/problem+json` document described in RFC 7807.
// `code` and `data` carry the *errors.Error the problem was made from.
type Problem struct {
	Type     string                 `json:"type"`
	Title    string                 `json:"title"`
	Status   int                    `json:"status"`
	Detail   string                 `json:"detail,omitempty"`
	Instance string                 `json:"instance,omitempty"`
	Code     uint                   `json:"code,omitempty"`
	Data     map[string]interface{} `json:"data,omitempty"`
}

func NewStatusProblem(status int) Problem {
	return Problem{
		Type:   ProblemTypeDefault,
		Title:  http.StatusText(status),
		Status: status,
	}
}

func NewDetailedStatusProblem(status int, detail string) Problem {
	p := NewStatusProblem(status)
	p.Detail = detail
	return p
}

func NewErrorProblem(err error, status int) Problem {
	e, ok := errors.As(err)
	if !ok {
		return NewDetailedStatusProblem(status, err.Error())
	}

	return Problem{
		Type:   fmt.Sprintf("%s%d", ProblemTypePrefix, e.Code),
		Title:  e.Message,
		Status: status,
		Code:   e.Code,
		Data:   e.Data,
	}
}

func (p Problem) SetInstance(instance string) Problem {
	p.Instance = instance
	return p
}
