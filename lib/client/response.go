package client

import (
	"fmt"
)

type Problem struct {
	Type     string                 `json:"type"`
	Title    string                 `json:"title"`
	Status   int                    `json:"status"`
	Detail   string                 `json:"detail,omitempty"`
	Instance string                 `json:"instance,omitempty"`
	Code     uint                   `json:"code,omitempty"`
	Data     map[string]interface{} `json:"data,omitempty"`
}

// Error is returned when the API answers with a problem document.
type Error struct {
	Problem Problem
}

func (e Error) Error() string {
	if len(e.Problem.Detail) < 1 {
		return fmt.Sprintf("%d %s", e.Problem.Status, e.Problem.Title)
	}

	return fmt.Sprintf("%d %s: %s", e.Problem.Status, e.Problem.Title, e.Problem.Detail)
}

type Link struct {
	Href      string `json:"href"`
	Templated bool   `json:"templated,omitempty"`
}

type Account struct {
	Links struct {
		Self Link `json:"self"`
	} `json:"_links"`

	Address    string `json:"address"`
	SequenceID uint64 `json:"sequence_id"`
}

type TransactionPost struct {
	Links struct {
		Self   Link `json:"self"`
		Status Link `json:"status"`
	} `json:"_links"`
	Hash   string `json:"hash"`
	Status string `json:"status"`
}

type TransactionStatus struct {
	Links struct {
		Self Link `json:"self"`
	} `json:"_links"`
	Hash       string `json:"hash"`
	Source     string `json:"source"`
	Operation  string `json:"operation"`
	SequenceID uint64 `json:"sequence_id"`
	Status     string `json:"status"`
	Height     uint64 `json:"height"`
	Reason     string `json:"reason"`
}
