package observer

import (
	"github.com/GianlucaGuarini/go-observable"
)

// TransactionObserver is triggered when the dev ledger settles a
// transaction.
var TransactionObserver = observable.New()

const (
	ResourceSnapshot    = "snapshot"
	ResourceTransaction = "tx"
	ConditionAll        = "*"
	ConditionPhase      = "phase"
	ConditionStatus     = "status"
	ConditionTxHash     = "txhash"
)

type Event struct {
	Resource  string `json:"resource"`
	Condition string `json:"condition"`
	Id        string `json:"id"`
}

func NewEvent(resource, condition, id string) Event {
	return Event{
		Resource:  resource,
		Condition: condition,
		Id:        id,
	}
}

func (e Event) String() string {
	toStr := e.Resource + "-"
	if e.Condition == ConditionAll {
		toStr += e.Condition
	} else {
		toStr += e.Condition + "="
		toStr += e.Id
	}
	return toStr
}
