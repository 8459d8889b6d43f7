package errors

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"sort"

	"github.com/ethereum/go-ethereum/rlp"
)

type Error struct {
	Code    uint                   `json:"code"`
	Message string                 `json:"message"`
	Data    map[string]interface{} `json:"data,omitempty" rlp:"-"`

	cause error
}

func (o *Error) Serialize() (b []byte, err error) {
	b, err = json.Marshal(o)
	return
}

func (o *Error) Error() string {
	b, _ := o.Serialize()
	return string(b)
}

func (o *Error) SetData(k string, v interface{}) *Error {
	if o.Data == nil {
		o.Data = map[string]interface{}{}
	}
	o.Data[k] = v

	return o
}

// Wrap returns a copy of the error which carries `err` as its cause. The
// cause message is kept in `Data["cause"]` so it survives serialization.
func (o *Error) Wrap(err error) *Error {
	n := o.Clone()
	if err == nil {
		return n
	}
	n.cause = err
	n.Data["cause"] = err.Error()

	return n
}

func (o *Error) Unwrap() error {
	return o.cause
}

// Is reports whether target is an *Error with the same code, so cloned
// errors match their sentinel with the standard `errors.Is`.
func (o *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || o == nil || t == nil {
		return false
	}

	return o.Code == t.Code
}

func (o *Error) Clone() *Error {
	var new Error
	new = *o

	new.Data = map[string]interface{}{}
	if o.Data != nil && len(o.Data) > 0 {
		for k, v := range o.Data {
			new.Data[k] = v
		}
	}

	return &new
}

func (o *Error) EncodeRLP(w io.Writer) (err error) {
	if o == nil {
		return rlp.Encode(w, []uint{})
	}

	if o.Data != nil && len(o.Data) > 0 {
		var d [][2]interface{}

		var keys []string
		for k, _ := range o.Data {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			d = append(d, [2]interface{}{k, o.Data[k]})
		}
		err = rlp.Encode(w, d)
	}

	return rlp.Encode(w, struct {
		Code    uint
		Message string
	}{
		Code:    o.Code,
		Message: o.Message,
	})
}

func NewError(code uint, message string) *Error {
	return &Error{Code: code, Message: message, Data: map[string]interface{}{}}
}

// New creates a plain error; it is here so callers importing this package
// under the name `errors` do not need the standard library as well.
func New(message string) error {
	return stderrors.New(message)
}

// Is reports whether any error in err's chain matches the given kind.
func Is(err error, kind *Error) bool {
	return stderrors.Is(err, kind)
}

// As finds the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if !stderrors.As(err, &e) {
		return nil, false
	}

	return e, true
}
