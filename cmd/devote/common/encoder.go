package common

import (
	"encoding/json"
	"io"

	"gopkg.in/yaml.v2"
)

type Encode func(v interface{}, w io.Writer) error

var DefaultEncodes = map[string]Encode{
	"json": func(v interface{}, w io.Writer) error {
		return jsonEncode(v, w, false)
	},
	"prettyjson": func(v interface{}, w io.Writer) error {
		return jsonEncode(v, w, true)
	},
	"yaml": yamlEncode,
}

func jsonEncode(v interface{}, w io.Writer, pretty bool) error {
	e := json.NewEncoder(w)
	if pretty {
		e.SetIndent("", "  ")
	}

	return e.Encode(&v)
}

// yamlEncode goes through json first, so the yaml keys follow the json
// tags of `v`.
func yamlEncode(v interface{}, w io.Writer) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}

	var m yaml.MapSlice
	if err = yaml.Unmarshal(b, &m); err != nil {
		return err
	}

	e := yaml.NewEncoder(w)
	defer e.Close()

	return e.Encode(m)
}

// GetEncode returns the encoder of `format` from `encodes`, falling back to
// `DefaultEncodes`.
func GetEncode(format string, encodes map[string]Encode) (Encode, bool) {
	if encode, found := encodes[format]; found {
		return encode, true
	}
	encode, found := DefaultEncodes[format]

	return encode, found
}
