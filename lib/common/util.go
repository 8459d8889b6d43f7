package common

import (
	"encoding/json"
	"os"
	"sort"
	"strings"

	uuid "github.com/satori/go.uuid"
)

func GenerateUUID() string {
	return uuid.Must(uuid.NewV4(), nil).String()
}

func GetENVValue(key, defaultValue string) (v string) {
	var found bool
	if v, found = os.LookupEnv(key); !found {
		return defaultValue
	}

	return
}

func InStringArray(a []string, s string) (index int, found bool) {
	var h string
	for index, h = range a {
		found = h == s
		if found {
			return
		}
	}

	index = -1
	return
}

// UniqueStrings returns the non-empty items of `a` in their first-seen
// order without duplicates.
func UniqueStrings(a []string) []string {
	seen := map[string]bool{}
	var b []string
	for _, s := range a {
		s = strings.TrimSpace(s)
		if len(s) < 1 || seen[s] {
			continue
		}
		seen[s] = true
		b = append(b, s)
	}

	return b
}

// SortedKeys returns the keys of a string set in lexical order.
func SortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return keys
}

func MustMarshalJSON(o interface{}) []byte {
	b, _ := json.Marshal(o)
	return b
}

func JSONMarshalIndent(o interface{}) ([]byte, error) {
	return json.MarshalIndent(o, "", "  ")
}
