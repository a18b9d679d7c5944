package model

import (
	"encoding/json"
	"reflect"
	"strings"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Jobs and applications are free-form documents: body fields the portal does
// not model are kept in Extra, stored inline and written back on read.

var knownFieldCache sync.Map

// knownFields returns the JSON names of t's struct fields.
func knownFields(t reflect.Type) map[string]struct{} {
	if cached, ok := knownFieldCache.Load(t); ok {
		return cached.(map[string]struct{})
	}
	names := make(map[string]struct{}, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		switch name {
		case "-":
			continue
		case "":
			name = f.Name
		}
		names[name] = struct{}{}
	}
	knownFieldCache.Store(t, names)
	return names
}

// splitExtra returns the top-level keys of data that are not fields of t.
// Keys starting with '$' are dropped.
func splitExtra(data []byte, t reflect.Type) (bson.M, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	known := knownFields(t)
	var extra bson.M
	for key, value := range raw {
		if _, ok := known[key]; ok || strings.HasPrefix(key, "$") {
			continue
		}
		if extra == nil {
			extra = bson.M{}
		}
		extra[key] = value
	}
	return extra, nil
}

// mergeExtra adds extra to the JSON object known. Modelled fields win.
func mergeExtra(known []byte, extra bson.M) ([]byte, error) {
	if len(extra) == 0 {
		return known, nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(known, &fields); err != nil {
		return nil, err
	}
	merged := make(map[string]interface{}, len(fields)+len(extra))
	for key, value := range extra {
		merged[key] = plain(value)
	}
	for key, value := range fields {
		merged[key] = value
	}
	return json.Marshal(merged)
}

// plain turns the ordered documents and arrays the driver decodes into
// values encoding/json renders as objects and arrays.
func plain(v interface{}) interface{} {
	switch val := v.(type) {
	case primitive.D:
		m := make(map[string]interface{}, len(val))
		for _, e := range val {
			m[e.Key] = plain(e.Value)
		}
		return m
	case primitive.M:
		m := make(map[string]interface{}, len(val))
		for k, e := range val {
			m[k] = plain(e)
		}
		return m
	case map[string]interface{}:
		m := make(map[string]interface{}, len(val))
		for k, e := range val {
			m[k] = plain(e)
		}
		return m
	case primitive.A:
		out := make([]interface{}, len(val))
		for i, e := range val {
			out[i] = plain(e)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, e := range val {
			out[i] = plain(e)
		}
		return out
	}
	return v
}
