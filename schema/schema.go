// Package schema checks response bodies against the JSON Schemas that describe the shape of the
// backend's records: which fields are required, and which values are enumerated.
package schema

import (
	"embed"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schemas/*.json
var schemaFiles embed.FS

type Name string

const (
	Vacation       Name = "vacation"
	AdminVacations Name = "admin_vacations"
	Attendance     Name = "attendance"
	TeamStatus     Name = "team_status"
	Login          Name = "login"
	GenericSuccess Name = "generic_success"
)

var (
	compiled     = make(map[Name]*gojsonschema.Schema)
	compiledLock sync.Mutex
)

// ValidationError lists every way in which a document failed to match a schema.
type ValidationError struct {
	Schema   Name
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("response does not match %s schema: %s", e.Schema, strings.Join(e.Problems, "; "))
}

// Validate checks a JSON document against the named schema. It returns a *ValidationError if the
// document is well-formed but does not match, or some other error if it is not JSON at all.
func Validate(name Name, document []byte) error {
	s, err := load(name)
	if err != nil {
		return err
	}
	result, err := s.Validate(gojsonschema.NewBytesLoader(document))
	if err != nil {
		return fmt.Errorf("response is not valid JSON: %w", err)
	}
	if result.Valid() {
		return nil
	}
	verr := &ValidationError{Schema: name}
	for _, re := range result.Errors() {
		verr.Problems = append(verr.Problems, re.String())
	}
	return verr
}

func load(name Name) (*gojsonschema.Schema, error) {
	compiledLock.Lock()
	defer compiledLock.Unlock()
	if s, ok := compiled[name]; ok {
		return s, nil
	}
	data, err := schemaFiles.ReadFile("schemas/" + string(name) + ".json")
	if err != nil {
		return nil, fmt.Errorf("unknown schema %q: %w", name, err)
	}
	s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("schema %q does not compile: %w", name, err)
	}
	compiled[name] = s
	return s, nil
}
