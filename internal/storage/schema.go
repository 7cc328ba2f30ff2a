/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"embed"
	"fmt"
	"strings"
	"sync"

	gojsonschema "github.com/xeipuuv/gojsonschema"
)

//go:embed schema/*.json
var schemaFS embed.FS

var (
	schemaOnce sync.Once
	schemas    map[string]*gojsonschema.Schema
	schemaErr  error
)

const (
	transformsSchema = "transforms.schema.json"
	deletedSchema    = "deleted.schema.json"
)

func loadSchemas() {
	schemas = make(map[string]*gojsonschema.Schema, 2)
	for _, name := range []string{transformsSchema, deletedSchema} {
		b, err := schemaFS.ReadFile("schema/" + name)
		if err != nil {
			schemaErr = fmt.Errorf("read schema %s: %w", name, err)
			return
		}
		s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(b))
		if err != nil {
			schemaErr = fmt.Errorf("compile schema %s: %w", name, err)
			return
		}
		schemas[name] = s
	}
}

// SchemaError lists the violations of a rejected document.
type SchemaError struct {
	Schema string
	Issues []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: %s", e.Schema, strings.Join(e.Issues, "; "))
}

// ValidateTransforms checks raw against the persisted transforms schema.
func ValidateTransforms(raw []byte) error { return validate(transformsSchema, raw) }

// ValidateDeleted checks raw against the tombstone list schema.
func ValidateDeleted(raw []byte) error { return validate(deletedSchema, raw) }

func validate(name string, raw []byte) error {
	schemaOnce.Do(loadSchemas)
	if schemaErr != nil {
		return schemaErr
	}
	res, err := schemas[name].Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return fmt.Errorf("validate %s: %w", name, err)
	}
	if res.Valid() {
		return nil
	}
	se := &SchemaError{Schema: name}
	for _, e := range res.Errors() {
		se.Issues = append(se.Issues, e.String())
	}
	return se
}
