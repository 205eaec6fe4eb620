// Package schema holds the JSON Schema of an extracted AWB record and validates
// serialized records against it.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/awb-extractor/constants"
)

// BuildRecordJSONSchema returns the record schema (draft 2020-12 subset) as a generic map.
func BuildRecordJSONSchema() map[string]any {
	props := map[string]any{
		"id":       map[string]any{"type": "string", "format": "uuid"},
		"order_id": nonEmpty(),
		"platform": map[string]any{
			"type": "string",
			"enum": constants.PlatformsAsStringSlice(),
		},
		"ship_date":       map[string]any{"type": "string", "pattern": `^\d{4}-\d{2}-\d{2}$`},
		"ship_time":       map[string]any{"type": "string", "pattern": `^\d{2}:\d{2}$`},
		"tracking_number": nonEmpty(),
		"courier":         nonEmpty(),
		"payment_status": map[string]any{
			"type": "string",
			"enum": []string{string(constants.PaymentCOD), string(constants.PaymentCashless)},
		},
		"cod_amount":     map[string]any{"type": "string", "pattern": `^(0|\d+\.\d{2}) MYR$`},
		"customer_name":  nonEmpty(),
		"customer_phone": nonEmpty(),
		"customer_address": map[string]any{
			"type":      "string",
			"minLength": constants.MinAddressLength,
			"maxLength": constants.MaxAddressLength,
		},
		"product_name": nonEmpty(),
		"sku":          nonEmpty(),
		"quantity":     map[string]any{"type": "integer", "minimum": 1},
		"seller":       nonEmpty(),
	}

	required := make([]string, 0, len(props))
	required = append(required, "id", "platform")
	for _, f := range constants.AllFields {
		required = append(required, string(f))
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
		"required":             required,
	}
}

func nonEmpty() map[string]any {
	return map[string]any{"type": "string", "minLength": 1}
}

// Validator is a compiled schema, safe for concurrent use.
type Validator struct {
	schema *jsonschema.Schema
}

// NewValidator compiles schemaMap.
func NewValidator(schemaMap map[string]any) (*Validator, error) {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	s, err := compiler.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Validator{schema: s}, nil
}

// NewRecordValidator compiles BuildRecordJSONSchema.
func NewRecordValidator() (*Validator, error) {
	return NewValidator(BuildRecordJSONSchema())
}

// Validate checks a JSON document.
func (v *Validator) Validate(data []byte) error {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := v.schema.Validate(doc); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}

// ValidateValue marshals value and validates the result.
func (v *Validator) ValidateValue(value any) error {
	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal value: %w", err)
	}
	return v.Validate(b)
}

// ValidateJSONAgainstSchema validates data against schemaMap in one shot.
func ValidateJSONAgainstSchema(schemaMap map[string]any, data []byte) error {
	v, err := NewValidator(schemaMap)
	if err != nil {
		return err
	}
	return v.Validate(data)
}
