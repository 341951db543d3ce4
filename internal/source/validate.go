package source

import (
	"fmt"

	"go-agg-engine/internal/model"
	"go-agg-engine/pkg/utils"
)

// ValidateRecords applies the source's rules before any scatter work starts.
// The first violation aborts the whole job: a partially validated input
// cannot produce a trustworthy aggregate.
func ValidateRecords(records []model.GenericRecord, rules *model.ValidationRules) error {
	if rules == nil {
		return nil
	}
	for i, rec := range records {
		if err := validateRecord(rec, rules); err != nil {
			return fmt.Errorf("validation failed at record %d: %w", i, err)
		}
	}
	return nil
}

// validateRecord checks one record against the rules.
func validateRecord(rec model.GenericRecord, rules *model.ValidationRules) error {
	for _, field := range rules.RequiredFields {
		if _, ok := rec[field]; !ok {
			return fmt.Errorf("missing required field %q", field)
		}
	}

	for _, field := range rules.NumericFields {
		v, ok := rec[field]
		if !ok {
			continue
		}
		if _, numeric := utils.Float64(v); !numeric {
			return fmt.Errorf("field %q must be numeric, got %v (%T)", field, v, v)
		}
	}

	for field, min := range rules.MinValues {
		if v, ok := rec[field]; ok {
			if f, numeric := utils.Float64(v); numeric && f < min {
				return fmt.Errorf("field %q value %v below minimum %v", field, f, min)
			}
		}
	}

	for field, max := range rules.MaxValues {
		if v, ok := rec[field]; ok {
			if f, numeric := utils.Float64(v); numeric && f > max {
				return fmt.Errorf("field %q value %v above maximum %v", field, f, max)
			}
		}
	}

	return nil
}
