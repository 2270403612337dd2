package repository

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

func assign(dest []any, values []any) error {
	if len(dest) != len(values) {
		return fmt.Errorf("scan: want %d values, got %d", len(dest), len(values))
	}
	for i, d := range dest {
		v := values[i]
		switch p := d.(type) {
		case *uuid.UUID:
			*p = v.(uuid.UUID)
		case *string:
			*p = v.(string)
		case **string:
			if v == nil {
				*p = nil
			} else {
				s := v.(string)
				*p = &s
			}
		case *int:
			*p = v.(int)
		case *bool:
			*p = v.(bool)
		case *time.Time:
			*p = v.(time.Time)
		case **time.Time:
			if v == nil {
				*p = nil
			} else {
				t := v.(time.Time)
				*p = &t
			}
		case *[]string:
			if v == nil {
				*p = nil
			} else {
				*p = v.([]string)
			}
		default:
			return fmt.Errorf("scan: unsupported type %T", d)
		}
	}
	return nil
}
