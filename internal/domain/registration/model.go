package registration

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Column kinds accepted by update rules.
const (
	KindText   = "text"
	KindNumber = "number"
	KindBool   = "bool"
	KindDate   = "date" // YYYY-MM-DD
	KindURL    = "url"
)

// Columns every registration table carries and no client may write.
const (
	ColumnID        = "id"
	ColumnCreatedAt = "created_at"
	ColumnUpdatedAt = "updated_at"
)

// Domain errors
var (
	ErrEmptyUpdate    = errors.New("no fields to update")
	ErrUnknownColumn  = errors.New("unknown column")
	ErrReadOnlyColumn = errors.New("column is read-only")
	ErrInvalidValue   = errors.New("invalid value")
	ErrRequiredColumn = errors.New("column cannot be null")
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Rule constrains the values a client may write to one column.
type Rule struct {
	Kind     string
	Tag      string // validator tag applied after the kind check, e.g. "oneof=pix dinheiro"
	Nullable bool
}

// Form declares one registration table.
// Columns lists every readable column in display order; only columns with a Rule are writable.
type Form struct {
	Table   string
	Columns []string
	Rules   map[string]Rule
}

// HasColumn reports whether c is a column of the table.
// INVARIANT: Form fields are not mutated
func (f Form) HasColumn(c string) bool {
	return slices.Contains(f.Columns, c)
}

// Writable reports whether clients may update c.
// INVARIANT: Form fields are not mutated
func (f Form) Writable(c string) bool {
	_, ok := f.Rules[c]
	return ok
}

// ValidateUpdate checks a partial update against the column allowlist and rules.
// PRE: none
// POST: returns nil when every key is a writable column holding an acceptable value;
// errors wrap ErrUnknownColumn, ErrReadOnlyColumn, ErrRequiredColumn or ErrInvalidValue
func (f Form) ValidateUpdate(partial map[string]any) error {
	if len(partial) == 0 {
		return ErrEmptyUpdate
	}
	keys := make([]string, 0, len(partial))
	for k := range partial {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, col := range keys {
		if !f.HasColumn(col) {
			return fmt.Errorf("%w: %s", ErrUnknownColumn, col)
		}
		rule, ok := f.Rules[col]
		if !ok {
			return fmt.Errorf("%w: %s", ErrReadOnlyColumn, col)
		}
		if err := rule.check(partial[col]); err != nil {
			return fmt.Errorf("%s: %w", col, err)
		}
	}
	return nil
}

// check validates one value against the rule.
func (r Rule) check(v any) error {
	if v == nil {
		if r.Nullable {
			return nil
		}
		return ErrRequiredColumn
	}

	var value any
	switch r.Kind {
	case KindNumber:
		n, ok := asNumber(v)
		if !ok {
			return fmt.Errorf("%w: expected a number", ErrInvalidValue)
		}
		value = n
	case KindBool:
		b, ok := v.(bool)
		if !ok {
			return fmt.Errorf("%w: expected true or false", ErrInvalidValue)
		}
		value = b
	case KindDate:
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("%w: expected a date", ErrInvalidValue)
		}
		if _, err := time.Parse("2006-01-02", strings.TrimSpace(s)); err != nil {
			return fmt.Errorf("%w: expected YYYY-MM-DD", ErrInvalidValue)
		}
		value = s
	case KindURL:
		s, ok := v.(string)
		if !ok || validate.Var(s, "url") != nil {
			return fmt.Errorf("%w: expected a URL", ErrInvalidValue)
		}
		value = s
	default:
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("%w: expected text", ErrInvalidValue)
		}
		value = s
	}

	if r.Tag == "" {
		return nil
	}
	if err := validate.Var(value, r.Tag); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("%w: failed %s", ErrInvalidValue, verrs[0].ActualTag())
		}
		return fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}
	return nil
}

func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}
