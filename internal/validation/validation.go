// Package validation holds the request rule sets that run before the item
// handlers touch the store.
package validation

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/stockroom/backend/internal/apperror"
	"github.com/stockroom/backend/internal/models"
)

const (
	MsgInvalidBody      = "Invalid request body"
	MsgInvalidID        = "Invalid ID format"
	MsgNameRequired     = "Name is required"
	MsgNameString       = "Name must be a string"
	MsgNameEmpty        = "Name cannot be empty"
	MsgQuantityNumber   = "Quantity must be a number"
	MsgQuantityInteger  = "Quantity must be a positive integer"
	MsgCategoryRequired = "Category is required"
	MsgCategoryString   = "Category must be a string"
	MsgCategoryEmpty    = "Category cannot be empty"
)

var validate = validator.New()

// ID checks that id is a 24 character hex ObjectID.
func ID(id string) (string, error) {
	if err := validate.Var(id, "required,mongodb"); err != nil {
		return "", apperror.InvalidInput(apperror.FieldError{Field: "id", Message: MsgInvalidID})
	}
	return id, nil
}

// Create applies the create rule set to a raw JSON body. All three fields
// are required.
func Create(body []byte) (models.CreateItemInput, error) {
	var in models.CreateItemInput

	fields, err := decodeObject(body)
	if err != nil {
		return in, err
	}

	var errs []apperror.FieldError

	if name, msg := requiredString(fields["name"], MsgNameRequired, MsgNameString); msg != "" {
		errs = append(errs, apperror.FieldError{Field: "name", Message: msg})
	} else {
		in.Name = sanitize(name)
	}

	if qty, msg := quantity(fields["quantity"]); msg != "" {
		errs = append(errs, apperror.FieldError{Field: "quantity", Message: msg})
	} else {
		in.Quantity = qty
	}

	if category, msg := requiredString(fields["category"], MsgCategoryRequired, MsgCategoryString); msg != "" {
		errs = append(errs, apperror.FieldError{Field: "category", Message: msg})
	} else {
		in.Category = sanitize(category)
	}

	if len(errs) > 0 {
		return models.CreateItemInput{}, apperror.InvalidInput(errs...)
	}
	return in, nil
}

// Update applies the update rule set. Absent fields are skipped; present ones
// must pass the same checks as on create and strings must not be empty.
func Update(body []byte) (models.UpdateItemInput, error) {
	var in models.UpdateItemInput

	fields, err := decodeObject(body)
	if err != nil {
		return in, err
	}

	var errs []apperror.FieldError

	if raw, ok := fields["name"]; ok {
		if name, msg := optionalString(raw, MsgNameString, MsgNameEmpty); msg != "" {
			errs = append(errs, apperror.FieldError{Field: "name", Message: msg})
		} else {
			name = sanitize(name)
			in.Name = &name
		}
	}

	if raw, ok := fields["quantity"]; ok {
		if qty, msg := quantity(raw); msg != "" {
			errs = append(errs, apperror.FieldError{Field: "quantity", Message: msg})
		} else {
			in.Quantity = &qty
		}
	}

	if raw, ok := fields["category"]; ok {
		if category, msg := optionalString(raw, MsgCategoryString, MsgCategoryEmpty); msg != "" {
			errs = append(errs, apperror.FieldError{Field: "category", Message: msg})
		} else {
			category = sanitize(category)
			in.Category = &category
		}
	}

	if len(errs) > 0 {
		return models.UpdateItemInput{}, apperror.InvalidInput(errs...)
	}
	return in, nil
}

// decodeObject parses body as a JSON object. An empty body counts as {}.
func decodeObject(body []byte) (map[string]json.RawMessage, error) {
	fields := map[string]json.RawMessage{}
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return fields, nil
	}
	if trimmed[0] != '{' || json.Unmarshal(trimmed, &fields) != nil {
		return nil, apperror.InvalidInput(apperror.FieldError{Field: "body", Message: MsgInvalidBody})
	}
	return fields, nil
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// requiredString checks emptiness before type, so a missing or null value
// reports the "required" message.
func requiredString(raw json.RawMessage, requiredMsg, typeMsg string) (string, string) {
	if isNull(raw) {
		return "", requiredMsg
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", typeMsg
	}
	if s == "" {
		return "", requiredMsg
	}
	return s, ""
}

// optionalString checks type before emptiness. Null is present, not absent.
func optionalString(raw json.RawMessage, typeMsg, emptyMsg string) (string, string) {
	var s string
	if isNull(raw) || json.Unmarshal(raw, &s) != nil {
		return "", typeMsg
	}
	if s == "" {
		return "", emptyMsg
	}
	return s, ""
}

// quantity accepts a JSON number or a numeric string holding a non-negative
// integer.
func quantity(raw json.RawMessage) (int, string) {
	if isNull(raw) {
		return 0, MsgQuantityNumber
	}

	var text string
	switch trimmed := bytes.TrimSpace(raw); trimmed[0] {
	case '"':
		if err := json.Unmarshal(trimmed, &text); err != nil {
			return 0, MsgQuantityNumber
		}
		if validate.Var(text, "numeric") != nil {
			return 0, MsgQuantityNumber
		}
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		var n json.Number
		if err := json.Unmarshal(trimmed, &n); err != nil {
			return 0, MsgQuantityNumber
		}
		f, err := n.Float64()
		if err != nil {
			return 0, MsgQuantityNumber
		}
		text = strconv.FormatFloat(f, 'f', -1, 64)
	default:
		return 0, MsgQuantityNumber
	}

	qty, err := strconv.Atoi(text)
	if err != nil || qty < 0 {
		return 0, MsgQuantityInteger
	}
	return qty, ""
}

var escaper = strings.NewReplacer(
	"&", "&amp;",
	`"`, "&quot;",
	"'", "&#x27;",
	"<", "&lt;",
	">", "&gt;",
	"/", "&#x2F;",
	`\`, "&#x5C;",
	"`", "&#96;",
)

// sanitize trims and HTML-escapes a string field.
func sanitize(s string) string {
	return escaper.Replace(strings.TrimSpace(s))
}
