package models

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/stockroom/backend/internal/apperror"
)

const (
	CategoryElectronics = "Electronics"
	CategoryGroceries   = "Groceries"
	CategoryClothing    = "Clothing"
	CategoryFurniture   = "Furniture"
	CategoryOther       = "Other"

	DefaultCategory = CategoryOther
)

// ItemCategories is the fixed set an item's category must belong to.
var ItemCategories = []string{
	CategoryElectronics,
	CategoryGroceries,
	CategoryClothing,
	CategoryFurniture,
	CategoryOther,
}

// Item is a warehouse inventory record.
type Item struct {
	ID        string    `json:"id" example:"65a1b2c3d4e5f60718293a4b"`
	Name      string    `json:"name" validate:"required" example:"Gaming Keyboard"`
	Quantity  int       `json:"quantity" validate:"min=0" minimum:"0" example:"12"`
	Category  string    `json:"category" validate:"oneof=Electronics Groceries Clothing Furniture Other" enums:"Electronics,Groceries,Clothing,Furniture,Other" example:"Electronics"`
	InStock   bool      `json:"inStock" example:"true"`
	CreatedAt time.Time `json:"createdAt" example:"2024-01-15T10:30:00Z"`
}

// CreateItemInput is a create request that already passed the validation layer.
type CreateItemInput struct {
	Name     string `json:"name" example:"Gaming Keyboard"`
	Quantity int    `json:"quantity" example:"12"`
	Category string `json:"category" example:"Electronics"`
}

// UpdateItemInput is a partial update; nil fields are left untouched.
type UpdateItemInput struct {
	Name     *string `json:"name,omitempty" example:"Gaming Keyboard"`
	Quantity *int    `json:"quantity,omitempty" example:"0"`
	Category *string `json:"category,omitempty" example:"Electronics"`
}

// NewItem builds an item from validated input, applying defaults and the
// derived stock flag. The store assigns the ID.
func NewItem(in CreateItemInput, now time.Time) *Item {
	item := &Item{
		Name:      strings.TrimSpace(in.Name),
		Quantity:  in.Quantity,
		Category:  in.Category,
		CreatedAt: now.UTC(),
	}
	if item.Category == "" {
		item.Category = DefaultCategory
	}
	item.SyncStock()
	return item
}

// SyncStock recomputes InStock from Quantity. Call it before every persist.
func (i *Item) SyncStock() {
	i.InStock = i.Quantity > 0
}

// Validate checks the item against its schema.
func (i *Item) Validate() error {
	if err := validate.Struct(i); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return apperror.Validation(schemaErrors(verrs)...)
		}
		return err
	}
	return nil
}

// IsEmpty reports whether the update touches no field.
func (in UpdateItemInput) IsEmpty() bool {
	return in.Name == nil && in.Quantity == nil && in.Category == nil
}

// Normalize returns a copy with the name trimmed, as the schema does on save.
func (in UpdateItemInput) Normalize() UpdateItemInput {
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		in.Name = &name
	}
	return in
}

// ApplyTo copies the set fields onto item and recomputes its stock flag.
func (in UpdateItemInput) ApplyTo(item *Item) {
	if in.Name != nil {
		item.Name = strings.TrimSpace(*in.Name)
	}
	if in.Quantity != nil {
		item.Quantity = *in.Quantity
	}
	if in.Category != nil {
		item.Category = *in.Category
	}
	item.SyncStock()
}

// Validate runs the schema rules against only the fields being updated.
func (in UpdateItemInput) Validate() error {
	probe := Item{Name: "-", Category: DefaultCategory}
	in.ApplyTo(&probe)
	return probe.Validate()
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func schemaErrors(verrs validator.ValidationErrors) []apperror.FieldError {
	out := make([]apperror.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, apperror.FieldError{Field: fe.Field(), Message: schemaMessage(fe)})
	}
	return out
}

func schemaMessage(fe validator.FieldError) string {
	switch fe.Field() {
	case "name":
		return "Please add a name for the item"
	case "quantity":
		return "Quantity cannot be negative"
	case "category":
		return fmt.Sprintf("`%v` is not a valid enum value for path `category`.", fe.Value())
	}
	return fmt.Sprintf("%s failed on the '%s' rule", fe.Field(), fe.Tag())
}
