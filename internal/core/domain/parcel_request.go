package domain

import (
	"errors"
	"time"
)

// DraftField names one input of the parcel request form. The set is closed.
type DraftField string

const (
	FieldDescription      DraftField = "description"
	FieldName             DraftField = "name"
	FieldQuantity         DraftField = "quantity"
	FieldWeightKg         DraftField = "weight_kg"
	FieldPriceOffer       DraftField = "price_offer"
	FieldDeliveryDeadline DraftField = "delivery_deadline"
)

// DraftFields lists every form field in render order.
var DraftFields = []DraftField{
	FieldDescription,
	FieldName,
	FieldQuantity,
	FieldWeightKg,
	FieldPriceOffer,
	FieldDeliveryDeadline,
}

// DeadlineLayout is the calendar-date format of the delivery deadline input.
const DeadlineLayout = "2006-01-02"

// ParcelRequestDraft is the unsaved form record. Values are kept exactly as
// typed so a re-rendered form shows what the user entered.
type ParcelRequestDraft struct {
	Description      string `json:"description"       validate:"notblank"`
	Name             string `json:"name"              validate:"notblank"`
	Quantity         string `json:"quantity"          validate:"notblank"`
	WeightKg         string `json:"weight_kg"         validate:"notblank"`
	PriceOffer       string `json:"price_offer"       validate:"notblank"`
	DeliveryDeadline string `json:"delivery_deadline" validate:"notblank"`
}

// Get returns the current value of field.
func (d ParcelRequestDraft) Get(field DraftField) string {
	switch field {
	case FieldDescription:
		return d.Description
	case FieldName:
		return d.Name
	case FieldQuantity:
		return d.Quantity
	case FieldWeightKg:
		return d.WeightKg
	case FieldPriceOffer:
		return d.PriceOffer
	case FieldDeliveryDeadline:
		return d.DeliveryDeadline
	}
	panic("domain: unknown draft field " + string(field))
}

// Set writes value into field.
func (d *ParcelRequestDraft) Set(field DraftField, value string) {
	switch field {
	case FieldDescription:
		d.Description = value
	case FieldName:
		d.Name = value
	case FieldQuantity:
		d.Quantity = value
	case FieldWeightKg:
		d.WeightKg = value
	case FieldPriceOffer:
		d.PriceOffer = value
	case FieldDeliveryDeadline:
		d.DeliveryDeadline = value
	default:
		panic("domain: unknown draft field " + string(field))
	}
}

// IsEmpty reports whether the draft still has its initial value.
func (d ParcelRequestDraft) IsEmpty() bool {
	return d == ParcelRequestDraft{}
}

// ParseDraftField maps a form key to a DraftField.
func ParseDraftField(s string) (DraftField, bool) {
	for _, f := range DraftFields {
		if string(f) == s {
			return f, true
		}
	}
	return "", false
}

// ParcelRequestStatus is the lifecycle state of a stored request.
type ParcelRequestStatus string

const (
	RequestPending ParcelRequestStatus = "pending"
)

var ErrParcelRequestNotFound = errors.New("parcel request not found")

// ParcelRequest is an accepted draft, typed and stored.
type ParcelRequest struct {
	ID               string              `json:"id" bson:"_id,omitempty"`
	Reference        string              `json:"reference" bson:"reference"`
	OwnerID          string              `json:"owner_id" bson:"owner_id"`
	Description      string              `json:"description" bson:"description"`
	Name             string              `json:"name" bson:"name"`
	Quantity         string              `json:"quantity" bson:"quantity"`
	WeightKg         float64             `json:"weight_kg" bson:"weight_kg"`
	PriceOffer       float64             `json:"price_offer" bson:"price_offer"`
	DeliveryDeadline time.Time           `json:"delivery_deadline" bson:"delivery_deadline"`
	Status           ParcelRequestStatus `json:"status" bson:"status"`
	Fingerprint      string              `json:"-" bson:"fingerprint"`
	CreatedAt        time.Time           `json:"created_at" bson:"created_at"`
}
