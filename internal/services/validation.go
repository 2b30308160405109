package services

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Ananth-NQI/servicebook-backend/internal/models"
)

// BookingInput is the booking form as submitted by a customer or staff member
type BookingInput struct {
	FullName       string `json:"fullName" validate:"required"`
	PhoneNumber    string `json:"phoneNumber" validate:"required"`
	Email          string `json:"email" validate:"required,email"`
	ServiceAddress string `json:"serviceAddress" validate:"required"`
	Pincode        string `json:"pincode" validate:"required"`
	ServiceType    string `json:"serviceType" validate:"required"`
	Urgency        string `json:"urgency"`
	Date           string `json:"date" validate:"required,datetime=2006-01-02"`
	Time           string `json:"time" validate:"omitempty,datetime=15:04"`
	Description    string `json:"description"`
}

// Normalize trims every field and lower-cases the email.
func (in *BookingInput) Normalize() {
	in.FullName = strings.TrimSpace(in.FullName)
	in.PhoneNumber = strings.TrimSpace(in.PhoneNumber)
	in.Email = normalizeEmail(in.Email)
	in.ServiceAddress = strings.TrimSpace(in.ServiceAddress)
	in.Pincode = strings.TrimSpace(in.Pincode)
	in.ServiceType = strings.TrimSpace(in.ServiceType)
	in.Urgency = strings.TrimSpace(in.Urgency)
	in.Date = strings.TrimSpace(in.Date)
	in.Time = strings.TrimSpace(in.Time)
	in.Description = strings.TrimSpace(in.Description)
}

func (in *BookingInput) toBooking(urgency models.Urgency) *models.Booking {
	return &models.Booking{
		Name:         in.FullName,
		Phone:        in.PhoneNumber,
		Email:        in.Email,
		Address:      in.ServiceAddress,
		PostalCode:   in.Pincode,
		ServiceType:  in.ServiceType,
		Urgency:      urgency,
		Instructions: in.Description,
		Date:         in.Date,
		Time:         in.Time,
		Status:       models.BookingStatusPending,
	}
}

// newValidator reports fields by their json names.
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

// validateInput checks required fields and formats, then resolves urgency.
func validateInput(v *validator.Validate, in *BookingInput) (models.Urgency, error) {
	if err := v.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return "", fromFieldError(verrs[0])
		}
		return "", err
	}

	urgency, ok := models.ParseUrgency(in.Urgency)
	if !ok {
		return "", invalidField("urgency", "must be Normal, Urgent or Emergency")
	}
	return urgency, nil
}

func fromFieldError(fe validator.FieldError) *ValidationError {
	switch fe.Tag() {
	case "required":
		return missingField(fe.Field())
	case "email":
		return invalidField(fe.Field(), "must be a valid email address")
	case "datetime":
		if fe.Param() == "15:04" {
			return invalidField(fe.Field(), "must be in HH:MM format")
		}
		return invalidField(fe.Field(), "must be in YYYY-MM-DD format")
	default:
		return invalidField(fe.Field(), "is invalid")
	}
}
