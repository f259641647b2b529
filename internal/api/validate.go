package api

import (
	"errors"
	"fmt"
	"net/mail"
	"net/url"
	"strings"

	"github.com/kaan069/yolsepetigoAcenta/internal/geo"
	"github.com/kaan069/yolsepetigoAcenta/internal/model"
)

// ErrInvalidPayload is wrapped by every ValidationError.
var ErrInvalidPayload = errors.New("invalid payload")

// ValidationError reports a payload field rejected before sending.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidPayload
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

func required(fields ...[2]string) error {
	for _, f := range fields {
		if strings.TrimSpace(f[1]) == "" {
			return invalid(f[0], "is required")
		}
	}
	return nil
}

// NormalizePhone converts a Turkish mobile number to +90 form.
// "05321234567" and "5321234567" both become "+905321234567".
func NormalizePhone(phone string) (string, error) {
	phone = strings.Join(strings.Fields(phone), "")
	if len(phone) < 10 {
		return "", invalid("phone", "must have at least 10 digits")
	}

	if !strings.HasPrefix(phone, "+90") {
		phone = "+90" + strings.TrimPrefix(phone, "0")
	}
	for _, r := range phone[1:] {
		if r < '0' || r > '9' {
			return "", invalid("phone", "must contain digits only")
		}
	}
	return phone, nil
}

// ValidateOTPCode checks a 6-digit one-time code.
func ValidateOTPCode(code string) error {
	if len(code) != 6 {
		return invalid("otp_code", "must be 6 digits")
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return invalid("otp_code", "must be 6 digits")
		}
	}
	return nil
}

// validatePoint requires non-zero, in-range coordinates.
func validatePoint(field string, lat, lng float64) error {
	if lat == 0 || lng == 0 {
		return invalid(field, "location is required")
	}
	if err := geo.ValidateCoordinates(lat, lng); err != nil {
		return invalid(field, "%v", err)
	}
	return nil
}

func validateOptionalPoint(field string, lat, lng *float64) error {
	if lat == nil && lng == nil {
		return nil
	}
	if lat == nil || lng == nil {
		return invalid(field, "latitude and longitude must be given together")
	}
	return validatePoint(field, *lat, *lng)
}

// Validate checks the order before it is sent.
func (r TowTruckRequest) Validate() error {
	if err := required(
		[2]string{"customer_name", r.CustomerName},
		[2]string{"customer_phone", r.CustomerPhone},
		[2]string{"pickup_address", r.Pickup.Address},
		[2]string{"dropoff_address", r.Dropoff.Address},
	); err != nil {
		return err
	}
	if !r.VehicleType.Valid() {
		return invalid("vehicle_type", "unknown vehicle type %q", r.VehicleType)
	}
	if err := validatePoint("pickup", r.Pickup.Latitude, r.Pickup.Longitude); err != nil {
		return err
	}
	return validatePoint("dropoff", r.Dropoff.Latitude, r.Dropoff.Longitude)
}

// Validate checks a registration before it is sent.
func (p RegisterPayload) Validate() error {
	if err := required(
		[2]string{"name", p.Name},
		[2]string{"contact_person", p.ContactPerson},
		[2]string{"contact_email", p.ContactEmail},
		[2]string{"contact_phone", p.ContactPhone},
		[2]string{"password", p.Password},
		[2]string{"tax_number", p.TaxNumber},
		[2]string{"tax_office", p.TaxOffice},
		[2]string{"company_address", p.CompanyAddress},
	); err != nil {
		return err
	}
	if _, err := mail.ParseAddress(p.ContactEmail); err != nil {
		return invalid("contact_email", "%v", err)
	}
	if len(p.Password) < 8 {
		return invalid("password", "must be at least 8 characters")
	}
	if n := len(p.TaxNumber); n < 10 || n > 11 {
		return invalid("tax_number", "must be 10 or 11 digits")
	}
	if p.WebhookURL != "" {
		return validateWebhookURL(p.WebhookURL)
	}
	return nil
}

// Validate checks login credentials before they are sent.
func (p LoginPayload) Validate() error {
	return required(
		[2]string{"email", p.Email},
		[2]string{"password", p.Password},
	)
}

func validateWebhookURL(raw string) error {
	if raw == "" {
		return invalid("webhook_url", "is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return invalid("webhook_url", "%v", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return invalid("webhook_url", "must be an absolute http(s) URL")
	}
	return nil
}

// Validate checks a request before it is sent.
func (p InsuranceRequestCreatePayload) Validate() error {
	if !p.ServiceType.Valid() {
		return invalid("service_type", "unknown service type %q", p.ServiceType)
	}
	if err := required(
		[2]string{"insured_name", p.InsuredName},
		[2]string{"insured_phone", p.InsuredPhone},
		[2]string{"policy_number", p.PolicyNumber},
		[2]string{"pickup_address", p.PickupAddress},
	); err != nil {
		return err
	}
	if err := validatePoint("pickup", p.PickupLatitude, p.PickupLongitude); err != nil {
		return err
	}
	if err := validateOptionalPoint("dropoff", p.DropoffLatitude, p.DropoffLongitude); err != nil {
		return err
	}
	if p.EstimatedKm != nil && *p.EstimatedKm < 0 {
		return invalid("estimated_km", "cannot be negative")
	}
	return nil
}

// Validate checks an estimate request before it is sent.
func (p PricingEstimatePayload) Validate() error {
	if !p.ServiceType.Valid() {
		return invalid("service_type", "unknown service type %q", p.ServiceType)
	}
	if p.VehicleType != "" && !p.VehicleType.Valid() {
		return invalid("vehicle_type", "unknown vehicle type %q", p.VehicleType)
	}
	if err := validatePoint("pickup", p.PickupLatitude, p.PickupLongitude); err != nil {
		return err
	}
	if err := validateOptionalPoint("dropoff", p.DropoffLatitude, p.DropoffLongitude); err != nil {
		return err
	}
	if p.EstimatedKm != nil && *p.EstimatedKm < 0 {
		return invalid("estimated_km", "cannot be negative")
	}
	return nil
}

// validStatusFilter accepts the empty filter or a known status.
func validStatusFilter(s model.RequestStatus) error {
	if s != "" && !s.Valid() {
		return invalid("status", "unknown status %q", s)
	}
	return nil
}
