package api

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/kaan069/yolsepetigoAcenta/internal/auth"
	"github.com/kaan069/yolsepetigoAcenta/internal/geo"
)

// SendOTP asks the platform to text a one-time code to phone.
func (c *Client) SendOTP(ctx context.Context, phone string) (*OTPResponse, error) {
	normalized, err := NormalizePhone(phone)
	if err != nil {
		return nil, err
	}

	var resp OTPResponse
	err = c.do(ctx, call{
		op:     "SendOTP",
		method: http.MethodPost,
		base:   c.endpoints.Public,
		path:   "/api/otp/send/",
		body:   otpSendRequest{PhoneNumber: normalized},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("send otp: %w", err)
	}
	return &resp, nil
}

// VerifyOTP exchanges a one-time code for a verification token.
func (c *Client) VerifyOTP(ctx context.Context, phone, code string) (*OTPResponse, error) {
	normalized, err := NormalizePhone(phone)
	if err != nil {
		return nil, err
	}
	if err := ValidateOTPCode(code); err != nil {
		return nil, err
	}

	var resp OTPResponse
	err = c.do(ctx, call{
		op:     "VerifyOTP",
		method: http.MethodPost,
		base:   c.endpoints.Public,
		path:   "/api/otp/verify/",
		body:   otpVerifyRequest{PhoneNumber: normalized, OTPCode: code},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("verify otp: %w", err)
	}
	return &resp, nil
}

// CreateTowTruckRequest places a customer's tow-truck order. token is the
// verification token returned by VerifyOTP.
func (c *Client) CreateTowTruckRequest(ctx context.Context, req TowTruckRequest, token auth.VerificationToken) (*CreateRequestResponse, error) {
	if token == "" {
		return nil, fmt.Errorf("create tow-truck request: %w", ErrMissingCredential)
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var resp CreateRequestResponse
	err := c.do(ctx, call{
		op:     "CreateTowTruckRequest",
		method: http.MethodPost,
		base:   c.endpoints.Public,
		path:   "/requests/create/tow-truck/",
		body:   newTowTruckPayload(req, time.Now()),
		cred:   token,
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("create tow-truck request: %w", err)
	}
	return &resp, nil
}

func newTowTruckPayload(req TowTruckRequest, now time.Time) towTruckPayload {
	km := geo.DistanceKm(req.Pickup.Latitude, req.Pickup.Longitude, req.Dropoff.Latitude, req.Dropoff.Longitude)

	return towTruckPayload{
		RequestedServiceType: "tow_truck",
		TowTruckDetails:      towTruckDetails{VehicleType: req.VehicleType},
		QuestionAnswers:      []questionAnswer{},
		PickupLocation:       toWireLocation(req.Pickup.Address, req.Pickup.Latitude, req.Pickup.Longitude),
		DropoffLocation:      toWireLocation(req.Dropoff.Address, req.Dropoff.Latitude, req.Dropoff.Longitude),
		EstimatedPrice:       "0",
		EstimatedKm:          math.Round(km*10) / 10,
		CreatedAt:            now.UTC().Format(time.RFC3339Nano),
	}
}

func toWireLocation(address string, lat, lng float64) wireLocation {
	return wireLocation{
		Address:   address,
		Latitude:  strconv.FormatFloat(lat, 'f', -1, 64),
		Longitude: strconv.FormatFloat(lng, 'f', -1, 64),
	}
}
