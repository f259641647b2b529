package api

import (
	"github.com/kaan069/yolsepetigoAcenta/internal/model"
)

// -----------------------------------------------------------------------------
// Public API
// -----------------------------------------------------------------------------

// OTPResponse from POST /api/otp/send/ and /api/otp/verify/
type OTPResponse struct {
	Success           bool   `json:"success"`
	Message           string `json:"message"`
	VerificationToken string `json:"verificationToken,omitempty"` // verify only
}

type otpSendRequest struct {
	PhoneNumber string `json:"phoneNumber"`
}

type otpVerifyRequest struct {
	PhoneNumber string `json:"phoneNumber"`
	OTPCode     string `json:"otpCode"`
}

// TowTruckRequest is a customer's tow-truck order.
type TowTruckRequest struct {
	CustomerName  string
	CustomerPhone string

	VehicleType  model.VehicleType
	VehicleBrand string
	VehicleModel string
	VehiclePlate string

	Pickup  model.Location
	Dropoff model.Location

	IsVehicleOperational bool
	HasKeys              bool
	AdditionalNotes      string
}

// towTruckPayload is the wire shape of POST /requests/create/tow-truck/.
type towTruckPayload struct {
	RequestedServiceType string           `json:"requestedServiceType"`
	TowTruckDetails      towTruckDetails  `json:"towTruckDetails"`
	QuestionAnswers      []questionAnswer `json:"question_answers"`
	PickupLocation       wireLocation     `json:"pickupLocation"`
	DropoffLocation      wireLocation     `json:"dropoffLocation"`
	RouteInfo            *routeInfo       `json:"routeInfo"`
	EstimatedPrice       string           `json:"estimatedPrice"`
	EstimatedKm          float64          `json:"estimatedKm"`
	CreatedAt            string           `json:"createdAt"`
}

type towTruckDetails struct {
	VehicleType model.VehicleType `json:"vehicleType"`
}

type questionAnswer struct {
	QuestionID int    `json:"question_id"`
	Answer     string `json:"answer"`
}

type routeInfo struct{}

// wireLocation carries coordinates as decimal strings.
type wireLocation struct {
	Address   string `json:"address"`
	Latitude  string `json:"latitude"`
	Longitude string `json:"longitude"`
}

// CreateRequestResponse from POST /requests/create/tow-truck/
type CreateRequestResponse struct {
	ID            int64  `json:"id"`
	Message       string `json:"message"`
	Status        string `json:"status"`
	TrackingToken string `json:"tracking_token"`
	TrackingURL   string `json:"tracking_url"`
	WebsocketURL  string `json:"websocket_url"`
}

// -----------------------------------------------------------------------------
// Partner API: company
// -----------------------------------------------------------------------------

// RegisterPayload for POST /register/
type RegisterPayload struct {
	Name           string `json:"name"`
	ContactPerson  string `json:"contact_person"`
	ContactEmail   string `json:"contact_email"`
	ContactPhone   string `json:"contact_phone"`
	Password       string `json:"password"`
	TaxNumber      string `json:"tax_number"`
	TaxOffice      string `json:"tax_office"`
	CompanyAddress string `json:"company_address"`
	WebhookURL     string `json:"webhook_url,omitempty"`
}

// RegisterResponse from POST /register/
type RegisterResponse struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Status  string `json:"status"` // pending_approval
	Message string `json:"message"`
}

// LoginPayload for POST /login/
type LoginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse from POST /login/
type LoginResponse struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	ContactPerson string  `json:"contact_person"`
	ContactEmail  string  `json:"contact_email"`
	APIKey        string  `json:"api_key"`
	WebhookURL    *string `json:"webhook_url"`
	IsApproved    bool    `json:"is_approved"`
	IsActive      bool    `json:"is_active"`
	Message       string  `json:"message"`
}

// CompanyProfile from GET /me/
type CompanyProfile struct {
	Company struct {
		ID             int64  `json:"id"`
		Name           string `json:"name"`
		ContactPerson  string `json:"contact_person"`
		ContactEmail   string `json:"contact_email"`
		ContactPhone   string `json:"contact_phone"`
		TaxNumber      string `json:"tax_number"`
		TaxOffice      string `json:"tax_office"`
		CompanyAddress string `json:"company_address"`
	} `json:"company"`
	API struct {
		APIKey             string  `json:"api_key"`
		WebhookURL         *string `json:"webhook_url"`
		RateLimitPerMinute int     `json:"rate_limit_per_minute"`
	} `json:"api"`
	Status struct {
		IsApproved bool    `json:"is_approved"`
		IsActive   bool    `json:"is_active"`
		ApprovedAt *string `json:"approved_at"`
		CreatedAt  string  `json:"created_at"`
	} `json:"status"`
	Statistics struct {
		TotalRequests      int `json:"total_requests"`
		PendingRequests    int `json:"pending_requests"`
		InProgressRequests int `json:"in_progress_requests"`
		CompletedRequests  int `json:"completed_requests"`
		CancelledRequests  int `json:"cancelled_requests"`
	} `json:"statistics"`
}

// WebhookResponse from PUT /me/
type WebhookResponse struct {
	Message    string `json:"message"`
	WebhookURL string `json:"webhook_url"`
}

type webhookPayload struct {
	WebhookURL string `json:"webhook_url"`
}

// -----------------------------------------------------------------------------
// Partner API: requests
// -----------------------------------------------------------------------------

// InsuranceRequestCreatePayload for POST /requests/create/
type InsuranceRequestCreatePayload struct {
	ServiceType       model.ServiceType `json:"service_type"`
	InsuredName       string            `json:"insured_name"`
	InsuredPhone      string            `json:"insured_phone"`
	InsuredPlate      string            `json:"insured_plate,omitempty"`
	PolicyNumber      string            `json:"policy_number"`
	ExternalReference string            `json:"external_reference,omitempty"`
	PickupAddress     string            `json:"pickup_address"`
	PickupLatitude    float64           `json:"pickup_latitude"`
	PickupLongitude   float64           `json:"pickup_longitude"`
	DropoffAddress    string            `json:"dropoff_address,omitempty"`
	DropoffLatitude   *float64          `json:"dropoff_latitude,omitempty"`
	DropoffLongitude  *float64          `json:"dropoff_longitude,omitempty"`
	EstimatedKm       *float64          `json:"estimated_km,omitempty"`
	ServiceDetails    string            `json:"service_details,omitempty"`
}

// InsuranceRequestCreateResponse from POST /requests/create/
type InsuranceRequestCreateResponse struct {
	RequestID     int64               `json:"request_id"`
	Status        model.RequestStatus `json:"status"`
	TrackingToken string              `json:"tracking_token"`
	TrackingURL   string              `json:"tracking_url"`
	CreatedAt     string              `json:"created_at"`
}

// ListOptions filters GET /requests/.
type ListOptions struct {
	Status   model.RequestStatus
	Page     int
	PageSize int
}

// InsuranceRequestSummary is one row of GET /requests/.
type InsuranceRequestSummary struct {
	RequestID    int64               `json:"request_id"`
	Status       model.RequestStatus `json:"status"`
	ServiceType  model.ServiceType   `json:"service_type"`
	InsuredName  string              `json:"insured_name"`
	PolicyNumber string              `json:"policy_number"`
	CreatedAt    string              `json:"created_at"`
}

// InsuranceRequestListResponse from GET /requests/
type InsuranceRequestListResponse struct {
	Count    int                       `json:"count"`
	Page     int                       `json:"page"`
	PageSize int                       `json:"page_size"`
	Results  []InsuranceRequestSummary `json:"results"`
}

// InsuranceRequestDetail from GET /requests/{id}/
type InsuranceRequestDetail struct {
	RequestID    int64               `json:"request_id"`
	Status       model.RequestStatus `json:"status"`
	ServiceType  model.ServiceType   `json:"service_type"`
	InsuredName  string              `json:"insured_name"`
	InsuredPhone string              `json:"insured_phone"`
	InsuredPlate *string             `json:"insured_plate"`
	PolicyNumber string              `json:"policy_number"`
	TrackingURL  string              `json:"tracking_url"`
	Driver       *struct {
		Name  *string `json:"name"`
		Phone *string `json:"phone"`
	} `json:"driver"`
	Pricing *struct {
		EstimatedPrice *string `json:"estimated_price"`
		Currency       string  `json:"currency"`
	} `json:"pricing"`
	Timeline struct {
		CreatedAt   string  `json:"created_at"`
		AcceptedAt  *string `json:"accepted_at"`
		CompletedAt *string `json:"completed_at"`
	} `json:"timeline"`
}

// CancelRequestResponse from POST /requests/{id}/cancel/
type CancelRequestResponse struct {
	RequestID int64               `json:"request_id"`
	Status    model.RequestStatus `json:"status"`
	Message   string              `json:"message"`
}

// -----------------------------------------------------------------------------
// Partner API: pricing
// -----------------------------------------------------------------------------

// PricingEstimatePayload for POST /pricing/estimate/
type PricingEstimatePayload struct {
	ServiceType      model.ServiceType `json:"service_type"`
	VehicleType      model.VehicleType `json:"vehicle_type,omitempty"`
	PickupLatitude   float64           `json:"pickup_latitude"`
	PickupLongitude  float64           `json:"pickup_longitude"`
	DropoffLatitude  *float64          `json:"dropoff_latitude,omitempty"`
	DropoffLongitude *float64          `json:"dropoff_longitude,omitempty"`
	EstimatedKm      *float64          `json:"estimated_km,omitempty"`
}

// PricingEstimateResponse from POST /pricing/estimate/
type PricingEstimateResponse struct {
	ServiceType    model.ServiceType `json:"service_type"`
	EstimatedPrice *string           `json:"estimated_price"`
	Currency       string            `json:"currency"`
	Message        string            `json:"message"`
	Breakdown      *struct {
		BasePrice  string `json:"base_price"`
		Commission string `json:"commission"`
		Tax        string `json:"tax"`
		Total      string `json:"total"`
	} `json:"breakdown"`
}
