package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kaan069/yolsepetigoAcenta/internal/auth"
	"github.com/kaan069/yolsepetigoAcenta/internal/metrics"
	"github.com/kaan069/yolsepetigoAcenta/internal/model"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// recordedRequest is what the fake platform saw.
type recordedRequest struct {
	method string
	path   string
	query  string
	header http.Header
	body   map[string]any
}

// fakePlatform serves canned JSON per "METHOD path" and records requests.
type fakePlatform struct {
	server   *httptest.Server
	requests chan recordedRequest
}

func newFakePlatform(t *testing.T, routes map[string]string) *fakePlatform {
	t.Helper()
	fp := &fakePlatform{requests: make(chan recordedRequest, 16)}
	fp.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recordedRequest{
			method: r.Method,
			path:   r.URL.Path,
			query:  r.URL.RawQuery,
			header: r.Header.Clone(),
		}
		if data, _ := io.ReadAll(r.Body); len(data) > 0 {
			if err := json.Unmarshal(data, &rec.body); err != nil {
				t.Errorf("request body is not a JSON object: %s", data)
			}
		}
		fp.requests <- rec

		resp, ok := routes[r.Method+" "+r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":"not found"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(resp))
	}))
	t.Cleanup(fp.server.Close)
	return fp
}

func (fp *fakePlatform) client(opts ...ClientOption) *Client {
	opts = append([]ClientOption{WithRetries(0, 0)}, opts...)
	return NewClient(Endpoints{Public: fp.server.URL, Insurance: fp.server.URL + "/insurance"}, opts...)
}

func (fp *fakePlatform) next(t *testing.T) recordedRequest {
	t.Helper()
	select {
	case r := <-fp.requests:
		return r
	default:
		t.Fatal("no request reached the server")
		return recordedRequest{}
	}
}

func (fp *fakePlatform) expectNone(t *testing.T) {
	t.Helper()
	select {
	case r := <-fp.requests:
		t.Errorf("unexpected request %s %s", r.method, r.path)
	default:
	}
}

func ptr[T any](v T) *T { return &v }

func TestSendOTP(t *testing.T) {
	fp := newFakePlatform(t, map[string]string{
		"POST /api/otp/send/": `{"success":true,"message":"Kod gonderildi"}`,
	})

	resp, err := fp.client().SendOTP(context.Background(), "0532 123 45 67")
	if err != nil {
		t.Fatalf("SendOTP failed: %v", err)
	}
	if !resp.Success {
		t.Error("Success = false, want true")
	}

	req := fp.next(t)
	if req.body["phoneNumber"] != "+905321234567" {
		t.Errorf("phoneNumber = %v, want +905321234567", req.body["phoneNumber"])
	}
	if req.header.Get(auth.HeaderAPIKey) != "" {
		t.Error("public endpoints must not send an API key")
	}
}

func TestVerifyOTP(t *testing.T) {
	fp := newFakePlatform(t, map[string]string{
		"POST /api/otp/verify/": `{"success":true,"message":"ok","verificationToken":"vt-123"}`,
	})
	c := fp.client()

	if _, err := c.VerifyOTP(context.Background(), "5321234567", "12a456"); !errors.Is(err, ErrInvalidPayload) {
		t.Fatalf("bad code error = %v, want ErrInvalidPayload", err)
	}
	fp.expectNone(t)

	resp, err := c.VerifyOTP(context.Background(), "5321234567", "123456")
	if err != nil {
		t.Fatalf("VerifyOTP failed: %v", err)
	}
	if resp.VerificationToken != "vt-123" {
		t.Errorf("VerificationToken = %q, want vt-123", resp.VerificationToken)
	}

	req := fp.next(t)
	if req.body["otpCode"] != "123456" || req.body["phoneNumber"] != "+905321234567" {
		t.Errorf("body = %v", req.body)
	}
}

func validTowTruckRequest() TowTruckRequest {
	return TowTruckRequest{
		CustomerName:  "Ayse Yilmaz",
		CustomerPhone: "05321234567",
		VehicleType:   model.VehicleCar,
		Pickup:        model.Location{Address: "Kadikoy, Istanbul", Latitude: 40.9903, Longitude: 29.0290},
		Dropoff:       model.Location{Address: "Besiktas, Istanbul", Latitude: 41.0430, Longitude: 29.0094},
	}
}

func TestCreateTowTruckRequest(t *testing.T) {
	fp := newFakePlatform(t, map[string]string{
		"POST /requests/create/tow-truck/": `{"id":77,"status":"pending","tracking_token":"trk-77"}`,
	})
	c := fp.client()

	t.Run("requires verification token", func(t *testing.T) {
		_, err := c.CreateTowTruckRequest(context.Background(), validTowTruckRequest(), "")
		if !errors.Is(err, ErrMissingCredential) {
			t.Fatalf("error = %v, want ErrMissingCredential", err)
		}
		fp.expectNone(t)
	})

	t.Run("sends wire payload", func(t *testing.T) {
		resp, err := c.CreateTowTruckRequest(context.Background(), validTowTruckRequest(), "vt-123")
		if err != nil {
			t.Fatalf("CreateTowTruckRequest failed: %v", err)
		}
		if resp.ID != 77 || resp.TrackingToken != "trk-77" {
			t.Errorf("response = %+v", resp)
		}

		req := fp.next(t)
		if req.header.Get(auth.HeaderVerificationToken) != "vt-123" {
			t.Errorf("%s = %q, want vt-123", auth.HeaderVerificationToken, req.header.Get(auth.HeaderVerificationToken))
		}
		if req.body["requestedServiceType"] != "tow_truck" {
			t.Errorf("requestedServiceType = %v", req.body["requestedServiceType"])
		}
		pickup, _ := req.body["pickupLocation"].(map[string]any)
		if pickup["latitude"] != "40.9903" || pickup["longitude"] != "29.029" {
			t.Errorf("pickupLocation = %v, want string coordinates", pickup)
		}
		details, _ := req.body["towTruckDetails"].(map[string]any)
		if details["vehicleType"] != "car" {
			t.Errorf("towTruckDetails = %v", details)
		}
		if km, _ := req.body["estimatedKm"].(float64); km <= 0 {
			t.Errorf("estimatedKm = %v, want positive distance", req.body["estimatedKm"])
		}
	})
}

func TestNewTowTruckPayload(t *testing.T) {
	req := validTowTruckRequest()
	req.Dropoff = model.Location{Address: "x", Latitude: 41.0, Longitude: 29.0}
	req.Pickup = model.Location{Address: "y", Latitude: 40.0, Longitude: 29.0}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.FixedZone("TRT", 3*3600))

	p := newTowTruckPayload(req, now)

	// One degree of latitude is about 111.2 km.
	if p.EstimatedKm != 111.2 {
		t.Errorf("EstimatedKm = %v, want 111.2", p.EstimatedKm)
	}
	if p.CreatedAt != "2026-03-01T09:00:00Z" {
		t.Errorf("CreatedAt = %q, want UTC", p.CreatedAt)
	}
	if p.EstimatedPrice != "0" {
		t.Errorf("EstimatedPrice = %q, want 0", p.EstimatedPrice)
	}
	if p.QuestionAnswers == nil {
		t.Error("QuestionAnswers should marshal as an empty list")
	}
}

func TestPartnerEndpointsRequireCredential(t *testing.T) {
	fp := newFakePlatform(t, nil)

	ops := map[string]func(*Client) error{
		"GetProfile": func(c *Client) error {
			_, err := c.GetProfile(context.Background())
			return err
		},
		"ListInsuranceRequests": func(c *Client) error {
			_, err := c.ListInsuranceRequests(context.Background(), ListOptions{})
			return err
		},
		"GetInsuranceRequest": func(c *Client) error {
			_, err := c.GetInsuranceRequest(context.Background(), 1)
			return err
		},
		"CancelInsuranceRequest": func(c *Client) error {
			_, err := c.CancelInsuranceRequest(context.Background(), 1)
			return err
		},
		"UpdateWebhook": func(c *Client) error {
			_, err := c.UpdateWebhook(context.Background(), "https://partner.example.com/hook")
			return err
		},
	}

	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			for _, c := range []*Client{fp.client(), fp.client(WithCredential(auth.APIKey("")))} {
				if err := op(c); !errors.Is(err, ErrMissingCredential) {
					t.Errorf("error = %v, want ErrMissingCredential", err)
				}
			}
			fp.expectNone(t)
		})
	}
}

func TestGetProfile(t *testing.T) {
	fp := newFakePlatform(t, map[string]string{
		"GET /insurance/me/": `{
			"company": {"id": 3, "name": "Anadolu Sigorta"},
			"api": {"api_key": "k", "webhook_url": null, "rate_limit_per_minute": 60},
			"status": {"is_approved": true, "is_active": true, "approved_at": null, "created_at": "2025-01-01"},
			"statistics": {"total_requests": 12, "pending_requests": 2}
		}`,
	})

	p, err := fp.client(WithCredential(auth.APIKey("partner-key"))).GetProfile(context.Background())
	if err != nil {
		t.Fatalf("GetProfile failed: %v", err)
	}
	if p.Company.Name != "Anadolu Sigorta" {
		t.Errorf("Company.Name = %q", p.Company.Name)
	}
	if p.API.WebhookURL != nil {
		t.Errorf("WebhookURL = %v, want nil", p.API.WebhookURL)
	}
	if p.Statistics.TotalRequests != 12 {
		t.Errorf("TotalRequests = %d, want 12", p.Statistics.TotalRequests)
	}

	req := fp.next(t)
	if req.header.Get(auth.HeaderAPIKey) != "partner-key" {
		t.Errorf("X-API-Key = %q, want partner-key", req.header.Get(auth.HeaderAPIKey))
	}
}

func TestUpdateWebhook(t *testing.T) {
	fp := newFakePlatform(t, map[string]string{
		"PUT /insurance/me/": `{"message":"ok","webhook_url":"https://partner.example.com/hook"}`,
	})
	c := fp.client(WithCredential(auth.APIKey("partner-key")))

	if _, err := c.UpdateWebhook(context.Background(), "ftp://partner.example.com"); !errors.Is(err, ErrInvalidPayload) {
		t.Fatalf("bad scheme error = %v, want ErrInvalidPayload", err)
	}
	fp.expectNone(t)

	if _, err := c.UpdateWebhook(context.Background(), "https://partner.example.com/hook"); err != nil {
		t.Fatalf("UpdateWebhook failed: %v", err)
	}
	req := fp.next(t)
	if req.method != http.MethodPut {
		t.Errorf("method = %s, want PUT", req.method)
	}
	if req.body["webhook_url"] != "https://partner.example.com/hook" {
		t.Errorf("body = %v", req.body)
	}
}

func TestRegisterAndLogin(t *testing.T) {
	fp := newFakePlatform(t, map[string]string{
		"POST /insurance/register/": `{"id":9,"name":"Anadolu Sigorta","status":"pending_approval"}`,
		"POST /insurance/login/":    `{"id":9,"api_key":"new-key","is_approved":true,"is_active":true}`,
	})
	c := fp.client()

	reg, err := c.RegisterCompany(context.Background(), RegisterPayload{
		Name:           "Anadolu Sigorta",
		ContactPerson:  "Mehmet Kaya",
		ContactEmail:   "mehmet@anadolu.example.com",
		ContactPhone:   "02121234567",
		Password:       "guclu-sifre",
		TaxNumber:      "1234567890",
		TaxOffice:      "Kadikoy",
		CompanyAddress: "Istanbul",
	})
	if err != nil {
		t.Fatalf("RegisterCompany failed: %v", err)
	}
	if reg.Status != "pending_approval" {
		t.Errorf("Status = %q", reg.Status)
	}
	if req := fp.next(t); req.body["tax_number"] != "1234567890" {
		t.Errorf("body = %v", req.body)
	}

	login, err := c.LoginCompany(context.Background(), LoginPayload{Email: "mehmet@anadolu.example.com", Password: "guclu-sifre"})
	if err != nil {
		t.Fatalf("LoginCompany failed: %v", err)
	}
	if login.APIKey != "new-key" {
		t.Errorf("APIKey = %q, want new-key", login.APIKey)
	}
	if req := fp.next(t); req.header.Get(auth.HeaderAPIKey) != "" {
		t.Error("login must not send an API key")
	}
}

func TestCreateInsuranceRequest(t *testing.T) {
	fp := newFakePlatform(t, map[string]string{
		"POST /insurance/requests/create/": `{"request_id":501,"status":"pending","tracking_token":"trk-501"}`,
	})
	c := fp.client(WithCredential(auth.APIKey("partner-key")))

	p := InsuranceRequestCreatePayload{
		ServiceType:     model.ServiceTowTruck,
		InsuredName:     "Ali Demir",
		InsuredPhone:    "05551234567",
		PolicyNumber:    "POL-1",
		PickupAddress:   "Ankara",
		PickupLatitude:  39.93,
		PickupLongitude: 32.85,
	}
	resp, err := c.CreateInsuranceRequest(context.Background(), p)
	if err != nil {
		t.Fatalf("CreateInsuranceRequest failed: %v", err)
	}
	if resp.RequestID != 501 || resp.Status != model.StatusPending {
		t.Errorf("response = %+v", resp)
	}

	req := fp.next(t)
	if _, ok := req.body["dropoff_latitude"]; ok {
		t.Error("unset dropoff should be omitted")
	}
	if req.body["service_type"] != "towTruck" {
		t.Errorf("service_type = %v", req.body["service_type"])
	}

	p.DropoffLatitude = ptr(40.0)
	if _, err := c.CreateInsuranceRequest(context.Background(), p); !errors.Is(err, ErrInvalidPayload) {
		t.Errorf("half dropoff error = %v, want ErrInvalidPayload", err)
	}
	fp.expectNone(t)
}

func TestListInsuranceRequests(t *testing.T) {
	fp := newFakePlatform(t, map[string]string{
		"GET /insurance/requests/": `{"count":1,"page":2,"page_size":10,"results":[{"request_id":1,"status":"pending"}]}`,
	})
	c := fp.client(WithCredential(auth.APIKey("partner-key")))

	resp, err := c.ListInsuranceRequests(context.Background(), ListOptions{Status: model.StatusPending, Page: 2, PageSize: 10})
	if err != nil {
		t.Fatalf("ListInsuranceRequests failed: %v", err)
	}
	if len(resp.Results) != 1 {
		t.Fatalf("Results = %d, want 1", len(resp.Results))
	}

	req := fp.next(t)
	if req.query != "page=2&page_size=10&status=pending" {
		t.Errorf("query = %q", req.query)
	}

	if _, err := c.ListInsuranceRequests(context.Background(), ListOptions{Status: "lost"}); !errors.Is(err, ErrInvalidPayload) {
		t.Errorf("unknown status error = %v, want ErrInvalidPayload", err)
	}
	fp.expectNone(t)
}

func TestListAllInsuranceRequests(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		switch page {
		case 1:
			fmt.Fprint(w, `{"count":3,"page":1,"page_size":2,"results":[{"request_id":1},{"request_id":2}]}`)
		case 2:
			fmt.Fprint(w, `{"count":3,"page":2,"page_size":2,"results":[{"request_id":3}]}`)
		default:
			t.Errorf("unexpected page %d", page)
			fmt.Fprint(w, `{"count":3,"results":[]}`)
		}
	}))
	defer server.Close()

	c := NewClient(Endpoints{Insurance: server.URL}, WithCredential(auth.APIKey("k")))
	all, err := c.ListAllInsuranceRequests(context.Background(), ListOptions{PageSize: 2})
	if err != nil {
		t.Fatalf("ListAllInsuranceRequests failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d requests, want 3", len(all))
	}
	if all[2].RequestID != 3 {
		t.Errorf("last id = %d, want 3", all[2].RequestID)
	}
	if calls.Load() != 2 {
		t.Errorf("calls = %d, want 2", calls.Load())
	}
}

func TestGetInsuranceRequest(t *testing.T) {
	fp := newFakePlatform(t, map[string]string{
		"GET /insurance/requests/42/": `{
			"request_id": 42,
			"status": "in_progress",
			"driver": {"name": "Hasan", "phone": null},
			"pricing": {"estimated_price": "1250.00", "currency": "TRY"},
			"timeline": {"created_at": "2025-05-01T10:00:00Z", "accepted_at": "2025-05-01T10:05:00Z"}
		}`,
	})
	c := fp.client(WithCredential(auth.APIKey("partner-key")))

	d, err := c.GetInsuranceRequest(context.Background(), 42)
	if err != nil {
		t.Fatalf("GetInsuranceRequest failed: %v", err)
	}
	if d.Status != model.StatusInProgress {
		t.Errorf("Status = %q", d.Status)
	}
	if d.Driver == nil || d.Driver.Name == nil || *d.Driver.Name != "Hasan" {
		t.Errorf("Driver = %+v", d.Driver)
	}
	if d.Driver.Phone != nil {
		t.Error("Driver.Phone should be nil")
	}
	if d.Pricing == nil || *d.Pricing.EstimatedPrice != "1250.00" {
		t.Errorf("Pricing = %+v", d.Pricing)
	}

	_, err = c.GetInsuranceRequest(context.Background(), 43)
	var apiErr *APIError
	if !errors.As(err, &apiErr) || !apiErr.IsNotFound() {
		t.Errorf("missing request error = %v, want 404 APIError", err)
	}
}

func TestCancelInsuranceRequest(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		if r.URL.Path != "/requests/42/cancel/" || r.Method != http.MethodPost {
			t.Errorf("got %s %s", r.Method, r.URL.Path)
		}
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	c := NewClient(Endpoints{Insurance: server.URL}, WithCredential(auth.APIKey("k")), WithRetries(3, time.Millisecond))
	if _, err := c.CancelInsuranceRequest(context.Background(), 42); err == nil {
		t.Fatal("expected error, got nil")
	}
	if attempts.Load() != 1 {
		t.Errorf("attempts = %d, want 1 (cancel is never retried)", attempts.Load())
	}
}

func TestEstimatePrice(t *testing.T) {
	fp := newFakePlatform(t, map[string]string{
		"POST /insurance/pricing/estimate/": `{"service_type":"towTruck","estimated_price":"980.00","currency":"TRY","breakdown":{"total":"980.00"}}`,
	})
	c := fp.client(WithCredential(auth.APIKey("partner-key")))

	resp, err := c.EstimatePrice(context.Background(), PricingEstimatePayload{
		ServiceType:     model.ServiceTowTruck,
		VehicleType:     model.VehicleSUV,
		PickupLatitude:  41.0,
		PickupLongitude: 29.0,
		EstimatedKm:     ptr(12.5),
	})
	if err != nil {
		t.Fatalf("EstimatePrice failed: %v", err)
	}
	if resp.EstimatedPrice == nil || *resp.EstimatedPrice != "980.00" {
		t.Errorf("EstimatedPrice = %v", resp.EstimatedPrice)
	}
	if resp.Breakdown == nil || resp.Breakdown.Total != "980.00" {
		t.Errorf("Breakdown = %+v", resp.Breakdown)
	}

	req := fp.next(t)
	if req.body["estimated_km"] != 12.5 {
		t.Errorf("estimated_km = %v", req.body["estimated_km"])
	}
}

func TestClientRecordsMetrics(t *testing.T) {
	fp := newFakePlatform(t, map[string]string{
		"GET /insurance/me/": `{}`,
	})
	m := metrics.New()
	c := fp.client(WithCredential(auth.APIKey("k")), WithMetrics(m))

	if _, err := c.GetProfile(context.Background()); err != nil {
		t.Fatalf("GetProfile failed: %v", err)
	}
	if _, err := c.GetInsuranceRequest(context.Background(), 1); err == nil {
		t.Fatal("expected 404")
	}

	expected := `
# HELP acenta_api_requests_total Total number of REST API calls
# TYPE acenta_api_requests_total counter
acenta_api_requests_total{op="GetInsuranceRequest",status="404"} 1
acenta_api_requests_total{op="GetProfile",status="200"} 1
`
	if err := testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "acenta_api_requests_total"); err != nil {
		t.Error(err)
	}
}
