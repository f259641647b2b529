package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// RegisterCompany submits an insurance company for approval.
func (c *Client) RegisterCompany(ctx context.Context, p RegisterPayload) (*RegisterResponse, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	var resp RegisterResponse
	err := c.do(ctx, call{
		op:     "RegisterCompany",
		method: http.MethodPost,
		base:   c.endpoints.Insurance,
		path:   "/register/",
		body:   p,
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("register company: %w", err)
	}
	return &resp, nil
}

// LoginCompany returns the company's API key for valid credentials.
func (c *Client) LoginCompany(ctx context.Context, p LoginPayload) (*LoginResponse, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	var resp LoginResponse
	err := c.do(ctx, call{
		op:     "LoginCompany",
		method: http.MethodPost,
		base:   c.endpoints.Insurance,
		path:   "/login/",
		body:   p,
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	return &resp, nil
}

// GetProfile fetches the company profile and request statistics.
func (c *Client) GetProfile(ctx context.Context) (*CompanyProfile, error) {
	cl, err := c.partner("GetProfile", http.MethodGet, "/me/")
	if err != nil {
		return nil, err
	}

	var resp CompanyProfile
	if err := c.do(ctx, cl, &resp); err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &resp, nil
}

// UpdateWebhook sets the URL the platform calls on request events.
func (c *Client) UpdateWebhook(ctx context.Context, webhookURL string) (*WebhookResponse, error) {
	if err := validateWebhookURL(webhookURL); err != nil {
		return nil, err
	}
	cl, err := c.partner("UpdateWebhook", http.MethodPut, "/me/")
	if err != nil {
		return nil, err
	}
	cl.body = webhookPayload{WebhookURL: webhookURL}

	var resp WebhookResponse
	if err := c.do(ctx, cl, &resp); err != nil {
		return nil, fmt.Errorf("update webhook: %w", err)
	}
	return &resp, nil
}

// CreateInsuranceRequest opens a service request for an insured customer.
func (c *Client) CreateInsuranceRequest(ctx context.Context, p InsuranceRequestCreatePayload) (*InsuranceRequestCreateResponse, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	cl, err := c.partner("CreateInsuranceRequest", http.MethodPost, "/requests/create/")
	if err != nil {
		return nil, err
	}
	cl.body = p

	var resp InsuranceRequestCreateResponse
	if err := c.do(ctx, cl, &resp); err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	return &resp, nil
}

// ListInsuranceRequests fetches a page of the company's requests.
func (c *Client) ListInsuranceRequests(ctx context.Context, opts ListOptions) (*InsuranceRequestListResponse, error) {
	if err := validStatusFilter(opts.Status); err != nil {
		return nil, err
	}
	cl, err := c.partner("ListInsuranceRequests", http.MethodGet, "/requests/")
	if err != nil {
		return nil, err
	}

	query := url.Values{}
	if opts.Status != "" {
		query.Set("status", string(opts.Status))
	}
	if opts.Page > 0 {
		query.Set("page", strconv.Itoa(opts.Page))
	}
	if opts.PageSize > 0 {
		query.Set("page_size", strconv.Itoa(opts.PageSize))
	}
	cl.query = query

	var resp InsuranceRequestListResponse
	if err := c.do(ctx, cl, &resp); err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	return &resp, nil
}

// ListAllInsuranceRequests pages through every request matching opts.
func (c *Client) ListAllInsuranceRequests(ctx context.Context, opts ListOptions) ([]InsuranceRequestSummary, error) {
	var all []InsuranceRequestSummary
	if opts.Page < 1 {
		opts.Page = 1
	}

	for {
		resp, err := c.ListInsuranceRequests(ctx, opts)
		if err != nil {
			return nil, err
		}

		all = append(all, resp.Results...)

		if len(resp.Results) == 0 || len(all) >= resp.Count {
			break
		}
		opts.Page++
	}

	return all, nil
}

// GetInsuranceRequest fetches the authoritative state of one request.
func (c *Client) GetInsuranceRequest(ctx context.Context, id int64) (*InsuranceRequestDetail, error) {
	cl, err := c.partner("GetInsuranceRequest", http.MethodGet, fmt.Sprintf("/requests/%d/", id))
	if err != nil {
		return nil, err
	}

	var resp InsuranceRequestDetail
	if err := c.do(ctx, cl, &resp); err != nil {
		return nil, fmt.Errorf("get request %d: %w", id, err)
	}
	return &resp, nil
}

// CancelInsuranceRequest cancels a request. It is never retried.
func (c *Client) CancelInsuranceRequest(ctx context.Context, id int64) (*CancelRequestResponse, error) {
	cl, err := c.partner("CancelInsuranceRequest", http.MethodPost, fmt.Sprintf("/requests/%d/cancel/", id))
	if err != nil {
		return nil, err
	}
	cl.body = struct{}{}

	var resp CancelRequestResponse
	if err := c.do(ctx, cl, &resp); err != nil {
		return nil, fmt.Errorf("cancel request %d: %w", id, err)
	}
	return &resp, nil
}

// EstimatePrice asks for a price quote.
func (c *Client) EstimatePrice(ctx context.Context, p PricingEstimatePayload) (*PricingEstimateResponse, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	cl, err := c.partner("EstimatePrice", http.MethodPost, "/pricing/estimate/")
	if err != nil {
		return nil, err
	}
	cl.body = p

	var resp PricingEstimateResponse
	if err := c.do(ctx, cl, &resp); err != nil {
		return nil, fmt.Errorf("estimate price: %w", err)
	}
	return &resp, nil
}
