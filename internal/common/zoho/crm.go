package zoho

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	commonhttp "visa-portal/internal/common/http"
)

var ErrLeadNotFound = errors.New("lead not found")

// CRMClient talks to the Zoho CRM Leads module.
type CRMClient struct {
	baseURL    string
	httpClient *commonhttp.Client
}

// Lead is the subset of Zoho lead fields the portal writes.
type Lead struct {
	ID          string `json:"id,omitempty"`
	Email       string `json:"Email"`
	FirstName   string `json:"First_Name,omitempty"`
	LastName    string `json:"Last_Name"`
	Phone       string `json:"Phone,omitempty"`
	Country     string `json:"Country,omitempty"`
	Source      string `json:"Lead_Source,omitempty"`
	Description string `json:"Description,omitempty"`
	VisaType    string `json:"Visa_Type,omitempty"`
}

type upsertResponse struct {
	Data []struct {
		Code    string `json:"code"`
		Details struct {
			ID string `json:"id"`
		} `json:"details"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"data"`
}

func NewCRMClient(baseURL, oauthToken string) *CRMClient {
	return &CRMClient{
		baseURL: baseURL,
		httpClient: commonhttp.NewClient(30*time.Second).
			WithHeader("Authorization", "Zoho-oauthtoken "+oauthToken),
	}
}

// CreateLead inserts a lead and returns its Zoho id.
func (c *CRMClient) CreateLead(ctx context.Context, lead *Lead) (string, error) {
	var resp upsertResponse
	payload := map[string]interface{}{"data": []Lead{*lead}}

	if err := c.httpClient.DoJSON(ctx, http.MethodPost, c.baseURL+"/Leads", payload, &resp); err != nil {
		return "", fmt.Errorf("failed to create lead: %w", err)
	}

	if len(resp.Data) == 0 {
		return "", fmt.Errorf("no data in response")
	}
	if resp.Data[0].Status != "success" {
		return "", fmt.Errorf("lead creation failed: %s", resp.Data[0].Message)
	}

	return resp.Data[0].Details.ID, nil
}

// FindLeadByEmail returns ErrLeadNotFound when Zoho has no lead for email.
func (c *CRMClient) FindLeadByEmail(ctx context.Context, email string) (*Lead, error) {
	endpoint := fmt.Sprintf("%s/Leads/search?email=%s", c.baseURL, url.QueryEscape(email))

	var result struct {
		Data []Lead `json:"data"`
	}
	// Zoho answers 204 with an empty body when nothing matches
	if err := c.httpClient.DoJSON(ctx, http.MethodGet, endpoint, nil, &result); err != nil {
		return nil, fmt.Errorf("failed to search leads: %w", err)
	}

	if len(result.Data) == 0 {
		return nil, ErrLeadNotFound
	}
	return &result.Data[0], nil
}
