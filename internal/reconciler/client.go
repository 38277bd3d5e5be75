package reconciler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"telemed-booking/internal/delivery/dto"

	"github.com/google/uuid"
)

// APIClient is the SlotFetcher backed by the booking server's slots endpoint.
type APIClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewAPIClient(baseURL string, httpClient *http.Client) *APIClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &APIClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

type slotsEnvelope struct {
	Success bool                     `json:"success"`
	Message string                   `json:"message"`
	Data    dto.AvailabilityResponse `json:"data"`
}

// FetchSlots calls GET /api/v1/doctors/{doctorId}/slots?date=YYYY-MM-DD and
// decodes the response envelope. Any non-200 answer is an error; the caller
// keeps its previous view in that case.
func (c *APIClient) FetchSlots(ctx context.Context, doctorID uuid.UUID, date string) ([]string, error) {
	url := fmt.Sprintf("%s/api/v1/doctors/%s/slots?date=%s", c.baseURL, doctorID, date)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("slots endpoint returned status %d", resp.StatusCode)
	}

	var envelope slotsEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("malformed slots response: %w", err)
	}
	if !envelope.Success {
		return nil, fmt.Errorf("slots endpoint rejected request: %s", envelope.Message)
	}

	return envelope.Data.Slots, nil
}
