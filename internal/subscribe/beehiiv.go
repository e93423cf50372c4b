package subscribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	utmSource = "trustfall-app"
	utmMedium = "faction-selection"

	// maxProviderBody bounds how much of a provider response is relayed.
	maxProviderBody = 1 << 20
)

// APIError is a non-2xx provider response.
type APIError struct {
	StatusCode int
	Body       []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("provider returned %d: %s", e.StatusCode, strings.TrimSpace(string(e.Body)))
}

// Details returns the provider body as JSON when it is JSON, otherwise as a
// string.
func (e *APIError) Details() any {
	if json.Valid(e.Body) {
		return json.RawMessage(e.Body)
	}
	return string(e.Body)
}

type subscriptionRequest struct {
	Email              string `json:"email"`
	ReactivateExisting bool   `json:"reactivate_existing"`
	SendWelcomeEmail   bool   `json:"send_welcome_email"`
	UTMSource          string `json:"utm_source"`
	UTMMedium          string `json:"utm_medium"`
	UTMCampaign        string `json:"utm_campaign"`
}

type journeyRequest struct {
	SubscriptionID    string `json:"subscription_id"`
	DoubleOptOverride string `json:"double_opt_override"`
}

// Beehiiv talks to the newsletter provider's v2 API.
type Beehiiv struct {
	BaseURL       string
	APIKey        string
	PublicationID string
	HTTP          *http.Client

	tracer trace.Tracer
}

// NewBeehiiv creates a provider client. A nil client uses http.DefaultClient.
func NewBeehiiv(baseURL, apiKey, publicationID string, client *http.Client) *Beehiiv {
	if client == nil {
		client = http.DefaultClient
	}
	return &Beehiiv{
		BaseURL:       strings.TrimRight(baseURL, "/"),
		APIKey:        apiKey,
		PublicationID: publicationID,
		HTTP:          client,
		tracer:        otel.Tracer("github.com/metcalfc/trustfall/internal/subscribe"),
	}
}

// CreateSubscription creates the subscriber record. It returns the provider
// response verbatim along with the new subscription id.
func (b *Beehiiv) CreateSubscription(ctx context.Context, email, campaign string) (json.RawMessage, string, error) {
	ctx, span := b.tracer.Start(ctx, "beehiiv.CreateSubscription",
		trace.WithAttributes(attribute.String("utm.campaign", campaign)))
	defer span.End()

	body := subscriptionRequest{
		Email:              strings.TrimSpace(email),
		ReactivateExisting: false,
		SendWelcomeEmail:   true,
		UTMSource:          utmSource,
		UTMMedium:          utmMedium,
		UTMCampaign:        campaign,
	}
	raw, err := b.post(ctx, span, "subscriptions", body)
	if err != nil {
		return nil, "", err
	}

	var created struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &created); err != nil {
		span.RecordError(err)
		return nil, "", fmt.Errorf("decode subscription: %w", err)
	}
	if created.Data.ID == "" {
		err := fmt.Errorf("decode subscription: missing data.id")
		span.SetStatus(codes.Error, err.Error())
		return nil, "", err
	}
	span.SetAttributes(attribute.String("subscription.id", created.Data.ID))
	return raw, created.Data.ID, nil
}

// EnrollAutomation adds a subscription to an automation journey.
func (b *Beehiiv) EnrollAutomation(ctx context.Context, automationID, subscriptionID string) (json.RawMessage, error) {
	ctx, span := b.tracer.Start(ctx, "beehiiv.EnrollAutomation",
		trace.WithAttributes(
			attribute.String("automation.id", automationID),
			attribute.String("subscription.id", subscriptionID),
		))
	defer span.End()

	body := journeyRequest{
		SubscriptionID:    subscriptionID,
		DoubleOptOverride: "single_opt_in",
	}
	return b.post(ctx, span, "automations/"+url.PathEscape(automationID)+"/journeys", body)
}

func (b *Beehiiv) post(ctx context.Context, span trace.Span, path string, payload any) (json.RawMessage, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	endpoint := b.BaseURL + "/publications/" + url.PathEscape(b.PublicationID) + "/" + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+b.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.HTTP.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport")
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxProviderBody))
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("read provider response: %w", err)
	}
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Body: respBody}
		span.SetStatus(codes.Error, http.StatusText(resp.StatusCode))
		return nil, apiErr
	}
	if !json.Valid(respBody) {
		return nil, fmt.Errorf("provider returned invalid JSON")
	}
	return respBody, nil
}
