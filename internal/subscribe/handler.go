// Package subscribe relays newsletter signups to the provider and enrolls
// the subscriber in the automation of the chosen faction.
package subscribe

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/metcalfc/trustfall/internal/config"
	"github.com/metcalfc/trustfall/internal/faction"
	"github.com/metcalfc/trustfall/internal/httpx"
)

// Messages returned to callers.
const (
	MsgMissingFields = "Email and faction are required"
	MsgServerConfig  = "Server configuration error"
	MsgCreateFailed  = "Failed to create subscription"
	MsgInternal      = "Internal server error"
	MsgJoined        = "Successfully joined the network!"

	maxRequestBody = 64 << 10
)

// Request is the body accepted by the endpoint.
type Request struct {
	Email   string `json:"email"`
	Faction string `json:"faction"`
}

// Response is the success body of the endpoint.
type Response struct {
	Success      bool            `json:"success"`
	Subscription json.RawMessage `json:"subscription"`
	Automation   json.RawMessage `json:"automation"`
	Message      string          `json:"message"`
}

// Handler serves POST /api/subscribe.
type Handler struct {
	provider config.Provider
	client   *http.Client
	log      *zap.Logger
}

// NewHandler creates the subscribe handler. Credentials are checked per
// request so a misconfigured deployment still answers.
func NewHandler(provider config.Provider, client *http.Client, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{provider: provider, client: client, log: log.Named("subscribe")}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := h.log.With(zap.String("request_id", httpx.RequestIDFrom(r.Context())))

	var req Request
	if err := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody)).Decode(&req); err != nil {
		log.Error("decode request", zap.Error(err))
		_ = httpx.WriteJSONErrorDetails(w, http.StatusInternalServerError, MsgInternal, err.Error())
		return
	}
	if req.Email == "" || req.Faction == "" {
		_ = httpx.WriteJSONError(w, http.StatusBadRequest, MsgMissingFields)
		return
	}
	if !h.provider.Complete() {
		log.Error("missing provider credentials")
		_ = httpx.WriteJSONError(w, http.StatusInternalServerError, MsgServerConfig)
		return
	}

	automationID := h.provider.ShadowAutomationID
	if req.Faction == faction.Lumina.String() {
		automationID = h.provider.LuminaAutomationID
	}
	log = log.With(zap.String("faction", req.Faction), zap.String("email_domain", emailDomain(req.Email)))
	log.Info("processing subscription")

	bh := NewBeehiiv(h.provider.BaseURL, h.provider.APIKey.Reveal(), h.provider.PublicationID, h.client)

	subscription, subscriptionID, err := bh.CreateSubscription(r.Context(), req.Email, faction.Campaign(req.Faction))
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			log.Error("subscription creation failed", zap.Int("status", apiErr.StatusCode), zap.ByteString("body", apiErr.Body))
			_ = httpx.WriteJSONErrorDetails(w, apiErr.StatusCode, MsgCreateFailed, apiErr.Details())
			return
		}
		log.Error("subscription request failed", zap.Error(err))
		_ = httpx.WriteJSONErrorDetails(w, http.StatusInternalServerError, MsgInternal, err.Error())
		return
	}
	log.Info("subscription created", zap.String("subscription_id", subscriptionID))

	automation, err := bh.EnrollAutomation(r.Context(), automationID, subscriptionID)
	if err != nil {
		log.Warn("subscription created but automation enrollment failed",
			zap.String("automation_id", automationID), zap.Error(err))
	} else {
		log.Info("added to automation", zap.String("automation_id", automationID))
	}

	_ = httpx.WriteJSON(w, http.StatusOK, Response{
		Success:      true,
		Subscription: subscription,
		Automation:   automation,
		Message:      MsgJoined,
	})
}

func emailDomain(email string) string {
	if i := strings.LastIndex(email, "@"); i >= 0 {
		return strings.TrimSpace(email[i+1:])
	}
	return ""
}
