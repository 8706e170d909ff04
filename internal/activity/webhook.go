package activity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.temporal.io/sdk/temporal"

	"github.com/edvin/crisisdesk/internal/model"
)

// Webhook contains activities for posting incident notifications.
type Webhook struct {
	client *http.Client
}

// NewWebhook creates a new Webhook activity struct.
func NewWebhook() *Webhook {
	return &Webhook{
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// SendEventWebhookParams holds parameters for the SendEventWebhook activity.
type SendEventWebhookParams struct {
	URL      string      `json:"url"`
	Template string      `json:"template"` // "generic" or "slack"
	Event    model.Event `json:"event"`
}

// SendEventWebhook POSTs one notification event. 4xx responses are not retried.
func (a *Webhook) SendEventWebhook(ctx context.Context, params SendEventWebhookParams) error {
	var body []byte
	var err error

	switch params.Template {
	case "slack":
		body, err = buildSlackPayload(params.Event)
	default:
		body, err = buildGenericPayload(params.Event)
	}
	if err != nil {
		return temporal.NewNonRetryableApplicationError("build webhook payload", "MARSHAL_ERROR", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, params.URL, bytes.NewReader(body))
	if err != nil {
		return temporal.NewNonRetryableApplicationError("create webhook request", "REQUEST_ERROR", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Crisis-Event", params.Event.Type)
	req.Header.Set("Idempotency-Key", params.Event.ID)

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook POST to %s: %w", params.URL, err)
	}
	defer func() { io.Copy(io.Discard, resp.Body); resp.Body.Close() }()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
		return temporal.NewNonRetryableApplicationError(
			fmt.Sprintf("webhook returned %d", resp.StatusCode),
			"CLIENT_ERROR", nil)
	}
	return fmt.Errorf("webhook returned %d", resp.StatusCode)
}

// GenericWebhookPayload is the default JSON payload for webhooks.
type GenericWebhookPayload struct {
	Event string      `json:"event"`
	Data  model.Event `json:"data"`
}

func buildGenericPayload(evt model.Event) ([]byte, error) {
	return json.Marshal(GenericWebhookPayload{
		Event: evt.Type,
		Data:  evt,
	})
}

// headline is the one-line human summary used by chat templates.
func headline(evt model.Event) string {
	switch evt.Type {
	case model.EventIncidentReported:
		return "New incident reported"
	case model.EventStatusChanged:
		if evt.NotifyAdmin {
			return "Incident withdrawn by reporter"
		}
		return fmt.Sprintf("Incident %s", strings.ReplaceAll(string(evt.NewStatus), "_", " "))
	case model.EventTeamAssigned:
		return "Rescue team assigned"
	case model.EventResourceAssigned:
		return "Resource assigned"
	case model.EventResourceReleased:
		return "Resource released"
	case model.EventIncidentDeleted:
		return "Incident deleted"
	default:
		return evt.Type
	}
}

// buildSlackPayload creates a Slack Block Kit message.
func buildSlackPayload(evt model.Event) ([]byte, error) {
	emoji := ":information_source:"
	switch evt.Priority {
	case model.PriorityCritical:
		emoji = ":rotating_light:"
	case model.PriorityHigh:
		emoji = ":warning:"
	}

	title := evt.Title
	if title == "" {
		title = evt.IncidentID
	}

	fields := []map[string]interface{}{
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Incident:* %s", evt.IncidentID),
		},
		{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*By:* %s (%s)", evt.ActorID, evt.ActorRole),
		},
	}
	if evt.NewStatus != "" {
		status := string(evt.NewStatus)
		if evt.OldStatus != "" && evt.OldStatus != evt.NewStatus {
			status = fmt.Sprintf("%s → %s", evt.OldStatus, evt.NewStatus)
		}
		fields = append(fields, map[string]interface{}{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Status:* %s", status),
		})
	}
	if evt.Priority != "" {
		fields = append(fields, map[string]interface{}{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Priority:* %s", evt.Priority),
		})
	}
	if evt.TeamID != "" {
		fields = append(fields, map[string]interface{}{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Team:* %s", evt.TeamID),
		})
	}
	if evt.ResourceID != "" {
		fields = append(fields, map[string]interface{}{
			"type": "mrkdwn",
			"text": fmt.Sprintf("*Resource:* %s", evt.ResourceID),
		})
	}

	blocks := []map[string]interface{}{
		{
			"type": "header",
			"text": map[string]string{
				"type": "plain_text",
				"text": headline(evt),
			},
		},
		{
			"type": "section",
			"text": map[string]string{
				"type": "mrkdwn",
				"text": fmt.Sprintf("%s *%s*", emoji, title),
			},
		},
		{
			"type":   "section",
			"fields": fields,
		},
	}

	if evt.Notes != "" {
		blocks = append(blocks, map[string]interface{}{
			"type": "section",
			"text": map[string]string{
				"type": "mrkdwn",
				"text": fmt.Sprintf("> %s", evt.Notes),
			},
		})
	}

	return json.Marshal(map[string]interface{}{
		"blocks": blocks,
	})
}
