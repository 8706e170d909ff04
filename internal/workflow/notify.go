package workflow

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/edvin/crisisdesk/internal/activity"
	"github.com/edvin/crisisdesk/internal/model"
)

// NotifyParams carries one committed event and where to deliver it.
type NotifyParams struct {
	Event           model.Event `json:"event"`
	WebhookURL      string      `json:"webhook_url"`
	Template        string      `json:"template"`
	AdminWebhookURL string      `json:"admin_webhook_url,omitempty"`
}

// NotifyIncidentEventWorkflow posts an event to the configured webhooks.
// Delivery is best effort: failures are logged and the workflow completes.
func NotifyIncidentEventWorkflow(ctx workflow.Context, params NotifyParams) error {
	ao := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    time.Second,
			BackoffCoefficient: 2,
			MaximumAttempts:    5,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)
	logger := workflow.GetLogger(ctx)

	targets := make([]string, 0, 2)
	if params.WebhookURL != "" {
		targets = append(targets, params.WebhookURL)
	}
	if params.Event.NotifyAdmin && params.AdminWebhookURL != "" && params.AdminWebhookURL != params.WebhookURL {
		targets = append(targets, params.AdminWebhookURL)
	}
	if len(targets) == 0 {
		return nil
	}

	template := params.Template
	if template == "" {
		template = "generic"
	}

	futures := make([]workflow.Future, len(targets))
	for i, url := range targets {
		futures[i] = workflow.ExecuteActivity(ctx, "SendEventWebhook", activity.SendEventWebhookParams{
			URL:      url,
			Template: template,
			Event:    params.Event,
		})
	}
	for i, f := range futures {
		if err := f.Get(ctx, nil); err != nil {
			logger.Warn("failed to send incident event webhook",
				"event", params.Event.Type, "incident", params.Event.IncidentID,
				"url", targets[i], "error", err)
		}
	}
	return nil
}
