package workflow

import (
	"go.temporal.io/sdk/testsuite"

	"github.com/edvin/crisisdesk/internal/activity"
)

// registerActivities gives the test environment the activity signatures it
// needs to (de)serialize mocked calls.
func registerActivities(env *testsuite.TestWorkflowEnvironment) {
	env.RegisterActivity(&activity.Webhook{})
}
