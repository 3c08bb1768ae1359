package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OlegSmmDrug/agencycore.asia-sub007/internal/domain"
)

type dispatcherDeps struct {
	store    *MockActionStore
	whatsapp *MockMessageSender
	webhooks *MockWebhookPoster
	notifier *MockNotifier
}

func newTestDispatcher() (*ActionDispatcher, dispatcherDeps) {
	deps := dispatcherDeps{
		store:    NewMockActionStore(),
		whatsapp: &MockMessageSender{},
		webhooks: &MockWebhookPoster{},
		notifier: &MockNotifier{},
	}
	return NewActionDispatcher(deps.store, deps.whatsapp, deps.webhooks, deps.notifier), deps
}

func TestParseAction(t *testing.T) {
	action, err := ParseAction(domain.ActionWebhook, map[string]any{"url": "https://example.com/hook"})
	require.NoError(t, err)
	assert.IsType(t, &WebhookAction{}, action)

	_, err = ParseAction(domain.ActionWebhook, map[string]any{"url": "not a url"})
	require.ErrorIs(t, err, domain.ErrActionConfigInvalid)

	_, err = ParseAction(domain.ActionCreateTask, map[string]any{"title": 12})
	require.ErrorIs(t, err, domain.ErrActionConfigInvalid)

	_, err = ParseAction("send_pigeon", nil)
	require.ErrorIs(t, err, domain.ErrUnsupportedAction)
}

func TestDispatch_UnknownTypeSkipped(t *testing.T) {
	d, _ := newTestDispatcher()

	res, err := d.Dispatch(context.Background(), uuid.New(), "send_pigeon", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, ActionSkipped, res.Status)
}

func TestDispatch_CreateTask(t *testing.T) {
	d, deps := newTestDispatcher()
	orgID, clientID, userID := uuid.New(), uuid.New(), uuid.New()

	res, err := d.Dispatch(context.Background(), orgID, domain.ActionCreateTask,
		map[string]any{"title": "Call {{name}}", "taskType": "Call", "deadlineDays": 2},
		map[string]any{"name": "Anna", "client_id": clientID.String(), "user_id": userID},
	)
	require.NoError(t, err)
	assert.Equal(t, ActionDone, res.Status)

	require.Len(t, deps.store.Tasks, 1)
	task := deps.store.Tasks[0]
	assert.Equal(t, "Call Anna", task.Title)
	assert.Equal(t, orgID, task.OrganizationID)
	require.NotNil(t, task.ClientID)
	assert.Equal(t, clientID, *task.ClientID)
	require.NotNil(t, task.AssigneeID)
	assert.Equal(t, userID, *task.AssigneeID)
	assert.NotNil(t, task.Deadline)
}

func TestDispatch_WhatsApp(t *testing.T) {
	d, deps := newTestDispatcher()

	_, err := d.Dispatch(context.Background(), uuid.New(), domain.ActionSendWhatsApp,
		map[string]any{"message": "Hello {{name}}"},
		map[string]any{"name": "Anna", "phone": "+7 701 000 00 00"},
	)
	require.NoError(t, err)
	require.Len(t, deps.whatsapp.Sent, 1)
	assert.Equal(t, "Hello Anna", deps.whatsapp.Sent[0].Text)
	assert.Equal(t, "+7 701 000 00 00", deps.whatsapp.Sent[0].Phone)

	_, err = d.Dispatch(context.Background(), uuid.New(), domain.ActionSendWhatsApp,
		map[string]any{"message": "Hi"}, map[string]any{})
	require.ErrorIs(t, err, domain.ErrActionConfigInvalid)
}

func TestDispatch_EmailLogsOnly(t *testing.T) {
	d, _ := newTestDispatcher()

	res, err := d.Dispatch(context.Background(), uuid.New(), domain.ActionSendEmail,
		map[string]any{"to": "a@b.c", "subject": "Hi"}, nil)
	require.NoError(t, err)
	assert.Equal(t, ActionDone, res.Status)
	assert.Equal(t, "logged only", res.Detail)
}

func TestDispatch_ClientUpdates(t *testing.T) {
	d, deps := newTestDispatcher()
	clientID, managerID := uuid.New(), uuid.New()
	vars := map[string]any{"client_id": clientID}

	_, err := d.Dispatch(context.Background(), uuid.New(), domain.ActionChangeClientStatus,
		map[string]any{"status": "in_work"}, vars)
	require.NoError(t, err)
	assert.Equal(t, "in_work", deps.store.StatusUpdates[clientID])

	_, err = d.Dispatch(context.Background(), uuid.New(), domain.ActionAssignManager,
		map[string]any{"managerId": managerID.String()}, vars)
	require.NoError(t, err)
	assert.Equal(t, managerID, deps.store.ManagerUpdates[clientID])

	_, err = d.Dispatch(context.Background(), uuid.New(), domain.ActionChangeClientStatus,
		map[string]any{"status": "in_work"}, map[string]any{})
	require.ErrorIs(t, err, domain.ErrActionConfigInvalid)
}

func TestDispatch_Webhook(t *testing.T) {
	d, deps := newTestDispatcher()

	_, err := d.Dispatch(context.Background(), uuid.New(), domain.ActionWebhook,
		map[string]any{
			"url":     "https://example.com/hook",
			"headers": map[string]any{"X-Token": "abc"},
			"payload": map[string]any{"text": "New lead {{name}}", "name": "override"},
		},
		map[string]any{"name": "Anna", "budget": 100},
	)
	require.NoError(t, err)
	require.Len(t, deps.webhooks.Posts, 1)

	post := deps.webhooks.Posts[0]
	assert.Equal(t, "https://example.com/hook", post.URL)
	assert.Equal(t, "abc", post.Headers["X-Token"])
	body := post.Body.(map[string]any)
	assert.Equal(t, "New lead Anna", body["text"])
	assert.Equal(t, "override", body["name"])
	assert.Equal(t, 100, body["budget"])
}

func TestDispatch_Notification(t *testing.T) {
	d, deps := newTestDispatcher()
	userID := uuid.New()

	_, err := d.Dispatch(context.Background(), uuid.New(), domain.ActionCreateNotification,
		map[string]any{"title": "Deal {{deal}} won"},
		map[string]any{"deal": "#12", "user_id": userID.String()},
	)
	require.NoError(t, err)
	require.Len(t, deps.notifier.Sent, 1)
	assert.Equal(t, userID, deps.notifier.Sent[0].UserID)
	assert.Equal(t, "Deal #12 won", deps.notifier.Sent[0].Title)
	assert.Equal(t, "automation", deps.notifier.Sent[0].Type)
}
