package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/OlegSmmDrug/agencycore.asia-sub007/internal/domain"
	"github.com/OlegSmmDrug/agencycore.asia-sub007/internal/repository"
)

// Action is one parsed automation action. Each ActionType has exactly one implementation.
type Action interface {
	Type() domain.ActionType
}

type CreateTaskAction struct {
	Title        string     `json:"title" validate:"required"`
	Description  string     `json:"description"`
	TaskType     string     `json:"taskType"`
	AssigneeID   *uuid.UUID `json:"assigneeId"`
	DeadlineDays int        `json:"deadlineDays" validate:"gte=0"`
}

type SendWhatsAppAction struct {
	Phone   string `json:"phone"`
	Message string `json:"message" validate:"required"`
}

type SendEmailAction struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

type ChangeClientStatusAction struct {
	Status string `json:"status" validate:"required"`
}

type AssignManagerAction struct {
	ManagerID uuid.UUID `json:"managerId" validate:"required"`
}

type WebhookAction struct {
	URL     string            `json:"url" validate:"required,url"`
	Headers map[string]string `json:"headers"`
	Payload map[string]any    `json:"payload"`
}

type CreateNotificationAction struct {
	UserID  *uuid.UUID `json:"userId"`
	Title   string     `json:"title" validate:"required"`
	Message string     `json:"message"`
	Kind    string     `json:"type"`
}

func (CreateTaskAction) Type() domain.ActionType         { return domain.ActionCreateTask }
func (SendWhatsAppAction) Type() domain.ActionType       { return domain.ActionSendWhatsApp }
func (SendEmailAction) Type() domain.ActionType          { return domain.ActionSendEmail }
func (ChangeClientStatusAction) Type() domain.ActionType { return domain.ActionChangeClientStatus }
func (AssignManagerAction) Type() domain.ActionType      { return domain.ActionAssignManager }
func (WebhookAction) Type() domain.ActionType            { return domain.ActionWebhook }
func (CreateNotificationAction) Type() domain.ActionType { return domain.ActionCreateNotification }

var actionValidator = validator.New()

// ParseAction decodes an action config into its typed form. Unknown types return
// ErrUnsupportedAction, malformed configs ErrActionConfigInvalid.
func ParseAction(actionType domain.ActionType, config map[string]any) (Action, error) {
	var action Action
	switch actionType {
	case domain.ActionCreateTask:
		action = &CreateTaskAction{}
	case domain.ActionSendWhatsApp:
		action = &SendWhatsAppAction{}
	case domain.ActionSendEmail:
		action = &SendEmailAction{}
	case domain.ActionChangeClientStatus:
		action = &ChangeClientStatusAction{}
	case domain.ActionAssignManager:
		action = &AssignManagerAction{}
	case domain.ActionWebhook:
		action = &WebhookAction{}
	case domain.ActionCreateNotification:
		action = &CreateNotificationAction{}
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedAction, actionType)
	}

	raw, err := json.Marshal(config)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrActionConfigInvalid, err)
	}
	if err := json.Unmarshal(raw, action); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrActionConfigInvalid, err)
	}
	if err := actionValidator.Struct(action); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrActionConfigInvalid, err)
	}
	return action, nil
}

type ActionStatus string

const (
	ActionDone    ActionStatus = "done"
	ActionSkipped ActionStatus = "skipped"
)

type ActionResult struct {
	Type   domain.ActionType `json:"type"`
	Status ActionStatus      `json:"status"`
	Detail string            `json:"detail,omitempty"`
}

// ActionStore is the persistence surface actions write to.
type ActionStore interface {
	CreateTask(ctx context.Context, arg repository.CreateTaskParams) (domain.Task, error)
	UpdateClientStatus(ctx context.Context, orgID, clientID uuid.UUID, status string) (int64, error)
	UpdateClientManager(ctx context.Context, orgID, clientID, managerID uuid.UUID) (int64, error)
}

// MessageSender delivers a text message to a phone number.
type MessageSender interface {
	SendMessage(ctx context.Context, phone, text string) error
}

// WebhookPoster posts a JSON body to an arbitrary URL.
type WebhookPoster interface {
	Post(ctx context.Context, url string, headers map[string]string, body any) error
}

// Notifier creates in-app notifications. Delivery is fire-and-forget.
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, title, message, notifType string)
}

type ActionDispatcher struct {
	store    ActionStore
	whatsapp MessageSender
	webhooks WebhookPoster
	notifier Notifier
}

func NewActionDispatcher(store ActionStore, whatsapp MessageSender, webhooks WebhookPoster, notifier Notifier) *ActionDispatcher {
	return &ActionDispatcher{store: store, whatsapp: whatsapp, webhooks: webhooks, notifier: notifier}
}

// Dispatch parses and executes one action against vars. Unknown action types are
// logged and reported as skipped rather than failing.
func (d *ActionDispatcher) Dispatch(ctx context.Context, orgID uuid.UUID, actionType domain.ActionType, config map[string]any, vars map[string]any) (ActionResult, error) {
	action, err := ParseAction(actionType, config)
	if err != nil {
		if errors.Is(err, domain.ErrUnsupportedAction) {
			slog.Warn("skipping unsupported automation action", "action_type", actionType)
			return ActionResult{Type: actionType, Status: ActionSkipped, Detail: "unsupported action type"}, nil
		}
		return ActionResult{}, err
	}
	return d.Execute(ctx, orgID, action, vars)
}

func (d *ActionDispatcher) Execute(ctx context.Context, orgID uuid.UUID, action Action, vars map[string]any) (ActionResult, error) {
	res := ActionResult{Type: action.Type(), Status: ActionDone}

	switch a := action.(type) {
	case *CreateTaskAction:
		params := repository.CreateTaskParams{
			OrganizationID: orgID,
			ClientID:       uuidVar(vars, "client_id"),
			ProjectID:      uuidVar(vars, "project_id"),
			AssigneeID:     a.AssigneeID,
			Title:          ReplaceVariables(a.Title, vars),
			Description:    ReplaceVariables(a.Description, vars),
			Type:           a.TaskType,
			EstimatedHours: decimal.Zero,
		}
		if params.AssigneeID == nil {
			params.AssigneeID = uuidVar(vars, "user_id")
		}
		if a.DeadlineDays > 0 {
			deadline := time.Now().AddDate(0, 0, a.DeadlineDays)
			params.Deadline = &deadline
		}
		task, err := d.store.CreateTask(ctx, params)
		if err != nil {
			return res, fmt.Errorf("create task: %w", err)
		}
		res.Detail = task.ID.String()

	case *SendWhatsAppAction:
		phone := a.Phone
		if phone == "" {
			phone, _ = vars["phone"].(string)
		}
		if phone == "" {
			return res, fmt.Errorf("%w: no phone for whatsapp message", domain.ErrActionConfigInvalid)
		}
		if err := d.whatsapp.SendMessage(ctx, ReplaceVariables(phone, vars), ReplaceVariables(a.Message, vars)); err != nil {
			return res, fmt.Errorf("send whatsapp: %w", err)
		}

	case *SendEmailAction:
		// No mail transport is configured; the send is logged and counted.
		slog.Info("email action logged", "to", ReplaceVariables(a.To, vars), "subject", ReplaceVariables(a.Subject, vars))
		res.Detail = "logged only"

	case *ChangeClientStatusAction:
		clientID := uuidVar(vars, "client_id")
		if clientID == nil {
			return res, fmt.Errorf("%w: client_id missing from context", domain.ErrActionConfigInvalid)
		}
		if _, err := d.store.UpdateClientStatus(ctx, orgID, *clientID, a.Status); err != nil {
			return res, fmt.Errorf("update client status: %w", err)
		}

	case *AssignManagerAction:
		clientID := uuidVar(vars, "client_id")
		if clientID == nil {
			return res, fmt.Errorf("%w: client_id missing from context", domain.ErrActionConfigInvalid)
		}
		if _, err := d.store.UpdateClientManager(ctx, orgID, *clientID, a.ManagerID); err != nil {
			return res, fmt.Errorf("update client manager: %w", err)
		}

	case *WebhookAction:
		body := make(map[string]any, len(vars)+len(a.Payload))
		for k, v := range vars {
			body[k] = v
		}
		for k, v := range SubstitutePayload(a.Payload, vars).(map[string]any) {
			body[k] = v
		}
		if err := d.webhooks.Post(ctx, a.URL, a.Headers, body); err != nil {
			return res, fmt.Errorf("call webhook: %w", err)
		}

	case *CreateNotificationAction:
		userID := a.UserID
		if userID == nil {
			userID = uuidVar(vars, "user_id")
		}
		if userID == nil {
			return res, fmt.Errorf("%w: no recipient for notification", domain.ErrActionConfigInvalid)
		}
		kind := a.Kind
		if kind == "" {
			kind = "automation"
		}
		d.notifier.Notify(ctx, *userID, ReplaceVariables(a.Title, vars), ReplaceVariables(a.Message, vars), kind)

	default:
		slog.Warn("skipping unsupported automation action", "action_type", action.Type())
		res.Status = ActionSkipped
	}

	return res, nil
}

func uuidVar(vars map[string]any, key string) *uuid.UUID {
	switch v := vars[key].(type) {
	case uuid.UUID:
		return &v
	case *uuid.UUID:
		return v
	case string:
		id, err := uuid.Parse(v)
		if err != nil {
			return nil
		}
		return &id
	default:
		return nil
	}
}
