package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/OlegSmmDrug/agencycore.asia-sub007/internal/domain"
	"github.com/OlegSmmDrug/agencycore.asia-sub007/internal/repository"
)

var (
	ErrMockStore = errors.New("mock store error")
	ErrMockBonus = errors.New("mock bonus error")

	errUniqueViolation = &pgconn.PgError{Code: "23505"}
)

// memReferralStore implements ReferralStore over slices with the same lookup rules as the SQL.
type memReferralStore struct {
	mu    sync.Mutex
	promo []domain.PromoCode
	regs  []domain.ReferralRegistration
	txs   []domain.ReferralTransaction

	CreateRegistrationFunc func(arg repository.CreateReferralRegistrationParams) error
	PaymentsIncrements     int
}

func (m *memReferralStore) addPromo(code string, orgID, userID uuid.UUID) domain.PromoCode {
	p := domain.PromoCode{ID: uuid.New(), Code: code, OrganizationID: orgID, UserID: userID, IsActive: true}
	m.promo = append(m.promo, p)
	return p
}

func (m *memReferralStore) registrations(referred uuid.UUID) []domain.ReferralRegistration {
	var out []domain.ReferralRegistration
	for _, r := range m.regs {
		if r.ReferredOrganizationID == referred {
			out = append(out, r)
		}
	}
	return out
}

func (m *memReferralStore) GetActivePromoCodeByCode(_ context.Context, code string) (domain.PromoCode, error) {
	for _, p := range m.promo {
		if p.Code == code && p.IsActive {
			return p, nil
		}
	}
	return domain.PromoCode{}, pgx.ErrNoRows
}

func (m *memReferralStore) GetPromoCodeByUser(_ context.Context, orgID, userID uuid.UUID) (domain.PromoCode, error) {
	for _, p := range m.promo {
		if p.OrganizationID == orgID && p.UserID == userID && p.IsActive {
			return p, nil
		}
	}
	return domain.PromoCode{}, pgx.ErrNoRows
}

func (m *memReferralStore) CreatePromoCode(_ context.Context, arg repository.CreatePromoCodeParams) (domain.PromoCode, error) {
	for _, p := range m.promo {
		if p.Code == arg.Code {
			return domain.PromoCode{}, errUniqueViolation
		}
	}
	return m.addPromo(arg.Code, arg.OrganizationID, arg.UserID), nil
}

func (m *memReferralStore) DeactivatePromoCode(_ context.Context, orgID, id uuid.UUID) (int64, error) {
	for i := range m.promo {
		if m.promo[i].ID == id && m.promo[i].OrganizationID == orgID && m.promo[i].IsActive {
			m.promo[i].IsActive = false
			return 1, nil
		}
	}
	return 0, nil
}

func (m *memReferralStore) IncrementPromoRegistrations(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.promo {
		if m.promo[i].ID == id {
			m.promo[i].RegistrationsCount++
		}
	}
	return nil
}

func (m *memReferralStore) IncrementPromoPayments(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PaymentsIncrements++
	for i := range m.promo {
		if m.promo[i].ID == id {
			m.promo[i].PaymentsCount++
		}
	}
	return nil
}

func (m *memReferralStore) CreateReferralRegistration(_ context.Context, arg repository.CreateReferralRegistrationParams) (domain.ReferralRegistration, error) {
	if m.CreateRegistrationFunc != nil {
		if err := m.CreateRegistrationFunc(arg); err != nil {
			return domain.ReferralRegistration{}, err
		}
	}
	r := domain.ReferralRegistration{
		ID:                     uuid.New(),
		PromoCodeID:            arg.PromoCodeID,
		ReferrerOrganizationID: arg.ReferrerOrganizationID,
		ReferrerUserID:         arg.ReferrerUserID,
		ReferredOrganizationID: arg.ReferredOrganizationID,
		Level:                  arg.Level,
		IsActive:               true,
		CreatedAt:              time.Now(),
	}
	m.regs = append(m.regs, r)
	return r, nil
}

func (m *memReferralStore) GetDirectReferrer(_ context.Context, referredOrgID uuid.UUID) (domain.ReferralRegistration, error) {
	for _, r := range m.regs {
		if r.ReferredOrganizationID == referredOrgID && r.Level == 1 {
			return r, nil
		}
	}
	return domain.ReferralRegistration{}, pgx.ErrNoRows
}

func (m *memReferralStore) ListRegistrationsByReferred(_ context.Context, referredOrgID uuid.UUID) ([]domain.ReferralRegistration, error) {
	return m.registrations(referredOrgID), nil
}

func (m *memReferralStore) SetReferralActive(_ context.Context, referrerOrgID, referredOrgID uuid.UUID, active bool) (int64, error) {
	var n int64
	for i := range m.regs {
		r := &m.regs[i]
		if r.ReferrerOrganizationID == referrerOrgID && r.ReferredOrganizationID == referredOrgID && r.Level == 1 {
			r.IsActive = active
			n++
		}
	}
	return n, nil
}

func (m *memReferralStore) CountDirectReferrals(_ context.Context, referrerOrgID uuid.UUID) (repository.ReferralCounts, error) {
	var c repository.ReferralCounts
	for _, r := range m.regs {
		if r.ReferrerOrganizationID == referrerOrgID && r.Level == 1 {
			c.Total++
			if r.IsActive {
				c.Active++
			}
		}
	}
	return c, nil
}

func (m *memReferralStore) SumCommissions(_ context.Context, referrerOrgID, referrerUserID uuid.UUID) (repository.CommissionTotals, error) {
	t := repository.CommissionTotals{Pending: decimal.Zero, Ready: decimal.Zero, Paid: decimal.Zero}
	for _, tx := range m.txs {
		if tx.ReferrerOrganizationID != referrerOrgID || tx.ReferrerUserID != referrerUserID {
			continue
		}
		switch tx.Status {
		case domain.ReferralTxPending:
			t.Pending = t.Pending.Add(tx.CommissionAmount)
		case domain.ReferralTxReady:
			t.Ready = t.Ready.Add(tx.CommissionAmount)
		case domain.ReferralTxPaid:
			t.Paid = t.Paid.Add(tx.CommissionAmount)
		}
	}
	return t, nil
}

func (m *memReferralStore) CreateReferralTransaction(_ context.Context, arg repository.CreateReferralTransactionParams) (domain.ReferralTransaction, error) {
	tx := domain.ReferralTransaction{
		ID:                     uuid.New(),
		RegistrationID:         arg.Registration.ID,
		ReferrerOrganizationID: arg.Registration.ReferrerOrganizationID,
		ReferrerUserID:         arg.Registration.ReferrerUserID,
		ReferredOrganizationID: arg.Registration.ReferredOrganizationID,
		Level:                  arg.Registration.Level,
		PaymentAmount:          arg.PaymentAmount,
		CommissionPercent:      arg.CommissionPercent,
		CommissionAmount:       arg.CommissionAmount,
		Status:                 domain.ReferralTxPending,
		CreatedAt:              time.Now(),
	}
	m.txs = append(m.txs, tx)
	return tx, nil
}

func (m *memReferralStore) GetReferralTransaction(_ context.Context, orgID, id uuid.UUID) (domain.ReferralTransaction, error) {
	for _, tx := range m.txs {
		if tx.ID == id && tx.ReferrerOrganizationID == orgID {
			return tx, nil
		}
	}
	return domain.ReferralTransaction{}, pgx.ErrNoRows
}

func (m *memReferralStore) AdvanceReferralTransaction(_ context.Context, orgID, id uuid.UUID, from, to domain.ReferralTxStatus) (domain.ReferralTransaction, error) {
	for i := range m.txs {
		tx := &m.txs[i]
		if tx.ID == id && tx.ReferrerOrganizationID == orgID && tx.Status == from {
			tx.Status = to
			now := time.Now()
			if to == domain.ReferralTxReady {
				tx.ReadyAt = &now
			} else {
				tx.PaidAt = &now
			}
			return *tx, nil
		}
	}
	return domain.ReferralTransaction{}, pgx.ErrNoRows
}

// MockActionStore implements ActionStore and records every call.
type MockActionStore struct {
	CreateTaskFunc func(arg repository.CreateTaskParams) (domain.Task, error)
	Tasks          []repository.CreateTaskParams
	StatusUpdates  map[uuid.UUID]string
	ManagerUpdates map[uuid.UUID]uuid.UUID
}

func NewMockActionStore() *MockActionStore {
	return &MockActionStore{StatusUpdates: map[uuid.UUID]string{}, ManagerUpdates: map[uuid.UUID]uuid.UUID{}}
}

func (m *MockActionStore) CreateTask(_ context.Context, arg repository.CreateTaskParams) (domain.Task, error) {
	m.Tasks = append(m.Tasks, arg)
	if m.CreateTaskFunc != nil {
		return m.CreateTaskFunc(arg)
	}
	return domain.Task{ID: uuid.New(), Title: arg.Title}, nil
}

func (m *MockActionStore) UpdateClientStatus(_ context.Context, _, clientID uuid.UUID, status string) (int64, error) {
	m.StatusUpdates[clientID] = status
	return 1, nil
}

func (m *MockActionStore) UpdateClientManager(_ context.Context, _, clientID, managerID uuid.UUID) (int64, error) {
	m.ManagerUpdates[clientID] = managerID
	return 1, nil
}

type sentMessage struct {
	Phone string
	Text  string
}

type MockMessageSender struct {
	Sent []sentMessage
	Err  error
}

func (m *MockMessageSender) SendMessage(_ context.Context, phone, text string) error {
	m.Sent = append(m.Sent, sentMessage{Phone: phone, Text: text})
	return m.Err
}

type postedWebhook struct {
	URL     string
	Headers map[string]string
	Body    any
}

type MockWebhookPoster struct {
	Posts []postedWebhook
	Err   error
}

func (m *MockWebhookPoster) Post(_ context.Context, url string, headers map[string]string, body any) error {
	m.Posts = append(m.Posts, postedWebhook{URL: url, Headers: headers, Body: body})
	return m.Err
}

type sentNotification struct {
	UserID  uuid.UUID
	Title   string
	Message string
	Type    string
}

type MockNotifier struct {
	Sent []sentNotification
}

func (m *MockNotifier) Notify(_ context.Context, userID uuid.UUID, title, message, notifType string) {
	m.Sent = append(m.Sent, sentNotification{UserID: userID, Title: title, Message: message, Type: notifType})
}

// MockBonusCalculator returns Amount or Err.
type MockBonusCalculator struct {
	Amount    decimal.Decimal
	Err       error
	LastInput BonusInput
	CallCount int
}

func (m *MockBonusCalculator) Calculate(_ context.Context, in BonusInput) (decimal.Decimal, []domain.PayrollDetail, error) {
	m.CallCount++
	m.LastInput = in
	if m.Err != nil {
		return decimal.Zero, nil, m.Err
	}
	return m.Amount, nil, nil
}

type MockContentCalculator struct {
	Result ContentResult
	Err    error
}

func (m *MockContentCalculator) Calculate(_ context.Context, _ ContentInput) (ContentResult, error) {
	return m.Result, m.Err
}
