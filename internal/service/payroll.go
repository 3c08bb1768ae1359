package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/OlegSmmDrug/agencycore.asia-sub007/internal/domain"
	"github.com/OlegSmmDrug/agencycore.asia-sub007/internal/repository"
)

type PayrollStore interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (domain.User, error)
	ListUsersByOrganization(ctx context.Context, orgID uuid.UUID) ([]domain.User, error)
	ListSalarySchemes(ctx context.Context, orgID uuid.UUID) ([]domain.SalaryScheme, error)
	CreateSalaryScheme(ctx context.Context, s domain.SalaryScheme) (domain.SalaryScheme, error)
	ListCompletedTasksByAssignee(ctx context.Context, assigneeID uuid.UUID, from, to time.Time) ([]domain.Task, error)
	ListProjectsByMember(ctx context.Context, userID uuid.UUID) ([]domain.Project, error)
	GetPayrollRecord(ctx context.Context, userID uuid.UUID, month domain.Month) (domain.PayrollRecord, error)
	UpsertPayrollRecord(ctx context.Context, r domain.PayrollRecord) (domain.PayrollRecord, error)
	AdjustPayrollRecord(ctx context.Context, arg repository.AdjustPayrollParams) (domain.PayrollRecord, error)
}

type BonusCalculator interface {
	Calculate(ctx context.Context, in BonusInput) (decimal.Decimal, []domain.PayrollDetail, error)
}

type ContentCalculator interface {
	Calculate(ctx context.Context, in ContentInput) (ContentResult, error)
}

// PayrollInput carries everything one user's monthly calculation reads.
type PayrollInput struct {
	User      domain.User
	Tasks     []domain.Task
	Projects  []domain.Project
	Schemes   []domain.SalaryScheme
	Month     domain.Month
	Directory *UserDirectory
}

type PayrollService struct {
	store   PayrollStore
	content ContentCalculator
	bonuses BonusCalculator
}

func NewPayrollService(store PayrollStore, content ContentCalculator, bonuses BonusCalculator) *PayrollService {
	return &PayrollService{store: store, content: content, bonuses: bonuses}
}

// Calculate computes base + KPI + bonuses. Content and bonus failures count as zero.
func (s *PayrollService) Calculate(ctx context.Context, in PayrollInput) *domain.PayrollResult {
	user := &in.User
	scheme := ResolveScheme(user, in.Schemes)
	base := BaseSalary(user, scheme)

	taskKPI := CalculateTaskKPI(user, scheme, in.Tasks, in.Month)
	kpi := taskKPI.Total
	details := append([]domain.PayrollDetail{}, taskKPI.Details...)

	published := 0
	if s.content != nil {
		content, err := s.content.Calculate(ctx, ContentInput{
			User:      user,
			Projects:  in.Projects,
			Scheme:    scheme,
			Month:     in.Month,
			Directory: in.Directory,
		})
		if err != nil {
			slog.Error("content payroll failed", "error", err, "user_id", user.ID, "month", in.Month.String())
		} else {
			kpi = kpi.Add(content.Total)
			details = append(details, content.Details...)
			published = content.Published
		}
	}

	bonuses := decimal.Zero
	if s.bonuses != nil {
		amount, bonusDetails, err := s.bonuses.Calculate(ctx, BonusInput{
			User:       user,
			Month:      in.Month,
			BaseSalary: base,
			KPIEarned:  kpi,
			Metrics: map[string]any{
				domain.MetricCompletedTasks:   taskKPI.CompletedTasks,
				domain.MetricKPIEarned:        kpi,
				domain.MetricContentPublished: published,
				domain.MetricBaseSalary:       base,
				domain.MetricTaskHours:        taskKPI.Hours,
			},
		})
		if err != nil {
			slog.Error("bonus calculation failed", "error", err, "user_id", user.ID, "month", in.Month.String())
		} else {
			bonuses = amount
			details = append(details, bonusDetails...)
		}
	}

	return &domain.PayrollResult{
		UserID:        user.ID,
		Month:         in.Month.String(),
		BaseSalary:    base,
		KPIEarned:     kpi,
		BonusesEarned: bonuses,
		Details:       details,
		TotalEarnings: base.Add(kpi).Add(bonuses),
	}
}

// CalculateForUser loads the user's month inputs and runs Calculate.
func (s *PayrollService) CalculateForUser(ctx context.Context, orgID, userID uuid.UUID, month domain.Month) (*domain.PayrollResult, error) {
	in, err := s.loadInput(ctx, orgID, userID, month)
	if err != nil {
		return nil, err
	}
	return s.Calculate(ctx, *in), nil
}

func (s *PayrollService) loadInput(ctx context.Context, orgID, userID uuid.UUID, month domain.Month) (*PayrollInput, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user.OrganizationID != orgID {
		return nil, domain.ErrUserNotFound
	}

	schemes, err := s.store.ListSalarySchemes(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("list salary schemes: %w", err)
	}
	tasks, err := s.store.ListCompletedTasksByAssignee(ctx, userID, month.Start(), month.End())
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	projects, err := s.store.ListProjectsByMember(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	members, err := s.store.ListUsersByOrganization(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}

	return &PayrollInput{
		User:      user,
		Tasks:     tasks,
		Projects:  projects,
		Schemes:   schemes,
		Month:     month,
		Directory: NewUserDirectory(members),
	}, nil
}

// Snapshot recalculates the month and upserts the user's payroll record.
// Manual adjustments already on the record are kept.
func (s *PayrollService) Snapshot(ctx context.Context, orgID, userID uuid.UUID, month domain.Month) (*domain.PayrollRecord, error) {
	res, err := s.CalculateForUser(ctx, orgID, userID, month)
	if err != nil {
		return nil, err
	}

	rec, err := s.store.UpsertPayrollRecord(ctx, domain.PayrollRecord{
		OrganizationID:  orgID,
		UserID:          userID,
		Month:           month,
		FixedSalary:     res.BaseSalary,
		CalculatedKPI:   res.KPIEarned,
		CalculatedBonus: res.BonusesEarned,
		TaskPayments:    res.Details,
	})
	if err != nil {
		return nil, fmt.Errorf("upsert payroll record: %w", err)
	}
	return &rec, nil
}

// Record returns the stored payroll record of the user for month.
func (s *PayrollService) Record(ctx context.Context, orgID, userID uuid.UUID, month domain.Month) (*domain.PayrollRecord, error) {
	rec, err := s.store.GetPayrollRecord(ctx, userID, month)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}
		return nil, fmt.Errorf("get payroll record: %w", err)
	}
	if rec.OrganizationID != orgID {
		return nil, domain.ErrRecordNotFound
	}
	return &rec, nil
}

type PayrollAdjustment struct {
	ManualBonus   decimal.Decimal
	ManualPenalty decimal.Decimal
	Advance       decimal.Decimal
}

func (s *PayrollService) Adjust(ctx context.Context, orgID, userID uuid.UUID, month domain.Month, adj PayrollAdjustment) (*domain.PayrollRecord, error) {
	if adj.ManualBonus.IsNegative() || adj.ManualPenalty.IsNegative() || adj.Advance.IsNegative() {
		return nil, domain.ErrInvalidAmount
	}
	rec, err := s.store.AdjustPayrollRecord(ctx, repository.AdjustPayrollParams{
		OrganizationID: orgID,
		UserID:         userID,
		Month:          month,
		ManualBonus:    adj.ManualBonus,
		ManualPenalty:  adj.ManualPenalty,
		Advance:        adj.Advance,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}
		return nil, fmt.Errorf("adjust payroll record: %w", err)
	}
	return &rec, nil
}

// CreateScheme stores a salary scheme aimed at exactly one job title or user.
func (s *PayrollService) CreateScheme(ctx context.Context, scheme domain.SalaryScheme) (domain.SalaryScheme, error) {
	if !scheme.ValidTarget() {
		return domain.SalaryScheme{}, domain.ErrSchemeTargetInvalid
	}
	if scheme.BaseSalary.IsNegative() {
		return domain.SalaryScheme{}, domain.ErrInvalidAmount
	}
	for i, r := range scheme.KPIRules {
		if strings.TrimSpace(r.TaskType) == "" || r.Rate.IsNegative() {
			return domain.SalaryScheme{}, fmt.Errorf("%w: kpi rule %d", domain.ErrInvalidAmount, i)
		}
		if r.Unit == "" {
			scheme.KPIRules[i].Unit = domain.KPIUnitTask
		}
	}
	if scheme.JobTitle != nil {
		title := strings.TrimSpace(*scheme.JobTitle)
		scheme.JobTitle = &title
	}

	created, err := s.store.CreateSalaryScheme(ctx, scheme)
	if err != nil {
		return domain.SalaryScheme{}, fmt.Errorf("create salary scheme: %w", err)
	}
	return created, nil
}
