package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/OlegSmmDrug/agencycore.asia-sub007/internal/config"
	"github.com/OlegSmmDrug/agencycore.asia-sub007/internal/domain"
)

// contentLabels maps substrings of free-text metric keys to KPI rule labels.
// The first match wins.
var contentLabels = []struct {
	needle string
	label  string
}{
	{"stor", "Stories"},
	{"reel", "Reels Production"},
	{"carousel", "Carousel"},
	{"video", "Video"},
	{"post", "Post"},
	{"design", "Design"},
}

// NormalizeContentType maps a metric key such as "reels_count" to its KPI label.
// Unknown keys are returned unchanged.
func NormalizeContentType(key string) string {
	k := strings.ToLower(key)
	for _, c := range contentLabels {
		if strings.Contains(k, c.needle) {
			return c.label
		}
	}
	return key
}

type ContentStore interface {
	ListPublicationsByUser(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]domain.ContentPublication, error)
	ListProjectContentMetrics(ctx context.Context, projectIDs []uuid.UUID, month domain.Month) ([]domain.ProjectContentMetrics, error)
}

// ContentSyncer refreshes publication facts from the external content source.
type ContentSyncer interface {
	Sync(ctx context.Context, orgID uuid.UUID, month domain.Month) error
}

type ContentInput struct {
	User      *domain.User
	Projects  []domain.Project
	Scheme    *domain.SalaryScheme
	Month     domain.Month
	Directory *UserDirectory
}

type ContentResult struct {
	Total     decimal.Decimal
	Details   []domain.PayrollDetail
	Published int
}

// ContentPayroll pays content work either per attributed publication or as an even
// share of each project's delivered content among its SMM members.
type ContentPayroll struct {
	store  ContentStore
	syncer ContentSyncer
	policy string
}

// NewContentPayroll builds the calculator; syncer may be nil.
func NewContentPayroll(store ContentStore, syncer ContentSyncer, policy string) *ContentPayroll {
	return &ContentPayroll{store: store, syncer: syncer, policy: policy}
}

func (c *ContentPayroll) Calculate(ctx context.Context, in ContentInput) (ContentResult, error) {
	if c.syncer != nil {
		if err := c.syncer.Sync(ctx, in.User.OrganizationID, in.Month); err != nil {
			slog.Warn("content sync failed, using stored publications", "error", err, "organization_id", in.User.OrganizationID)
		}
	}

	if c.policy == config.ContentPolicyTeamShare {
		return c.teamShare(ctx, in)
	}
	return c.byPublication(ctx, in)
}

type contentKey struct {
	project uuid.UUID
	label   string
}

func (c *ContentPayroll) byPublication(ctx context.Context, in ContentInput) (ContentResult, error) {
	res := ContentResult{Total: decimal.Zero}

	pubs, err := c.store.ListPublicationsByUser(ctx, in.User.ID, in.Month.Start().AddDate(0, 0, -1), in.Month.End().AddDate(0, 0, 1))
	if err != nil {
		return res, fmt.Errorf("list publications: %w", err)
	}

	counts := make(map[contentKey]int)
	for _, p := range pubs {
		if p.AssignedUserID != in.User.ID || !in.Month.Contains(p.PublishedAt) {
			continue
		}
		res.Published++
		counts[contentKey{project: p.ProjectID, label: NormalizeContentType(p.ContentType)}]++
	}

	if in.Scheme == nil {
		return res, nil
	}

	for _, key := range sortedContentKeys(counts) {
		rule, ok := in.Scheme.RuleFor(key.label)
		if !ok {
			continue
		}
		qty := decimal.NewFromInt(int64(counts[key]))
		amount := qty.Mul(rule.Rate).Round(2)
		res.Total = res.Total.Add(amount)
		projectID := key.project
		res.Details = append(res.Details, domain.PayrollDetail{
			Kind:      domain.DetailContent,
			Label:     key.label,
			ProjectID: &projectID,
			Quantity:  qty,
			Rate:      rule.Rate,
			Amount:    amount,
		})
	}
	return res, nil
}

func (c *ContentPayroll) teamShare(ctx context.Context, in ContentInput) (ContentResult, error) {
	res := ContentResult{Total: decimal.Zero}
	if in.Scheme == nil || !in.User.IsSMM() {
		return res, nil
	}

	var projects []domain.Project
	for _, p := range in.Projects {
		if p.HasMember(in.User.ID) {
			projects = append(projects, p)
		}
	}
	if len(projects) == 0 {
		return res, nil
	}

	ids := make([]uuid.UUID, len(projects))
	for i, p := range projects {
		ids[i] = p.ID
	}
	metrics, err := c.store.ListProjectContentMetrics(ctx, ids, in.Month)
	if err != nil {
		return res, fmt.Errorf("list content metrics: %w", err)
	}
	byProject := make(map[uuid.UUID]domain.ProjectContentMetrics, len(metrics))
	for _, m := range metrics {
		byProject[m.ProjectID] = m
	}

	for _, p := range projects {
		m, ok := byProject[p.ID]
		if !ok || !m.HasPlan() {
			continue
		}

		smmCount := in.Directory.CountSMM(p.TeamIDs)
		if smmCount == 0 {
			continue
		}
		share := decimal.NewFromInt(1).Div(decimal.NewFromInt(int64(smmCount)))

		keys := make([]string, 0, len(m.Fact))
		for k := range m.Fact {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		projectID := p.ID
		for _, k := range keys {
			fact := m.Fact[k]
			if fact <= 0 {
				continue
			}
			label := NormalizeContentType(k)
			rule, ok := in.Scheme.RuleFor(label)
			if !ok {
				continue
			}
			qty := decimal.NewFromInt(int64(fact)).Mul(share)
			amount := qty.Mul(rule.Rate).Round(2)
			res.Published += fact
			res.Total = res.Total.Add(amount)
			res.Details = append(res.Details, domain.PayrollDetail{
				Kind:      domain.DetailContent,
				Label:     label,
				ProjectID: &projectID,
				Quantity:  qty.Round(4),
				Rate:      rule.Rate,
				Amount:    amount,
			})
		}
	}
	return res, nil
}

func sortedContentKeys(counts map[contentKey]int) []contentKey {
	keys := make([]contentKey, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].project != keys[j].project {
			return keys[i].project.String() < keys[j].project.String()
		}
		return keys[i].label < keys[j].label
	})
	return keys
}
