package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OlegSmmDrug/agencycore.asia-sub007/internal/config"
	"github.com/OlegSmmDrug/agencycore.asia-sub007/internal/domain"
)

type MockContentStore struct {
	Publications []domain.ContentPublication
	Metrics      []domain.ProjectContentMetrics
	Err          error
}

func (m *MockContentStore) ListPublicationsByUser(_ context.Context, userID uuid.UUID, from, to time.Time) ([]domain.ContentPublication, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	var out []domain.ContentPublication
	for _, p := range m.Publications {
		if p.AssignedUserID == userID && !p.PublishedAt.Before(from) && p.PublishedAt.Before(to) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *MockContentStore) ListProjectContentMetrics(_ context.Context, projectIDs []uuid.UUID, month domain.Month) ([]domain.ProjectContentMetrics, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	var out []domain.ProjectContentMetrics
	for _, cm := range m.Metrics {
		if cm.Month != month {
			continue
		}
		for _, id := range projectIDs {
			if cm.ProjectID == id {
				out = append(out, cm)
			}
		}
	}
	return out, nil
}

type MockContentSyncer struct {
	Err   error
	Calls int
}

func (m *MockContentSyncer) Sync(context.Context, uuid.UUID, domain.Month) error {
	m.Calls++
	return m.Err
}

func TestNormalizeContentType(t *testing.T) {
	tests := map[string]string{
		"posts":          "Post",
		"Post":           "Post",
		"reels_count":    "Reels Production",
		"Stories ":       "Stories",
		"stories":        "Stories",
		"video_count":    "Video",
		"carousel_posts": "Carousel",
		"Shooting":       "Shooting",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeContentType(in), in)
	}
}

func contentScheme() *domain.SalaryScheme {
	return &domain.SalaryScheme{KPIRules: []domain.KPIRule{
		{TaskType: "Post", Rate: decimal.NewFromInt(10)},
		{TaskType: "Stories", Rate: decimal.NewFromInt(5)},
		{TaskType: "Reels Production", Rate: decimal.NewFromInt(30)},
	}}
}

func TestContentPayroll_ByPublication(t *testing.T) {
	user := &domain.User{ID: uuid.New(), OrganizationID: uuid.New(), JobTitle: "SMM"}
	project := uuid.New()
	march := time.Date(2024, time.March, 15, 10, 0, 0, 0, time.UTC)
	pub := func(userID uuid.UUID, contentType string, at time.Time) domain.ContentPublication {
		return domain.ContentPublication{ID: uuid.New(), ProjectID: project, AssignedUserID: userID, ContentType: contentType, PublishedAt: at}
	}

	store := &MockContentStore{Publications: []domain.ContentPublication{
		pub(user.ID, "post", march),
		pub(user.ID, "post", march),
		pub(user.ID, "Post", march),
		pub(user.ID, "stories", march),
		pub(user.ID, "stories", march),
		pub(user.ID, "podcast", march),
		pub(user.ID, "post", time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC)),
		pub(uuid.New(), "post", march),
	}}
	syncer := &MockContentSyncer{Err: ErrMockStore}
	calc := NewContentPayroll(store, syncer, config.ContentPolicyPublication)

	res, err := calc.Calculate(context.Background(), ContentInput{
		User:   user,
		Scheme: contentScheme(),
		Month:  domain.Month{Year: 2024, Month: time.March},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, syncer.Calls)
	assert.True(t, res.Total.Equal(decimal.NewFromInt(40)), res.Total.String())
	assert.Equal(t, 6, res.Published)
	require.Len(t, res.Details, 2)
	assert.Equal(t, "Post", res.Details[0].Label)
	assert.Equal(t, "Stories", res.Details[1].Label)
}

func TestContentPayroll_TeamShare(t *testing.T) {
	orgID := uuid.New()
	smm := domain.User{ID: uuid.New(), OrganizationID: orgID, JobTitle: "SMM-специалист"}
	smm2 := domain.User{ID: uuid.New(), OrganizationID: orgID, JobTitle: "Контент-мейкер"}
	designer := domain.User{ID: uuid.New(), OrganizationID: orgID, JobTitle: "Designer"}
	month := domain.Month{Year: 2024, Month: time.March}

	planned := domain.Project{ID: uuid.New(), TeamIDs: []uuid.UUID{smm.ID, smm2.ID, designer.ID}}
	unplanned := domain.Project{ID: uuid.New(), TeamIDs: []uuid.UUID{smm.ID}}
	foreign := domain.Project{ID: uuid.New(), TeamIDs: []uuid.UUID{smm2.ID}}

	store := &MockContentStore{Metrics: []domain.ProjectContentMetrics{
		{ProjectID: planned.ID, Month: month, Plan: map[string]int{"posts": 10}, Fact: map[string]int{"posts": 9, "reels_count": 3, "stories": 0}},
		{ProjectID: unplanned.ID, Month: month, Plan: map[string]int{}, Fact: map[string]int{"posts": 20}},
		{ProjectID: foreign.ID, Month: month, Plan: map[string]int{"posts": 1}, Fact: map[string]int{"posts": 50}},
	}}
	calc := NewContentPayroll(store, nil, config.ContentPolicyTeamShare)
	dir := NewUserDirectory([]domain.User{smm, smm2, designer})
	projects := []domain.Project{planned, unplanned, foreign}

	res, err := calc.Calculate(context.Background(), ContentInput{
		User: &smm, Projects: projects, Scheme: contentScheme(), Month: month, Directory: dir,
	})
	require.NoError(t, err)
	assert.True(t, res.Total.Equal(decimal.NewFromInt(90)), res.Total.String())
	require.Len(t, res.Details, 2)
	assert.True(t, res.Details[0].Quantity.Equal(decimal.NewFromFloat(4.5)), res.Details[0].Quantity.String())

	res, err = calc.Calculate(context.Background(), ContentInput{
		User: &designer, Projects: projects, Scheme: contentScheme(), Month: month, Directory: dir,
	})
	require.NoError(t, err)
	assert.True(t, res.Total.IsZero())
}

func TestContentPayroll_StoreError(t *testing.T) {
	calc := NewContentPayroll(&MockContentStore{Err: ErrMockStore}, nil, config.ContentPolicyPublication)

	_, err := calc.Calculate(context.Background(), ContentInput{
		User:   &domain.User{ID: uuid.New()},
		Scheme: contentScheme(),
		Month:  domain.Month{Year: 2024, Month: time.March},
	})
	require.ErrorIs(t, err, ErrMockStore)
}
