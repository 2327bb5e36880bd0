package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/classfund/classfund/internal/model"
	"github.com/classfund/classfund/internal/repository"
)

type fakeFundingStore struct {
	mu       sync.Mutex
	projects map[string]*model.ProjectFunding
	reads    int
}

func newFakeFundingStore(projects ...*model.ProjectFunding) *fakeFundingStore {
	store := &fakeFundingStore{projects: make(map[string]*model.ProjectFunding)}
	for _, project := range projects {
		store.projects[project.ProjectID] = project
	}
	return store
}

func (f *fakeFundingStore) GetProjectFunding(_ context.Context, projectID string) (*model.ProjectFunding, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	project, ok := f.projects[projectID]
	if !ok {
		return nil, repository.ErrProjectNotFound
	}
	copied := *project
	return &copied, nil
}

func (f *fakeFundingStore) ListProjectFunding(_ context.Context, limit int) ([]*model.ProjectFunding, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fundings := make([]*model.ProjectFunding, 0, len(f.projects))
	for _, project := range f.projects {
		if limit > 0 && len(fundings) == limit {
			break
		}
		copied := *project
		fundings = append(fundings, &copied)
	}
	return fundings, nil
}

type fakeFundingCache struct {
	mu      sync.Mutex
	entries map[string]*model.ProjectFunding
	sets    int
}

func newFakeFundingCache() *fakeFundingCache {
	return &fakeFundingCache{entries: make(map[string]*model.ProjectFunding)}
}

func (f *fakeFundingCache) GetFunding(_ context.Context, projectID string) (*model.ProjectFunding, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	funding, ok := f.entries[projectID]
	if !ok {
		return nil, errors.New("cache miss")
	}
	copied := *funding
	return &copied, nil
}

func (f *fakeFundingCache) SetFunding(_ context.Context, projectID string, funding *model.ProjectFunding) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *funding
	f.entries[projectID] = &copied
	f.sets++
	return nil
}

func sampleProject() *model.ProjectFunding {
	return &model.ProjectFunding{
		ProjectID:        "p1",
		Title:            "Books for Room 12",
		Subject:          "Literacy",
		ShortDescription: "A classroom library",
		TeacherName:      "Ms. Rivera",
		SchoolID:         "s1",
		SchoolName:       "Jefferson Elementary",
		NumStudents:      24,
		PercentFunded:    0.40,
		TotalPrice:       "350.00",
		ExpirationDate:   time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
	}
}

func TestProjectFunding_NotFound(t *testing.T) {
	svc := NewFundingService(newFakeFundingStore(), nil, nil)

	for _, id := range []string{"", "missing"} {
		if _, err := svc.ProjectFunding(context.Background(), id); !errors.Is(err, ErrProjectNotFound) {
			t.Fatalf("id %q: expected ErrProjectNotFound, got %v", id, err)
		}
	}
}

func TestProjectFunding_EscapesEveryTextField(t *testing.T) {
	project := sampleProject()
	project.Title = `<script>alert("x")</script>`
	project.TeacherName = "Tom & 'Jerry'"
	project.SchoolName = `"Lincoln" <Middle>`

	svc := NewFundingService(newFakeFundingStore(project), nil, nil)

	funding, err := svc.ProjectFunding(context.Background(), "p1")
	if err != nil {
		t.Fatalf("project funding: %v", err)
	}

	if funding.Title != "&lt;script&gt;alert(&#34;x&#34;)&lt;/script&gt;" {
		t.Fatalf("title not escaped: %q", funding.Title)
	}
	if funding.TeacherName != "Tom &amp; &#39;Jerry&#39;" {
		t.Fatalf("teacher name not escaped: %q", funding.TeacherName)
	}
	if funding.SchoolName != "&#34;Lincoln&#34; &lt;Middle&gt;" {
		t.Fatalf("school name not escaped: %q", funding.SchoolName)
	}
}

func TestProjectFunding_CacheMissThenHit(t *testing.T) {
	project := sampleProject()
	project.Title = "Art & Science"
	store := newFakeFundingStore(project)
	cache := newFakeFundingCache()
	svc := NewFundingService(store, cache, nil)

	first, err := svc.ProjectFunding(context.Background(), "p1")
	if err != nil {
		t.Fatalf("first read: %v", err)
	}
	if store.reads != 1 {
		t.Fatalf("expected one store read, got %d", store.reads)
	}
	if cache.sets != 1 {
		t.Fatalf("expected the miss to populate the cache, got %d sets", cache.sets)
	}

	second, err := svc.ProjectFunding(context.Background(), "p1")
	if err != nil {
		t.Fatalf("second read: %v", err)
	}
	if store.reads != 1 {
		t.Fatalf("cache hit must not reach the store, got %d reads", store.reads)
	}

	// The cached copy was escaped before it went in; serving it again
	// must not escape a second time.
	want := "Art &amp; Science"
	if first.Title != want {
		t.Fatalf("first read: expected %q, got %q", want, first.Title)
	}
	if second.Title != want {
		t.Fatalf("cached read double-escaped: %q", second.Title)
	}
}

func TestProjectFunding_LowFundingFlag(t *testing.T) {
	low := sampleProject()
	low.ProjectID = "low"
	low.PercentFunded = 0.10
	boundary := sampleProject()
	boundary.ProjectID = "boundary"
	boundary.PercentFunded = 0.15

	svc := NewFundingService(newFakeFundingStore(low, boundary), nil, nil)

	funding, err := svc.ProjectFunding(context.Background(), "low")
	if err != nil {
		t.Fatalf("low: %v", err)
	}
	if !funding.IsLowFunded() {
		t.Fatal("0.10 funded must carry the low-funding flag")
	}

	funding, err = svc.ProjectFunding(context.Background(), "boundary")
	if err != nil {
		t.Fatalf("boundary: %v", err)
	}
	if funding.IsLowFunded() {
		t.Fatal("exactly 0.15 funded is not low")
	}
}

func TestListProjects(t *testing.T) {
	first := sampleProject()
	second := sampleProject()
	second.ProjectID = "p2"
	second.Title = "Maps & Globes"

	svc := NewFundingService(newFakeFundingStore(first, second), nil, nil)

	fundings, err := svc.ListProjects(context.Background(), 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(fundings) != 2 {
		t.Fatalf("expected 2 projects, got %d", len(fundings))
	}
	for _, funding := range fundings {
		if funding.ProjectID == "p2" && funding.Title != "Maps &amp; Globes" {
			t.Fatalf("listing not escaped: %q", funding.Title)
		}
	}
}
