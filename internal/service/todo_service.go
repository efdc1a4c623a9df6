package service

import (
	"context"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/birlikkoshan/todo-api/internal/cache"
	dom "github.com/birlikkoshan/todo-api/internal/domain"
	"github.com/birlikkoshan/todo-api/internal/repo"

	"golang.org/x/sync/singleflight"
)

const maxTitleLen = 255

type TodoService struct {
	repo  repo.TodoRepo
	cache *cache.TodoCache
	sf    singleflight.Group
	now   func() time.Time
}

// NewTodoService creates a TodoService. If c is nil, caching is disabled.
func NewTodoService(r repo.TodoRepo, c *cache.TodoCache) *TodoService {
	return &TodoService{repo: r, cache: c, now: time.Now}
}

func (s *TodoService) Create(ctx context.Context, userID int64, in dom.NewTodo) (dom.Todo, error) {
	title, err := normalizeTitle(in.Title)
	if err != nil {
		return dom.Todo{}, err
	}
	status := in.Status
	if status == "" {
		status = dom.StatusPending
	}
	if !status.Valid() {
		return dom.Todo{}, invalid("status must be pending or completed")
	}

	now := s.stamp(time.Time{})
	t, err := s.repo.Create(ctx, dom.Todo{
		UserID:      userID,
		Title:       title,
		Description: normalizeDescription(in.Description),
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return dom.Todo{}, storeErr(err)
	}
	s.invalidateCache(ctx, userID)
	return t, nil
}

func (s *TodoService) List(ctx context.Context, userID int64, f dom.ListFilter) ([]dom.Todo, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, invalid("status must be pending or completed")
	}
	load := func(ctx context.Context) ([]dom.Todo, error) {
		list, err := s.repo.List(ctx, userID, f)
		if err != nil {
			return nil, storeErr(err)
		}
		return list, nil
	}
	if s.cache == nil {
		return load(ctx)
	}

	key := "list:" + strconv.FormatInt(userID, 10) + ":" + string(f.Status)
	v, err, _ := s.sf.Do(key, func() (interface{}, error) {
		// Detached: the result is shared by every waiter.
		ctx := context.WithoutCancel(ctx)
		if list, err := s.cache.GetList(ctx, userID, f); err == nil && list != nil {
			return list, nil
		}
		ver, verErr := s.cache.Version(ctx, userID)
		list, err := load(ctx)
		if err != nil {
			return nil, err
		}
		if verErr == nil {
			_ = s.cache.SetList(ctx, userID, f, list, ver)
		}
		return list, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]dom.Todo), nil
}

func (s *TodoService) Get(ctx context.Context, userID, id int64) (dom.Todo, error) {
	t, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return dom.Todo{}, storeErr(err)
	}
	return t, nil
}

// Update applies the supplied fields only. An empty patch still refreshes updated_at.
func (s *TodoService) Update(ctx context.Context, userID, id int64, p dom.TodoPatch) (dom.Todo, error) {
	if p.Title != nil {
		title, err := normalizeTitle(*p.Title)
		if err != nil {
			return dom.Todo{}, err
		}
		p.Title = &title
	}
	if p.Description != nil {
		p.Description = normalizeDescription(p.Description)
		p.ClearDescription = p.ClearDescription || p.Description == nil
	}
	if p.Status != nil && !p.Status.Valid() {
		return dom.Todo{}, invalid("status must be pending or completed")
	}

	existing, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return dom.Todo{}, storeErr(err)
	}
	next := p.Apply(existing)
	next.UpdatedAt = s.stamp(existing.UpdatedAt)

	t, err := s.repo.Update(ctx, next)
	if err != nil {
		return dom.Todo{}, storeErr(err)
	}
	s.invalidateCache(ctx, userID)
	return t, nil
}

// Complete marks the todo as completed.
func (s *TodoService) Complete(ctx context.Context, userID, id int64) (dom.Todo, error) {
	done := dom.StatusCompleted
	return s.Update(ctx, userID, id, dom.TodoPatch{Status: &done})
}

func (s *TodoService) Delete(ctx context.Context, userID, id int64) error {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return storeErr(err)
	}
	s.invalidateCache(ctx, userID)
	return nil
}

// stamp returns the current time at Postgres precision, strictly after prev.
func (s *TodoService) stamp(prev time.Time) time.Time {
	now := s.now().UTC().Truncate(time.Microsecond)
	if !now.After(prev) {
		now = prev.UTC().Truncate(time.Microsecond).Add(time.Microsecond)
	}
	return now
}

func (s *TodoService) invalidateCache(ctx context.Context, userID int64) {
	if s.cache != nil {
		_ = s.cache.InvalidateUser(ctx, userID)
	}
}

// normalizeDescription treats a blank description as absent.
func normalizeDescription(d *string) *string {
	if d == nil || strings.TrimSpace(*d) == "" {
		return nil
	}
	v := *d
	return &v
}

func normalizeTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", invalid("title is required")
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return "", invalid("title must be at most 255 characters")
	}
	return title, nil
}
