package engine

import (
	"context"
	"sort"
	"sync"

	"kloza/internal/domain"
	"kloza/internal/repo"
)

// memRepo is an in-memory repo.Repo that enforces the active kollab
// uniqueness the way the real stores do and counts every call.
type memRepo struct {
	mu          sync.Mutex
	ideas       map[string]domain.Idea
	kollabs     map[string]domain.Kollab
	discussions map[string]domain.Discussion
	calls       int

	// skipPrecheck hides active kollabs from FindActiveKollab so the
	// uniqueness constraint is the only guard.
	skipPrecheck bool
	failWith     error
}

var _ repo.Repo = (*memRepo)(nil)

func newMemRepo() *memRepo {
	return &memRepo{
		ideas:       map[string]domain.Idea{},
		kollabs:     map[string]domain.Kollab{},
		discussions: map[string]domain.Discussion{},
	}
}

func (m *memRepo) enter() error {
	m.mu.Lock()
	m.calls++
	return m.failWith
}

func (m *memRepo) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *memRepo) InsertIdea(_ context.Context, i domain.Idea) (domain.Idea, error) {
	if err := m.enter(); err != nil {
		m.mu.Unlock()
		return domain.Idea{}, err
	}
	defer m.mu.Unlock()
	i.ID = repo.NewID()
	m.ideas[i.ID] = i
	return i, nil
}

func (m *memRepo) GetIdea(_ context.Context, id string) (domain.Idea, error) {
	if err := m.enter(); err != nil {
		m.mu.Unlock()
		return domain.Idea{}, err
	}
	defer m.mu.Unlock()
	i, ok := m.ideas[id]
	if !ok {
		return domain.Idea{}, repo.ErrNotFound
	}
	return i, nil
}

func (m *memRepo) ListIdeas(_ context.Context, skip, limit int) ([]domain.Idea, error) {
	if err := m.enter(); err != nil {
		m.mu.Unlock()
		return nil, err
	}
	defer m.mu.Unlock()
	all := make([]domain.Idea, 0, len(m.ideas))
	for _, i := range m.ideas {
		all = append(all, i)
	}
	sort.Slice(all, func(a, b int) bool {
		if !all[a].CreatedAt.Equal(all[b].CreatedAt) {
			return all[a].CreatedAt.After(all[b].CreatedAt)
		}
		return all[a].ID > all[b].ID
	})
	if skip >= len(all) {
		return []domain.Idea{}, nil
	}
	end := skip + limit
	if end > len(all) {
		end = len(all)
	}
	return all[skip:end], nil
}

func (m *memRepo) CountIdeas(context.Context) (int64, error) {
	if err := m.enter(); err != nil {
		m.mu.Unlock()
		return 0, err
	}
	defer m.mu.Unlock()
	return int64(len(m.ideas)), nil
}

func (m *memRepo) InsertKollab(_ context.Context, k domain.Kollab) (domain.Kollab, error) {
	if err := m.enter(); err != nil {
		m.mu.Unlock()
		return domain.Kollab{}, err
	}
	defer m.mu.Unlock()
	if k.Status == domain.KollabActive {
		for _, existing := range m.kollabs {
			if existing.IdeaID == k.IdeaID && existing.Status == domain.KollabActive {
				return domain.Kollab{}, repo.ErrDuplicate
			}
		}
	}
	k.ID = repo.NewID()
	m.kollabs[k.ID] = k
	return k, nil
}

func (m *memRepo) GetKollab(_ context.Context, id string) (domain.Kollab, error) {
	if err := m.enter(); err != nil {
		m.mu.Unlock()
		return domain.Kollab{}, err
	}
	defer m.mu.Unlock()
	k, ok := m.kollabs[id]
	if !ok {
		return domain.Kollab{}, repo.ErrNotFound
	}
	return k, nil
}

func (m *memRepo) FindActiveKollab(_ context.Context, ideaID string) (domain.Kollab, error) {
	if err := m.enter(); err != nil {
		m.mu.Unlock()
		return domain.Kollab{}, err
	}
	defer m.mu.Unlock()
	if !m.skipPrecheck {
		for _, k := range m.kollabs {
			if k.IdeaID == ideaID && k.Status == domain.KollabActive {
				return k, nil
			}
		}
	}
	return domain.Kollab{}, repo.ErrNotFound
}

func (m *memRepo) InsertDiscussion(_ context.Context, d domain.Discussion) (domain.Discussion, error) {
	if err := m.enter(); err != nil {
		m.mu.Unlock()
		return domain.Discussion{}, err
	}
	defer m.mu.Unlock()
	d.ID = repo.NewID()
	m.discussions[d.ID] = d
	return d, nil
}

func (m *memRepo) Ping(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.failWith
}

func (m *memRepo) Close(context.Context) error { return nil }

func (m *memRepo) activeKollabs(ideaID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, k := range m.kollabs {
		if k.IdeaID == ideaID && k.Status == domain.KollabActive {
			n++
		}
	}
	return n
}

func (m *memRepo) seedIdea(status domain.IdeaStatus) domain.Idea {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := domain.Idea{ID: repo.NewID(), Title: "t", Description: "d", CreatedBy: "u", Status: status}
	m.ideas[i.ID] = i
	return i
}
