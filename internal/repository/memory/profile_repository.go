package memory

import (
	"sort"
	"sync"

	"github.com/google/uuid"

	"mongolens-be/internal/entity"
	"mongolens-be/internal/repository/contract"
)

// ProfileRepository keeps connection profiles in memory only. Used when no
// store path is configured, so nothing outlives the process.
type ProfileRepository struct {
	mu       sync.RWMutex
	profiles map[string]entity.ConnectionProfile
}

func NewProfileRepository() contract.IProfileRepository {
	return &ProfileRepository{
		profiles: make(map[string]entity.ConnectionProfile),
	}
}

func (r *ProfileRepository) GetAll() ([]*entity.ConnectionProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*entity.ConnectionProfile, 0, len(r.profiles))
	for _, p := range r.profiles {
		clone := p
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *ProfileRepository) GetById(id string) (*entity.ConnectionProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.profiles[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *ProfileRepository) Create(profile *entity.ConnectionProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if profile.Id == "" {
		profile.Id = uuid.NewString()
	}
	r.profiles[profile.Id] = *profile
	return nil
}

func (r *ProfileRepository) Update(profile *entity.ConnectionProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles[profile.Id] = *profile
	return nil
}

func (r *ProfileRepository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.profiles, id)
	return nil
}
