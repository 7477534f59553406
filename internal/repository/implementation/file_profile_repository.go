package implementation

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"mongolens-be/internal/entity"
	"mongolens-be/internal/repository/contract"

	"github.com/google/uuid"
)

// fileProfileRepository persists profiles as one JSON file next to the app.
// Good enough for a desktop backend: a handful of profiles, mutated rarely.
type fileProfileRepository struct {
	mu       sync.Mutex
	path     string
	profiles []*entity.ConnectionProfile
}

func NewFileProfileRepository(path string) (contract.IProfileRepository, error) {
	r := &fileProfileRepository{path: path}
	if err := r.load(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *fileProfileRepository) load() error {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			r.profiles = make([]*entity.ConnectionProfile, 0)
			return nil
		}
		return fmt.Errorf("failed to read profile store: %w", err)
	}
	if err := json.Unmarshal(data, &r.profiles); err != nil {
		return fmt.Errorf("failed to parse profile store: %w", err)
	}
	return nil
}

// persist writes the in-memory set back to disk. Caller holds the lock.
func (r *fileProfileRepository) persist() error {
	data, err := json.MarshalIndent(r.profiles, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(r.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write profile store: %w", err)
	}
	return nil
}

func (r *fileProfileRepository) GetAll() ([]*entity.ConnectionProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*entity.ConnectionProfile, len(r.profiles))
	for i, p := range r.profiles {
		clone := *p
		out[i] = &clone
	}
	return out, nil
}

func (r *fileProfileRepository) GetById(id string) (*entity.ConnectionProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.profiles {
		if p.Id == id {
			clone := *p
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *fileProfileRepository) Create(profile *entity.ConnectionProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if profile.Id == "" {
		profile.Id = uuid.New().String()
	}
	for _, p := range r.profiles {
		if p.Id == profile.Id {
			return fmt.Errorf("profile already exists: %s", profile.Id)
		}
	}
	clone := *profile
	r.profiles = append(r.profiles, &clone)
	return r.persist()
}

func (r *fileProfileRepository) Update(profile *entity.ConnectionProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, p := range r.profiles {
		if p.Id == profile.Id {
			clone := *profile
			r.profiles[i] = &clone
			return r.persist()
		}
	}
	return fmt.Errorf("profile not found: %s", profile.Id)
}

func (r *fileProfileRepository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, p := range r.profiles {
		if p.Id == id {
			r.profiles = append(r.profiles[:i], r.profiles[i+1:]...)
			return r.persist()
		}
	}
	return fmt.Errorf("profile not found: %s", id)
}
