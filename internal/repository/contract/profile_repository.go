package contract

import "mongolens-be/internal/entity"

// IProfileRepository is the connection-profile store. GetById returns
// (nil, nil) for an unknown id; translating that into an error is the
// caller's concern.
type IProfileRepository interface {
	GetAll() ([]*entity.ConnectionProfile, error)
	GetById(id string) (*entity.ConnectionProfile, error)
	Create(profile *entity.ConnectionProfile) error
	Update(profile *entity.ConnectionProfile) error
	Delete(id string) error
}
