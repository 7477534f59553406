package service

import (
	"mongolens-be/internal/apperr"
	"mongolens-be/internal/dto"
	"mongolens-be/internal/entity"
	"mongolens-be/internal/repository/contract"
)

type IProfileService interface {
	GetAll() ([]dto.ProfileResponse, error)
	GetById(id string) (*dto.ProfileResponse, error)
	Create(req *dto.CreateProfileRequest) (*dto.ProfileResponse, error)
	Update(req *dto.UpdateProfileRequest) (*dto.ProfileResponse, error)
	Delete(id string) error
}

type profileService struct {
	profiles contract.IProfileRepository
}

func NewProfileService(profiles contract.IProfileRepository) IProfileService {
	return &profileService{profiles: profiles}
}

func (s *profileService) GetAll() ([]dto.ProfileResponse, error) {
	all, err := s.profiles.GetAll()
	if err != nil {
		return nil, err
	}
	res := make([]dto.ProfileResponse, 0, len(all))
	for _, p := range all {
		res = append(res, toProfileResponse(p))
	}
	return res, nil
}

func (s *profileService) GetById(id string) (*dto.ProfileResponse, error) {
	profile, err := s.profiles.GetById(id)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, &apperr.ProfileNotFoundError{Id: id}
	}
	res := toProfileResponse(profile)
	return &res, nil
}

func (s *profileService) Create(req *dto.CreateProfileRequest) (*dto.ProfileResponse, error) {
	profile := &entity.ConnectionProfile{
		Name: req.Name,
		URI:  req.URI,
	}
	if err := s.profiles.Create(profile); err != nil {
		return nil, err
	}
	res := toProfileResponse(profile)
	return &res, nil
}

// Update keeps the stored driver version unless the URI changed; a new
// target may speak a different wire version.
func (s *profileService) Update(req *dto.UpdateProfileRequest) (*dto.ProfileResponse, error) {
	existing, err := s.profiles.GetById(req.Id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, &apperr.ProfileNotFoundError{Id: req.Id}
	}

	if existing.URI != req.URI {
		existing.LastDriverVersion = ""
	}
	existing.Name = req.Name
	existing.URI = req.URI

	if err := s.profiles.Update(existing); err != nil {
		return nil, err
	}
	res := toProfileResponse(existing)
	return &res, nil
}

func (s *profileService) Delete(id string) error {
	existing, err := s.profiles.GetById(id)
	if err != nil {
		return err
	}
	if existing == nil {
		return &apperr.ProfileNotFoundError{Id: id}
	}
	return s.profiles.Delete(id)
}

func toProfileResponse(p *entity.ConnectionProfile) dto.ProfileResponse {
	return dto.ProfileResponse{
		Id:                p.Id,
		Name:              p.Name,
		URI:               p.URI,
		LastDriverVersion: p.LastDriverVersion,
	}
}
