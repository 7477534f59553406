package dto

type CreateProfileRequest struct {
	Name string `json:"name" validate:"required"`
	URI  string `json:"uri" validate:"required,uri"`
}

type UpdateProfileRequest struct {
	Id   string `json:"-"`
	Name string `json:"name" validate:"required"`
	URI  string `json:"uri" validate:"required,uri"`
}

type ProfileResponse struct {
	Id                string `json:"id"`
	Name              string `json:"name"`
	URI               string `json:"uri"`
	LastDriverVersion string `json:"lastDriverVersion,omitempty"`
}
