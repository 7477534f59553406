package dto

type ConnectRequest struct {
	ConnectionId string `json:"connectionId" validate:"required"`
	AttemptId    string `json:"attemptId" validate:"required"`
}

type ConnectResponse struct {
	ConnectionId  string `json:"connectionId"`
	Database      string `json:"database"`
	DriverVersion string `json:"driverVersion"`
}

type CancelAttemptRequest struct {
	AttemptId string `json:"attemptId" validate:"required"`
}

type CancelResponse struct {
	Success bool `json:"success"`
}
