package entity

// ConnectionProfile is a saved deployment the user can connect to. The
// profile store owns creation and editing; the session layer reads it and
// writes back the driver version that last worked so future connects can
// skip negotiation.
type ConnectionProfile struct {
	Id                string `json:"id"`
	Name              string `json:"name"`
	URI               string `json:"uri"`
	LastDriverVersion string `json:"lastDriverVersion,omitempty"`
}
