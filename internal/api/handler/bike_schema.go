package handler

// errorResponse is the envelope returned on all 4xx/5xx responses, matching
// the contract the original frontend consumes.
type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ackResponse acknowledges a successful write.
type ackResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// --- Request types ---

type listBikeRequest struct {
	Model         string  `json:"model"         validate:"required"`
	Location      string  `json:"location"      validate:"required"`
	ModelYear     int     `json:"modelYear"     validate:"required"`
	RentRate      float64 `json:"rentRate"      validate:"required,gt=0"`
	ContactNumber string  `json:"contactNumber" validate:"required"`
	PhotoURL      string  `json:"photoUrl"      validate:"omitempty,url"`
}

type bikeIDRequest struct {
	BikeID string `json:"bikeId" validate:"required"`
}
