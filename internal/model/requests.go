package model

// RegisterRequest creates a new workspace account
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=32"`
	Password string `json:"password" binding:"required,min=6"`
}

// LoginRequest authenticates against an existing workspace
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse carries the issued token
type AuthResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}

// CreateBotRequest opens a fully configured strategy position
type CreateBotRequest struct {
	Symbol    string     `json:"symbol" binding:"required"`
	BaseOrder float64    `json:"base_order" binding:"required,gt=0"`
	Config    *DCAConfig `json:"config"`
}

// OpenStrategyRequest is the one-click entry: defaults for everything except
// the pair and the stake, with the restart loop always on.
type OpenStrategyRequest struct {
	Symbol    string  `json:"symbol" binding:"required"`
	BaseOrder float64 `json:"base_order" binding:"required,gt=0"`
}
