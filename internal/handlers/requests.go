package handlers

// LoginRequest is the body of POST /api/auth/login
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UnitInitRequest is the body of PUT /api/staff/unit-init
type UnitInitRequest struct {
	TotalEligible *int `json:"totalEligible"`
	BallotsIssued *int `json:"ballotsIssued"`
}
