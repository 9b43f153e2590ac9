package models

import "time"

// Roles
const (
	RoleAdmin = "ADMIN"
	RoleStaff = "STAFF"
)

// Live tally categories
const (
	TallyCandidate = "CANDIDATE"
	TallyNoVote    = "NO_VOTE"
	TallyVoid      = "VOID"
)

// Audit actions
const (
	ActionSubmit     = "SUBMIT"
	ActionRecount    = "RECOUNT"
	ActionLiveUpdate = "LIVE_UPDATE"
)

// DefaultThemeColor is applied to candidates created without a color
const DefaultThemeColor = "#3B82F6"

// Candidate is a person standing for election
type Candidate struct {
	ID              int       `json:"id"`
	CandidateNumber int       `json:"candidateNumber"`
	Name            string    `json:"name"`
	PartyName       string    `json:"partyName"`
	PhotoURL        string    `json:"photoUrl,omitempty"`
	ThemeColor      string    `json:"themeColor"`
	CreatedAt       time.Time `json:"createdAt"`
}

// PollingUnit is a voting location, usually one classroom
type PollingUnit struct {
	ID            int       `json:"id"`
	Name          string    `json:"name"`
	Grade         string    `json:"grade"`
	TotalEligible int       `json:"totalEligible"`
	BallotsIssued int       `json:"ballotsIssued"`
	CreatedAt     time.Time `json:"createdAt"`
}

// User is a staff or admin account. PasswordHash and ActiveSessionToken never
// leave the server.
type User struct {
	ID                 int        `json:"id"`
	Username           string     `json:"username"`
	PasswordHash       string     `json:"-"`
	Name               string     `json:"name"`
	Role               string     `json:"role"`
	PollingUnitID      *int       `json:"pollingUnitId"`
	PollingUnitName    string     `json:"pollingUnitName,omitempty"`
	ActiveSessionToken string     `json:"-"`
	LastSeen           *time.Time `json:"lastSeen"`
	Online             bool       `json:"online"`
	CreatedAt          time.Time  `json:"createdAt"`
}

// SystemConfig is the singleton election configuration (id=1)
type SystemConfig struct {
	ID                int       `json:"id"`
	PublicViewEnabled bool      `json:"publicViewEnabled"`
	ElectionTitle     string    `json:"electionTitle"`
	SchoolName        string    `json:"schoolName"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// LiveTally is one unofficial counter keyed by (unit, candidate-or-nil, type)
type LiveTally struct {
	ID            int       `json:"id"`
	PollingUnitID int       `json:"pollingUnitId"`
	CandidateID   *int      `json:"candidateId"`
	TallyType     string    `json:"tallyType"`
	Count         int       `json:"count"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// UnitSubmission is one immutable official round for a unit
type UnitSubmission struct {
	ID               int       `json:"id"`
	PollingUnitID    int       `json:"pollingUnitId"`
	PollingUnitName  string    `json:"pollingUnitName,omitempty"`
	Round            int       `json:"round"`
	TotalSignatures  int       `json:"totalSignatures"`
	BallotsIssued    int       `json:"ballotsIssued"`
	BallotsRemaining int       `json:"ballotsRemaining"`
	TotalNoVote      int       `json:"totalNoVote"`
	TotalVoidBallots int       `json:"totalVoidBallots"`
	PhotoEvidence    string    `json:"photoEvidence,omitempty"`
	SubmittedBy      string    `json:"submittedBy"`
	Reason           string    `json:"reason,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
}

// VoteResult is a candidate's count within one submission round
type VoteResult struct {
	ID            int    `json:"id"`
	PollingUnitID int    `json:"pollingUnitId"`
	CandidateID   int    `json:"candidateId"`
	CandidateName string `json:"candidateName,omitempty"`
	Round         int    `json:"round"`
	VoteCount     int    `json:"voteCount"`
}

// VoteEntry is a single candidate count inside a submission request
type VoteEntry struct {
	CandidateID int `json:"candidateId"`
	VoteCount   int `json:"voteCount"`
}

// AuditLog is an append-only transparency record
type AuditLog struct {
	ID          int       `json:"id"`
	Action      string    `json:"action"`
	PollingUnit string    `json:"pollingUnit"`
	Round       *int      `json:"round"`
	Details     string    `json:"details"`
	Reason      string    `json:"reason,omitempty"`
	PerformedBy string    `json:"performedBy"`
	CreatedAt   time.Time `json:"createdAt"`
}

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}
