package services

import (
	"context"
	"fmt"

	"github.com/abrezinsky/councilvote/internal/logger"
	"github.com/abrezinsky/councilvote/internal/models"
)

// ResultsServiceRepository defines the repository methods needed by ResultsService
type ResultsServiceRepository interface {
	ListCandidates(ctx context.Context) ([]models.Candidate, error)
	ListUnits(ctx context.Context) ([]models.PollingUnit, error)
	LatestSubmissions(ctx context.Context) ([]models.UnitSubmission, error)
	LatestVoteResults(ctx context.Context) ([]models.VoteResult, error)
	ListLiveTallies(ctx context.Context, unitID *int) ([]models.LiveTally, error)
	GetConfig(ctx context.Context) (*models.SystemConfig, error)
}

// ResultsService merges official rounds and live tallies into the public view
type ResultsService struct {
	log  logger.Logger
	repo ResultsServiceRepository
}

// NewResultsService creates a new ResultsService
func NewResultsService(log logger.Logger, repo ResultsServiceRepository) *ResultsService {
	return &ResultsService{log: log, repo: repo}
}

// CandidateResult is one candidate's official, live, and displayed totals
type CandidateResult struct {
	CandidateID     int    `json:"candidateId"`
	CandidateNumber int    `json:"candidateNumber"`
	CandidateName   string `json:"candidateName"`
	PartyName       string `json:"partyName"`
	PhotoURL        string `json:"photoUrl"`
	ThemeColor      string `json:"themeColor"`
	OfficialVotes   int    `json:"officialVotes"`
	LiveVotes       int    `json:"liveVotes"`
	DisplayedVotes  int    `json:"displayedVotes"`
}

// Summary holds election-wide totals
type Summary struct {
	TotalOfficialNoVote int    `json:"totalOfficialNoVote"`
	TotalOfficialVoid   int    `json:"totalOfficialVoid"`
	TotalLiveNoVote     int    `json:"totalLiveNoVote"`
	TotalLiveVoid       int    `json:"totalLiveVoid"`
	DisplayedNoVote     int    `json:"displayedNoVote"`
	DisplayedVoid       int    `json:"displayedVoid"`
	TotalSignatures     int    `json:"totalSignatures"`
	TotalBallotsIssued  int    `json:"totalBallotsIssued"`
	TotalEligible       int    `json:"totalEligible"`
	UnitsSubmitted      int    `json:"unitsSubmitted"`
	TotalUnits          int    `json:"totalUnits"`
	TurnoutPercent      string `json:"turnoutPercent"`
	IsOfficial          bool   `json:"isOfficial"`
}

// PublicConfig is the part of SystemConfig shown to the public
type PublicConfig struct {
	ElectionTitle string `json:"electionTitle"`
	SchoolName    string `json:"schoolName"`
}

// Results is the full aggregated view. Candidates and Summary are always set
// unless the view is a hidden public one.
type Results struct {
	Enabled    bool              `json:"enabled"`
	Config     *PublicConfig     `json:"config"`
	Candidates []CandidateResult `json:"candidates"`
	Summary    *Summary          `json:"summary"`
}

// ChartData is the per-grade breakdown. Each grade row carries "grade" plus
// candidate_<id>, candidate_<id>_name and candidate_<id>_color keys.
type ChartData struct {
	Enabled    bool                     `json:"enabled"`
	Grades     []map[string]interface{} `json:"grades"`
	Candidates []models.Candidate       `json:"candidates"`
}

// snapshot is the committed state one aggregation works from
type snapshot struct {
	candidates  []models.Candidate
	units       []models.PollingUnit
	submissions []models.UnitSubmission
	votes       []models.VoteResult
	tallies     []models.LiveTally
}

func (s *ResultsService) load(ctx context.Context) (*snapshot, error) {
	var snap snapshot
	var err error
	if snap.candidates, err = s.repo.ListCandidates(ctx); err != nil {
		return nil, err
	}
	if snap.units, err = s.repo.ListUnits(ctx); err != nil {
		return nil, err
	}
	if snap.submissions, err = s.repo.LatestSubmissions(ctx); err != nil {
		return nil, err
	}
	if snap.votes, err = s.repo.LatestVoteResults(ctx); err != nil {
		return nil, err
	}
	if snap.tallies, err = s.repo.ListLiveTallies(ctx, nil); err != nil {
		return nil, err
	}
	return &snap, nil
}

// OfficialTotals sums each candidate's votes from the latest round of every
// submitted unit. Units without a submission contribute nothing.
func (s *ResultsService) OfficialTotals(ctx context.Context) (map[int]int, error) {
	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return snap.officialTotals(), nil
}

// LiveTotals sums each candidate's CANDIDATE counters across all units
func (s *ResultsService) LiveTotals(ctx context.Context) (map[int]int, error) {
	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return snap.liveTotals(), nil
}

// Summary computes election-wide totals, turnout, and completion
func (s *ResultsService) Summary(ctx context.Context) (*Summary, error) {
	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	sum := snap.summary()
	return &sum, nil
}

// GradeBreakdown computes per-grade candidate totals, choosing official or
// live per unit before summing within the grade.
func (s *ResultsService) GradeBreakdown(ctx context.Context) ([]map[string]interface{}, error) {
	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return snap.gradeBreakdown(), nil
}

// Results computes the full view regardless of the public flag
func (s *ResultsService) Results(ctx context.Context) (*Results, error) {
	cfg, err := s.repo.GetConfig(ctx)
	if err != nil {
		return nil, err
	}
	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	official := snap.officialTotals()
	live := snap.liveTotals()
	candidates := make([]CandidateResult, 0, len(snap.candidates))
	for _, c := range snap.candidates {
		candidates = append(candidates, CandidateResult{
			CandidateID:     c.ID,
			CandidateNumber: c.CandidateNumber,
			CandidateName:   c.Name,
			PartyName:       c.PartyName,
			PhotoURL:        c.PhotoURL,
			ThemeColor:      c.ThemeColor,
			OfficialVotes:   official[c.ID],
			LiveVotes:       live[c.ID],
			DisplayedVotes:  DisplayedVotes(official[c.ID], live[c.ID]),
		})
	}
	sum := snap.summary()

	return &Results{
		Enabled:    cfg.PublicViewEnabled,
		Config:     &PublicConfig{ElectionTitle: cfg.ElectionTitle, SchoolName: cfg.SchoolName},
		Candidates: candidates,
		Summary:    &sum,
	}, nil
}

// PublicResults returns the view only while the public flag is on. The flag
// is read on every call.
func (s *ResultsService) PublicResults(ctx context.Context) (*Results, error) {
	cfg, err := s.repo.GetConfig(ctx)
	if err != nil {
		return nil, err
	}
	if !cfg.PublicViewEnabled {
		return &Results{Enabled: false}, nil
	}
	return s.Results(ctx)
}

// PublicChartData returns the grade breakdown while the public flag is on.
// Store failures degrade to an empty chart.
func (s *ResultsService) PublicChartData(ctx context.Context) (*ChartData, error) {
	cfg, err := s.repo.GetConfig(ctx)
	if err != nil {
		return nil, err
	}
	if !cfg.PublicViewEnabled {
		return &ChartData{Enabled: false}, nil
	}

	snap, err := s.load(ctx)
	if err != nil {
		s.log.Warn("Chart data unavailable", "error", err)
		return &ChartData{Enabled: true, Grades: []map[string]interface{}{}, Candidates: []models.Candidate{}}, nil
	}
	chart := &ChartData{Enabled: true, Grades: snap.gradeBreakdown(), Candidates: snap.candidates}
	if chart.Candidates == nil {
		chart.Candidates = []models.Candidate{}
	}
	return chart, nil
}

// DisplayedVotes prefers the official count once it is positive. A genuine
// official zero falls back to live.
func DisplayedVotes(official, live int) int {
	if official > 0 {
		return official
	}
	return live
}

// TurnoutPercent formats signatures over eligible voters to one decimal, or "0"
func TurnoutPercent(signatures, eligible int) string {
	if eligible == 0 {
		return "0"
	}
	return fmt.Sprintf("%.1f", float64(signatures)/float64(eligible)*100)
}

// IsOfficial reports whether every registered unit has submitted at least once
func IsOfficial(unitsSubmitted, totalUnits int) bool {
	return totalUnits > 0 && unitsSubmitted == totalUnits
}

func (snap *snapshot) officialTotals() map[int]int {
	totals := make(map[int]int, len(snap.candidates))
	for _, v := range snap.votes {
		totals[v.CandidateID] += v.VoteCount
	}
	return totals
}

func (snap *snapshot) liveTotals() map[int]int {
	totals := make(map[int]int, len(snap.candidates))
	for _, t := range snap.tallies {
		if t.TallyType == models.TallyCandidate && t.CandidateID != nil {
			totals[*t.CandidateID] += t.Count
		}
	}
	return totals
}

func (snap *snapshot) summary() Summary {
	var sum Summary
	for _, sub := range snap.submissions {
		sum.TotalOfficialNoVote += sub.TotalNoVote
		sum.TotalOfficialVoid += sub.TotalVoidBallots
		sum.TotalSignatures += sub.TotalSignatures
		sum.TotalBallotsIssued += sub.BallotsIssued
	}
	for _, t := range snap.tallies {
		switch t.TallyType {
		case models.TallyNoVote:
			sum.TotalLiveNoVote += t.Count
		case models.TallyVoid:
			sum.TotalLiveVoid += t.Count
		}
	}
	for _, u := range snap.units {
		sum.TotalEligible += u.TotalEligible
	}

	sum.UnitsSubmitted = len(snap.submissions)
	sum.TotalUnits = len(snap.units)
	sum.DisplayedNoVote = DisplayedVotes(sum.TotalOfficialNoVote, sum.TotalLiveNoVote)
	sum.DisplayedVoid = DisplayedVotes(sum.TotalOfficialVoid, sum.TotalLiveVoid)
	sum.TurnoutPercent = TurnoutPercent(sum.TotalSignatures, sum.TotalEligible)
	sum.IsOfficial = IsOfficial(sum.UnitsSubmitted, sum.TotalUnits)
	return sum
}

func (snap *snapshot) gradeBreakdown() []map[string]interface{} {
	submitted := make(map[int]bool, len(snap.submissions))
	for _, sub := range snap.submissions {
		submitted[sub.PollingUnitID] = true
	}

	// per unit, per candidate
	official := make(map[int]map[int]int)
	for _, v := range snap.votes {
		if official[v.PollingUnitID] == nil {
			official[v.PollingUnitID] = make(map[int]int)
		}
		official[v.PollingUnitID][v.CandidateID] += v.VoteCount
	}
	live := make(map[int]map[int]int)
	for _, t := range snap.tallies {
		if t.TallyType != models.TallyCandidate || t.CandidateID == nil {
			continue
		}
		if live[t.PollingUnitID] == nil {
			live[t.PollingUnitID] = make(map[int]int)
		}
		live[t.PollingUnitID][*t.CandidateID] += t.Count
	}

	var order []string
	byGrade := make(map[string]map[int]int)
	for _, u := range snap.units {
		if _, ok := byGrade[u.Grade]; !ok {
			order = append(order, u.Grade)
			byGrade[u.Grade] = make(map[int]int)
		}
		source := live[u.ID]
		if submitted[u.ID] {
			source = official[u.ID]
		}
		for _, c := range snap.candidates {
			byGrade[u.Grade][c.ID] += source[c.ID]
		}
	}

	rows := make([]map[string]interface{}, 0, len(order))
	for _, grade := range order {
		row := map[string]interface{}{"grade": grade}
		for _, c := range snap.candidates {
			key := fmt.Sprintf("candidate_%d", c.ID)
			row[key] = byGrade[grade][c.ID]
			row[key+"_name"] = c.Name
			row[key+"_color"] = c.ThemeColor
		}
		rows = append(rows, row)
	}
	return rows
}
