package services

import (
	"context"
	"regexp"
	"strings"

	"colorrush/models"
)

// Per-round wallet states. A wallet moves NotJoined -> Joined -> Played
// and never skips or leaves Played within a round; a new round starts
// every wallet back at NotJoined.
const (
	StateNotJoined = "not_joined"
	StateJoined    = "joined"
	StatePlayed    = "played"
)

var addressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// GateService is the round gate: it composes the round directory with
// the entry and score ledgers and enforces the join-before-play state
// machine. Payment verification stays with the wallet client; the gate
// only records the transaction reference it is handed.
type GateService struct {
	rounds  *RoundService
	entries *EntryService
	scores  *ScoreService
}

func NewGateService(rounds *RoundService, entries *EntryService, scores *ScoreService) *GateService {
	return &GateService{rounds: rounds, entries: entries, scores: scores}
}

type WalletState struct {
	RoundID string `json:"round_id"`
	State   string `json:"state"`
	Score   int    `json:"score"`
}

// State reports which of the three states applies to the wallet in the
// round, with the recorded score when it has played.
func (s *GateService) State(roundID, address string) (*WalletState, error) {
	if !ValidAddress(address) {
		return nil, ErrInvalidAddress
	}
	address = strings.ToLower(address)

	status, err := s.scores.HasPlayed(roundID, address)
	if err != nil {
		return nil, err
	}
	if status.HasPlayed {
		return &WalletState{RoundID: roundID, State: StatePlayed, Score: status.Score}, nil
	}

	joined, err := s.entries.HasJoined(roundID, address)
	if err != nil {
		return nil, err
	}
	if joined {
		return &WalletState{RoundID: roundID, State: StateJoined}, nil
	}

	return &WalletState{RoundID: roundID, State: StateNotJoined}, nil
}

// Join moves the wallet from NotJoined to Joined in the current round.
// Idempotent: a repeat join reports AlreadyJoined without touching the
// pool again.
func (s *GateService) Join(ctx context.Context, address, txHash string) (*JoinResult, error) {
	if !ValidAddress(address) {
		return nil, ErrInvalidAddress
	}

	round, err := s.rounds.GetCurrentRound(ctx)
	if err != nil {
		return nil, err
	}

	return s.entries.Join(round, address, txHash)
}

// SubmitScore moves the wallet from Joined to Played. Played is terminal
// for the round: repeat submissions fail with AlreadyPlayedError and the
// first score stands.
func (s *GateService) SubmitScore(roundID, address string, score int) (int, error) {
	if !ValidAddress(address) {
		return 0, ErrInvalidAddress
	}
	if score < 0 {
		return 0, ErrInvalidScore
	}

	return s.scores.Submit(roundID, address, score)
}

// Reset clears the wallet's Played state in the current round. Operator
// escape hatch for demos, not part of normal play.
func (s *GateService) Reset(ctx context.Context, address string) (bool, string, error) {
	if !ValidAddress(address) {
		return false, "", ErrInvalidAddress
	}

	round, err := s.rounds.GetCurrentRound(ctx)
	if err != nil {
		return false, "", err
	}

	deleted, err := s.scores.Reset(round.RoundID, address)
	return deleted, round.RoundID, err
}

// CurrentRound exposes the round directory to the HTTP layer.
func (s *GateService) CurrentRound(ctx context.Context) (*models.Round, error) {
	return s.rounds.GetCurrentRound(ctx)
}

// ValidAddress checks the 0x-prefixed 20-byte hex shape of an EVM wallet
// address. Checksum casing is not enforced; addresses are lowercased
// before storage anyway.
func ValidAddress(address string) bool {
	return addressPattern.MatchString(address)
}
