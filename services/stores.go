package services

import (
	"context"
	"encoding/json"

	"quest-verify-system/models"
)

// Store interfaces are satisfied by the gorm-backed repository package.
// Find methods return (nil, nil) when the record is absent; uniqueness is
// enforced by database constraints, and duplicate-key errors from Create
// calls are resolved by the services into "already exists" outcomes.

type UserStore interface {
	FindByWallet(wallet string) (*models.User, error)
	Create(u *models.User) error
	SetTwitterHandle(userID, handle string) error
}

type CompletionStore interface {
	FindByUserQuest(userID string, questNumber int) (*models.QuestCompletion, error)
	ListByUser(userID string) ([]models.QuestCompletion, error)
	CompletedNumbers(userID string) (map[int]bool, error)
	Create(c *models.QuestCompletion) error
	Update(c *models.QuestCompletion) error
}

type LinkStore interface {
	FindByWallet(wallet string) (*models.LinkRecord, error)
	FindByHandle(handle string) (*models.LinkRecord, error)
	Create(l *models.LinkRecord) error
	List() ([]models.LinkRecord, error)
}

// ProofVerifier is the boundary to the external verification engine.
type ProofVerifier interface {
	Verify(ctx context.Context, req VerifyRequest) (*VerifierResponse, error)
}

// SignatureVerifier authenticates that a submission was signed by the
// claimed wallet.
type SignatureVerifier interface {
	Verify(walletAddress, signature, message string, timestamp int64) SignatureResult
}

// ProofArchive receives audit copies of successfully verified proofs.
// Implementations must not block the submission path.
type ProofArchive interface {
	Enqueue(walletAddress string, questNumber int, proofHash string, proof json.RawMessage)
}
