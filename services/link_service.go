package services

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"strings"
	"time"

	"quest-verify-system/models"
	"quest-verify-system/utils"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var walletAddressPattern = regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`)

type LinkResult struct {
	Success        bool   `json:"success"`
	Handle         string `json:"handle,omitempty"`
	VerificationID string `json:"verificationId,omitempty"`
	Message        string `json:"message,omitempty"`
}

type LinkStatus struct {
	Verified      bool      `json:"verified"`
	TwitterHandle string    `json:"twitterHandle"`
	VerifiedAt    time.Time `json:"verifiedAt"`
}

type LinkSummary struct {
	ID            string    `json:"id"`
	WalletAddress string    `json:"walletAddress"`
	TwitterHandle string    `json:"twitterHandle"`
	VerifiedAt    time.Time `json:"verifiedAt"`
}

type LinkList struct {
	Count         int           `json:"count"`
	Verifications []LinkSummary `json:"verifications"`
}

// LinkService is the standalone profile-linking flow, independent of the
// quest ledger: one wallet, one handle, enforced bidirectionally unique by
// the links table's indexes.
type LinkService struct {
	Links    LinkStore
	Verifier ProofVerifier
}

func NewLinkService(links LinkStore, verifier ProofVerifier) *LinkService {
	return &LinkService{Links: links, Verifier: verifier}
}

const handleTakenMessage = "This Twitter account has already been verified with another wallet"

// SubmitAndVerify sends the proof to the external engine and, on success,
// records the wallet↔handle link. Re-submission for an already-linked
// wallet is an idempotent success.
func (s *LinkService) SubmitAndVerify(ctx context.Context, walletAddress string, proof json.RawMessage) (*LinkResult, error) {
	normalized, err := normalizeWallet(walletAddress)
	if err != nil {
		return nil, err
	}

	existing, err := s.Links.FindByWallet(normalized)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return alreadyVerified(existing), nil
	}

	logrus.WithField("wallet", normalized).Info("Sending proof to verifier")
	verdict, err := s.Verifier.Verify(ctx, VerifyRequest{Proof: proof, QuestType: models.QuestProfile})
	if err != nil {
		return nil, err
	}

	if !verdict.Valid {
		message := verdict.Error
		if message == "" {
			message = "Proof verification failed"
		}
		logrus.WithField("error", verdict.Error).Warn("Proof verification failed")
		return &LinkResult{Message: message}, nil
	}
	if verdict.TwitterHandle == "" {
		return &LinkResult{Message: "Could not extract Twitter handle from proof"}, nil
	}

	return s.createLink(normalized, verdict.TwitterHandle, utils.HashProof(proof))
}

// SaveLink is the operator-assisted path: the handle was verified
// out-of-band, so the engine is bypassed. The same uniqueness rules apply.
func (s *LinkService) SaveLink(walletAddress, twitterHandle, sessionID string) (*LinkResult, error) {
	normalized, err := normalizeWallet(walletAddress)
	if err != nil {
		return nil, err
	}
	if twitterHandle == "" || sessionID == "" {
		return nil, NewClientError("twitterHandle and sessionId are required")
	}

	existing, err := s.Links.FindByWallet(normalized)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return alreadyVerified(existing), nil
	}

	return s.createLink(normalized, twitterHandle, utils.HashString(sessionID))
}

// createLink enforces handle uniqueness, then inserts. The pre-insert read
// only produces a friendlier early answer — the unique indexes decide the
// race, and a duplicate-key error is re-interpreted as the corresponding
// business outcome.
func (s *LinkService) createLink(wallet, handle, proofHash string) (*LinkResult, error) {
	taken, err := s.Links.FindByHandle(handle)
	if err != nil {
		return nil, err
	}
	if taken != nil {
		return &LinkResult{Message: handleTakenMessage}, nil
	}

	record := &models.LinkRecord{
		ID:            uuid.NewString(),
		WalletAddress: wallet,
		TwitterHandle: handle,
		ProofHash:     proofHash,
		VerifiedAt:    time.Now(),
	}
	if err := s.Links.Create(record); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			winner, ferr := s.Links.FindByWallet(wallet)
			if ferr != nil {
				return nil, ferr
			}
			if winner != nil {
				return alreadyVerified(winner), nil
			}
			return &LinkResult{Message: handleTakenMessage}, nil
		}
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"wallet": wallet,
		"handle": handle,
	}).Info("Verified Twitter handle for wallet")

	return &LinkResult{
		Success:        true,
		Handle:         handle,
		VerificationID: record.ID,
	}, nil
}

// Check reports the wallet's link, or ErrNotFound.
func (s *LinkService) Check(walletAddress string) (*LinkStatus, error) {
	record, err := s.Links.FindByWallet(strings.ToLower(walletAddress))
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, ErrNotFound
	}
	return &LinkStatus{
		Verified:      true,
		TwitterHandle: record.TwitterHandle,
		VerifiedAt:    record.VerifiedAt,
	}, nil
}

// List returns all links, newest first.
func (s *LinkService) List() (*LinkList, error) {
	records, err := s.Links.List()
	if err != nil {
		return nil, err
	}
	out := &LinkList{Count: len(records), Verifications: make([]LinkSummary, 0, len(records))}
	for _, r := range records {
		out.Verifications = append(out.Verifications, LinkSummary{
			ID:            r.ID,
			WalletAddress: r.WalletAddress,
			TwitterHandle: r.TwitterHandle,
			VerifiedAt:    r.VerifiedAt,
		})
	}
	return out, nil
}

func alreadyVerified(record *models.LinkRecord) *LinkResult {
	return &LinkResult{
		Success:        true,
		Handle:         record.TwitterHandle,
		VerificationID: record.ID,
		Message:        "Already verified",
	}
}

func normalizeWallet(walletAddress string) (string, error) {
	if !walletAddressPattern.MatchString(walletAddress) {
		return "", NewClientError("walletAddress must be a valid Ethereum address")
	}
	return strings.ToLower(walletAddress), nil
}
