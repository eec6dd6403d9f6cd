package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"quest-verify-system/models"
	"quest-verify-system/utils"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type SubmitQuestRequest struct {
	QuestNumber   int             `json:"questNumber"`
	WalletAddress string          `json:"walletAddress"`
	Proof         json.RawMessage `json:"proof"`
	TweetURL      string          `json:"tweetUrl,omitempty"`
	Signature     string          `json:"signature"`
	Message       string          `json:"message"`
	Timestamp     int64           `json:"timestamp"`
}

type SubmitQuestResult struct {
	Success            bool               `json:"success"`
	QuestNumber        int                `json:"questNumber"`
	Status             models.QuestStatus `json:"status"`
	Message            string             `json:"message,omitempty"`
	VerificationResult models.JSONMap     `json:"verificationResult,omitempty"`
}

type QuestProgress struct {
	Number      int                `json:"number"`
	Name        string             `json:"name"`
	Slug        string             `json:"slug"`
	Type        models.QuestType   `json:"type"`
	Status      models.QuestStatus `json:"status"`
	CompletedAt *time.Time         `json:"completedAt,omitempty"`
	Metadata    models.JSONMap     `json:"metadata,omitempty"`
}

type UserProgress struct {
	WalletAddress string          `json:"walletAddress"`
	TwitterHandle *string         `json:"twitterHandle,omitempty"`
	Quests        []QuestProgress `json:"quests"`
}

// QuestService orchestrates quest submissions: wallet-signature gate,
// prerequisite and idempotency checks, the external verification call,
// per-quest-type verdict interpretation, and durable state updates.
type QuestService struct {
	Users       UserStore
	Completions CompletionStore
	Signatures  SignatureVerifier
	Verifier    ProofVerifier

	// Archive receives audit copies of verified proofs; optional.
	Archive ProofArchive
}

func NewQuestService(users UserStore, completions CompletionStore, signatures SignatureVerifier, verifier ProofVerifier) *QuestService {
	return &QuestService{
		Users:       users,
		Completions: completions,
		Signatures:  signatures,
		Verifier:    verifier,
	}
}

// GetOrCreateUser resolves the wallet's identity, creating it on first
// sight. A losing racer's duplicate-key insert resolves by re-reading the
// winner's row.
func (s *QuestService) GetOrCreateUser(walletAddress string) (*models.User, error) {
	normalized := strings.ToLower(walletAddress)

	user, err := s.Users.FindByWallet(normalized)
	if err != nil {
		return nil, err
	}
	if user != nil {
		return user, nil
	}

	user = &models.User{ID: uuid.NewString(), WalletAddress: normalized}
	if err := s.Users.Create(user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return s.Users.FindByWallet(normalized)
		}
		return nil, err
	}
	logrus.WithField("wallet", normalized).Info("Created new user")
	return user, nil
}

// GetUserProgress derives the displayed status for quests 1..3: the stored
// status when a row exists, otherwise pending when prerequisites are met,
// otherwise locked. Read-only.
func (s *QuestService) GetUserProgress(walletAddress string) (*UserProgress, error) {
	normalized := strings.ToLower(walletAddress)

	user, err := s.Users.FindByWallet(normalized)
	if err != nil {
		return nil, err
	}

	var completions []models.QuestCompletion
	if user != nil {
		if completions, err = s.Completions.ListByUser(user.ID); err != nil {
			return nil, err
		}
	}

	completed := make(map[int]bool)
	byNumber := make(map[int]*models.QuestCompletion)
	for i := range completions {
		c := &completions[i]
		byNumber[c.QuestNumber] = c
		if c.Status == models.StatusCompleted {
			completed[c.QuestNumber] = true
		}
	}

	progress := &UserProgress{WalletAddress: normalized}
	if user != nil {
		progress.TwitterHandle = user.TwitterHandle
	}

	for _, num := range questNumbers {
		cfg := questConfigs[num]
		entry := QuestProgress{
			Number: num,
			Name:   cfg.Name,
			Slug:   cfg.Slug,
			Type:   cfg.Type,
		}
		if row := byNumber[num]; row != nil {
			entry.Status = row.Status
			entry.CompletedAt = row.CompletedAt
			entry.Metadata = row.Metadata
		} else if prerequisitesMet(cfg, completed) {
			entry.Status = models.StatusPending
		} else {
			entry.Status = models.StatusLocked
		}
		progress.Quests = append(progress.Quests, entry)
	}

	return progress, nil
}

// SubmitQuest runs the full verification pipeline for one submission.
//
// Completed quests are complete-once: a resubmission — even with a
// different, valid proof — returns the originally stored result untouched.
func (s *QuestService) SubmitQuest(ctx context.Context, req SubmitQuestRequest) (*SubmitQuestResult, error) {
	cfg, ok := questConfigs[req.QuestNumber]
	if !ok {
		return nil, NewClientError("Invalid quest number")
	}

	// Authentication runs before any state is read or written.
	sig := s.Signatures.Verify(req.WalletAddress, req.Signature, req.Message, req.Timestamp)
	if !sig.Valid {
		return &SubmitQuestResult{
			QuestNumber: req.QuestNumber,
			Status:      models.StatusFailed,
			Message:     sig.Reason,
		}, nil
	}

	user, err := s.GetOrCreateUser(req.WalletAddress)
	if err != nil {
		return nil, err
	}

	completed, err := s.Completions.CompletedNumbers(user.ID)
	if err != nil {
		return nil, err
	}
	for _, prereq := range cfg.Prerequisites {
		if !completed[prereq] {
			return &SubmitQuestResult{
				QuestNumber: req.QuestNumber,
				Status:      models.StatusFailed,
				Message:     fmt.Sprintf("Must complete Quest %d first", prereq),
			}, nil
		}
	}

	existing, err := s.Completions.FindByUserQuest(user.ID, req.QuestNumber)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.Status == models.StatusCompleted {
		return &SubmitQuestResult{
			Success:            true,
			QuestNumber:        req.QuestNumber,
			Status:             models.StatusCompleted,
			Message:            "Quest already completed",
			VerificationResult: existing.VerificationResult,
		}, nil
	}

	if (cfg.Type == models.QuestAuthorship || cfg.Type == models.QuestEngagement) && req.TweetURL == "" {
		return nil, NewClientError("Tweet URL is required for this quest")
	}

	log := logrus.WithFields(logrus.Fields{
		"wallet": user.WalletAddress,
		"quest":  req.QuestNumber,
	})
	log.Info("Verifying quest submission")

	verifyReq := VerifyRequest{Proof: req.Proof, QuestType: cfg.Type}
	if cfg.Type == models.QuestAuthorship || cfg.Type == models.QuestEngagement {
		verifyReq.ExpectedData = &ExpectedData{
			TweetURL:       req.TweetURL,
			ExpectedAuthor: handleOf(user),
		}
	}

	verdict, err := s.Verifier.Verify(ctx, verifyReq)
	if err != nil {
		// Engine unreachable: no completion row is written, the whole
		// submission is safe to retry.
		return nil, err
	}

	proofHash := utils.HashProof(req.Proof)

	if !verdict.Valid {
		log.WithField("error", verdict.Error).Warn("Proof verification failed")
		message := verdict.Error
		if message == "" {
			message = "Proof verification failed"
		}
		return s.failQuest(user, cfg, existing, proofHash, message)
	}

	interp, failMsg := interpreters[cfg.Type](interpreterInput{
		Verdict:      verdict,
		TweetURL:     req.TweetURL,
		LinkedHandle: handleOf(user),
	})
	if interp == nil {
		log.WithField("reason", failMsg).Warn("Verdict rejected")
		return s.failQuest(user, cfg, existing, proofHash, failMsg)
	}

	// The profile quest is the only path allowed to bind a handle;
	// first-write wins, enforced in the store. A handle held by another
	// user trips the unique index and is a business failure, not a
	// server error.
	if interp.LinkHandle != "" {
		if err := s.Users.SetTwitterHandle(user.ID, interp.LinkHandle); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				log.WithField("handle", interp.LinkHandle).Warn("Handle already bound to another wallet")
				return s.failQuest(user, cfg, existing, proofHash, handleTakenMessage)
			}
			return nil, err
		}
	}

	result, err := s.completeQuest(user, cfg, existing, proofHash, interp)
	if err != nil {
		return nil, err
	}

	if result.Success && s.Archive != nil {
		s.Archive.Enqueue(user.WalletAddress, req.QuestNumber, proofHash, req.Proof)
	}

	log.Info("Quest completed")
	return result, nil
}

// completeQuest upserts the row to completed. When a concurrent submission
// wins the unique (user, quest) insert, the loser reads back the winner's
// row and reports it as already completed.
func (s *QuestService) completeQuest(user *models.User, cfg QuestConfig, existing *models.QuestCompletion, proofHash string, interp *interpretation) (*SubmitQuestResult, error) {
	now := time.Now()

	if existing == nil {
		row := &models.QuestCompletion{
			ID:                 uuid.NewString(),
			UserID:             user.ID,
			QuestNumber:        cfg.Number,
			QuestType:          cfg.Type,
			Status:             models.StatusCompleted,
			ProofHash:          proofHash,
			Metadata:           interp.Metadata,
			VerificationResult: interp.Result,
			CompletedAt:        &now,
		}
		err := s.Completions.Create(row)
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			winner, ferr := s.Completions.FindByUserQuest(user.ID, cfg.Number)
			if ferr != nil {
				return nil, ferr
			}
			if winner != nil && winner.Status == models.StatusCompleted {
				return &SubmitQuestResult{
					Success:            true,
					QuestNumber:        cfg.Number,
					Status:             models.StatusCompleted,
					Message:            "Quest already completed",
					VerificationResult: winner.VerificationResult,
				}, nil
			}
			// The racing row is non-terminal (a concurrent failure);
			// promote it with this submission's outcome.
			existing = winner
			err = nil
		}
		if err != nil {
			return nil, err
		}
		if existing == nil {
			return &SubmitQuestResult{
				Success:            true,
				QuestNumber:        cfg.Number,
				Status:             models.StatusCompleted,
				VerificationResult: interp.Result,
			}, nil
		}
	}

	existing.Status = models.StatusCompleted
	existing.ProofHash = proofHash
	existing.Metadata = interp.Metadata
	existing.VerificationResult = interp.Result
	existing.CompletedAt = &now
	if err := s.Completions.Update(existing); err != nil {
		return nil, err
	}

	return &SubmitQuestResult{
		Success:            true,
		QuestNumber:        cfg.Number,
		Status:             models.StatusCompleted,
		VerificationResult: interp.Result,
	}, nil
}

// failQuest records a failed attempt (no metadata) and returns the business
// failure. A concurrently completed row is never downgraded.
func (s *QuestService) failQuest(user *models.User, cfg QuestConfig, existing *models.QuestCompletion, proofHash, message string) (*SubmitQuestResult, error) {
	if existing == nil {
		row := &models.QuestCompletion{
			ID:          uuid.NewString(),
			UserID:      user.ID,
			QuestNumber: cfg.Number,
			QuestType:   cfg.Type,
			Status:      models.StatusFailed,
			ProofHash:   proofHash,
		}
		err := s.Completions.Create(row)
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			existing, err = s.Completions.FindByUserQuest(user.ID, cfg.Number)
		}
		if err != nil {
			return nil, err
		}
	}
	if existing != nil && existing.Status != models.StatusCompleted {
		existing.Status = models.StatusFailed
		existing.ProofHash = proofHash
		if err := s.Completions.Update(existing); err != nil {
			return nil, err
		}
	}

	return &SubmitQuestResult{
		QuestNumber: cfg.Number,
		Status:      models.StatusFailed,
		Message:     message,
	}, nil
}

func prerequisitesMet(cfg QuestConfig, completed map[int]bool) bool {
	for _, p := range cfg.Prerequisites {
		if !completed[p] {
			return false
		}
	}
	return true
}

func handleOf(user *models.User) string {
	if user.TwitterHandle == nil {
		return ""
	}
	return *user.TwitterHandle
}
