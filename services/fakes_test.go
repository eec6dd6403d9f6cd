package services

import (
	"context"
	"encoding/json"

	"quest-verify-system/models"

	"gorm.io/gorm"
)

type fakeUserStore struct {
	users   map[string]*models.User
	creates int
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]*models.User)}
}

func (f *fakeUserStore) FindByWallet(wallet string) (*models.User, error) {
	if u, ok := f.users[wallet]; ok {
		return u, nil
	}
	return nil, nil
}

func (f *fakeUserStore) Create(u *models.User) error {
	if _, ok := f.users[u.WalletAddress]; ok {
		return gorm.ErrDuplicatedKey
	}
	f.creates++
	f.users[u.WalletAddress] = u
	return nil
}

func (f *fakeUserStore) SetTwitterHandle(userID, handle string) error {
	for _, u := range f.users {
		if u.ID != userID && u.TwitterHandle != nil && *u.TwitterHandle == handle {
			return gorm.ErrDuplicatedKey
		}
	}
	for _, u := range f.users {
		if u.ID == userID && u.TwitterHandle == nil {
			h := handle
			u.TwitterHandle = &h
		}
	}
	return nil
}

type fakeCompletionStore struct {
	rows []*models.QuestCompletion
}

func (f *fakeCompletionStore) FindByUserQuest(userID string, questNumber int) (*models.QuestCompletion, error) {
	for _, r := range f.rows {
		if r.UserID == userID && r.QuestNumber == questNumber {
			return r, nil
		}
	}
	return nil, nil
}

func (f *fakeCompletionStore) ListByUser(userID string) ([]models.QuestCompletion, error) {
	var out []models.QuestCompletion
	for _, r := range f.rows {
		if r.UserID == userID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeCompletionStore) CompletedNumbers(userID string) (map[int]bool, error) {
	out := make(map[int]bool)
	for _, r := range f.rows {
		if r.UserID == userID && r.Status == models.StatusCompleted {
			out[r.QuestNumber] = true
		}
	}
	return out, nil
}

func (f *fakeCompletionStore) Create(c *models.QuestCompletion) error {
	if existing, _ := f.FindByUserQuest(c.UserID, c.QuestNumber); existing != nil {
		return gorm.ErrDuplicatedKey
	}
	f.rows = append(f.rows, c)
	return nil
}

func (f *fakeCompletionStore) Update(c *models.QuestCompletion) error {
	for i, r := range f.rows {
		if r.ID == c.ID {
			f.rows[i] = c
		}
	}
	return nil
}

// racingCompletionStore simulates losing the unique (user, quest) insert
// race: the first Create fails with a duplicate-key error while installing
// the concurrent winner's row, which subsequent reads then observe.
type racingCompletionStore struct {
	fakeCompletionStore
	winner *models.QuestCompletion
	raced  bool
}

func (f *racingCompletionStore) Create(c *models.QuestCompletion) error {
	if !f.raced {
		f.raced = true
		// Same (user, quest) pair as the attempted insert.
		f.winner.UserID = c.UserID
		f.rows = append(f.rows, f.winner)
		return gorm.ErrDuplicatedKey
	}
	return f.fakeCompletionStore.Create(c)
}

type fakeLinkStore struct {
	records []*models.LinkRecord

	// hideHandle makes FindByHandle blind, forcing the duplicate-key
	// path on Create (simulates losing a check-then-act race).
	hideHandle bool
}

func (f *fakeLinkStore) FindByWallet(wallet string) (*models.LinkRecord, error) {
	for _, r := range f.records {
		if r.WalletAddress == wallet {
			return r, nil
		}
	}
	return nil, nil
}

func (f *fakeLinkStore) FindByHandle(handle string) (*models.LinkRecord, error) {
	if f.hideHandle {
		return nil, nil
	}
	for _, r := range f.records {
		if r.TwitterHandle == handle {
			return r, nil
		}
	}
	return nil, nil
}

func (f *fakeLinkStore) Create(l *models.LinkRecord) error {
	for _, r := range f.records {
		if r.WalletAddress == l.WalletAddress || r.TwitterHandle == l.TwitterHandle {
			return gorm.ErrDuplicatedKey
		}
	}
	f.records = append(f.records, l)
	return nil
}

func (f *fakeLinkStore) List() ([]models.LinkRecord, error) {
	out := make([]models.LinkRecord, 0, len(f.records))
	for _, r := range f.records {
		out = append(out, *r)
	}
	return out, nil
}

type fakeVerifier struct {
	resp    *VerifierResponse
	err     error
	calls   int
	lastReq VerifyRequest
}

func (f *fakeVerifier) Verify(ctx context.Context, req VerifyRequest) (*VerifierResponse, error) {
	f.calls++
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

type fakeSignatures struct {
	valid  bool
	reason string
}

func (f *fakeSignatures) Verify(walletAddress, signature, message string, timestamp int64) SignatureResult {
	return SignatureResult{Valid: f.valid, Reason: f.reason}
}

type fakeArchive struct {
	keys []string
}

func (f *fakeArchive) Enqueue(walletAddress string, questNumber int, proofHash string, proof json.RawMessage) {
	f.keys = append(f.keys, proofHash)
}
