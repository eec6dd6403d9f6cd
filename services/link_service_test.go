package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"quest-verify-system/models"

	"github.com/stretchr/testify/require"
)

var testProof = json.RawMessage(`{"version":"1.0","data":"cafe"}`)

func TestSubmitAndVerifyInvalidAddress(t *testing.T) {
	svc := NewLinkService(&fakeLinkStore{}, &fakeVerifier{})

	for _, wallet := range []string{"", "abc", "0x123", "0xZZZZ000000000000000000000000000000000001"} {
		_, err := svc.SubmitAndVerify(context.Background(), wallet, testProof)
		var clientErr *ClientError
		require.ErrorAs(t, err, &clientErr)
	}
}

func TestSubmitAndVerifyAlreadyLinkedWallet(t *testing.T) {
	store := &fakeLinkStore{records: []*models.LinkRecord{{
		ID:            "link-1",
		WalletAddress: "0xabcd000000000000000000000000000000000001",
		TwitterHandle: "alice",
		VerifiedAt:    time.Now(),
	}}}
	verifier := &fakeVerifier{}
	svc := NewLinkService(store, verifier)

	res, err := svc.SubmitAndVerify(context.Background(), "0xAbCd000000000000000000000000000000000001", testProof)
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Equal(t, "alice", res.Handle)
	require.Equal(t, "link-1", res.VerificationID)
	require.Equal(t, "Already verified", res.Message)
	// Idempotent read path: the engine is never consulted.
	require.Zero(t, verifier.calls)
}

func TestSubmitAndVerifySuccess(t *testing.T) {
	store := &fakeLinkStore{}
	verifier := &fakeVerifier{resp: &VerifierResponse{Valid: true, TwitterHandle: "alice"}}
	svc := NewLinkService(store, verifier)

	res, err := svc.SubmitAndVerify(context.Background(), "0xAbCd000000000000000000000000000000000001", testProof)
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Equal(t, "alice", res.Handle)
	require.NotEmpty(t, res.VerificationID)

	record, _ := store.FindByWallet("0xabcd000000000000000000000000000000000001")
	require.NotNil(t, record)
	require.Equal(t, "alice", record.TwitterHandle)
	require.NotEmpty(t, record.ProofHash)
}

func TestSubmitAndVerifyHandleTaken(t *testing.T) {
	store := &fakeLinkStore{records: []*models.LinkRecord{{
		ID:            "link-1",
		WalletAddress: "0xaaaa000000000000000000000000000000000001",
		TwitterHandle: "alice",
	}}}
	verifier := &fakeVerifier{resp: &VerifierResponse{Valid: true, TwitterHandle: "alice"}}
	svc := NewLinkService(store, verifier)

	res, err := svc.SubmitAndVerify(context.Background(), "0xBbBb000000000000000000000000000000000002", testProof)
	require.NoError(t, err)
	require.False(t, res.Success)
	require.Equal(t, handleTakenMessage, res.Message)
	require.Len(t, store.records, 1)
}

func TestSubmitAndVerifyHandleRaceResolvedByConstraint(t *testing.T) {
	// The pre-insert handle check sees nothing; the unique index rejects
	// the insert and the violation is read as the business outcome.
	store := &fakeLinkStore{
		hideHandle: true,
		records: []*models.LinkRecord{{
			ID:            "link-1",
			WalletAddress: "0xaaaa000000000000000000000000000000000001",
			TwitterHandle: "alice",
		}},
	}
	verifier := &fakeVerifier{resp: &VerifierResponse{Valid: true, TwitterHandle: "alice"}}
	svc := NewLinkService(store, verifier)

	res, err := svc.SubmitAndVerify(context.Background(), "0xBbBb000000000000000000000000000000000002", testProof)
	require.NoError(t, err)
	require.False(t, res.Success)
	require.Equal(t, handleTakenMessage, res.Message)
}

func TestSubmitAndVerifyProofRejected(t *testing.T) {
	store := &fakeLinkStore{}
	verifier := &fakeVerifier{resp: &VerifierResponse{Valid: false, Error: "Invalid proof format"}}
	svc := NewLinkService(store, verifier)

	res, err := svc.SubmitAndVerify(context.Background(), "0xAbCd000000000000000000000000000000000001", testProof)
	require.NoError(t, err)
	require.False(t, res.Success)
	require.Equal(t, "Invalid proof format", res.Message)
	require.Empty(t, store.records)
}

func TestSubmitAndVerifyMissingHandleInVerdict(t *testing.T) {
	svc := NewLinkService(&fakeLinkStore{}, &fakeVerifier{resp: &VerifierResponse{Valid: true}})

	res, err := svc.SubmitAndVerify(context.Background(), "0xAbCd000000000000000000000000000000000001", testProof)
	require.NoError(t, err)
	require.False(t, res.Success)
	require.Equal(t, "Could not extract Twitter handle from proof", res.Message)
}

func TestSaveLinkManualPath(t *testing.T) {
	store := &fakeLinkStore{}
	verifier := &fakeVerifier{}
	svc := NewLinkService(store, verifier)

	res, err := svc.SaveLink("0xAbCd000000000000000000000000000000000001", "alice", "session-123")
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Equal(t, "alice", res.Handle)
	// Operator path bypasses the engine entirely.
	require.Zero(t, verifier.calls)

	record, _ := store.FindByWallet("0xabcd000000000000000000000000000000000001")
	require.NotNil(t, record)
	require.NotEmpty(t, record.ProofHash)

	// Same uniqueness rules as the verified path.
	res, err = svc.SaveLink("0xBbBb000000000000000000000000000000000002", "alice", "session-456")
	require.NoError(t, err)
	require.False(t, res.Success)
	require.Equal(t, handleTakenMessage, res.Message)
}

func TestSaveLinkMissingFields(t *testing.T) {
	svc := NewLinkService(&fakeLinkStore{}, &fakeVerifier{})

	_, err := svc.SaveLink("0xAbCd000000000000000000000000000000000001", "", "session-123")
	var clientErr *ClientError
	require.ErrorAs(t, err, &clientErr)

	_, err = svc.SaveLink("0xAbCd000000000000000000000000000000000001", "alice", "")
	require.ErrorAs(t, err, &clientErr)
}

func TestCheckAndList(t *testing.T) {
	store := &fakeLinkStore{}
	svc := NewLinkService(store, &fakeVerifier{})

	_, err := svc.Check("0xAbCd000000000000000000000000000000000001")
	require.ErrorIs(t, err, ErrNotFound)

	verifiedAt := time.Now()
	store.records = append(store.records, &models.LinkRecord{
		ID:            "link-1",
		WalletAddress: "0xabcd000000000000000000000000000000000001",
		TwitterHandle: "alice",
		VerifiedAt:    verifiedAt,
	})

	status, err := svc.Check("0xAbCd000000000000000000000000000000000001")
	require.NoError(t, err)
	require.True(t, status.Verified)
	require.Equal(t, "alice", status.TwitterHandle)

	list, err := svc.List()
	require.NoError(t, err)
	require.Equal(t, 1, list.Count)
	require.Equal(t, "alice", list.Verifications[0].TwitterHandle)
}
