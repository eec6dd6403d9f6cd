package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// Signatures are accepted within a 5-minute window to block replays.
const signatureValidity = 5 * time.Minute

type SignatureResult struct {
	Valid  bool
	Reason string
}

// SignatureService validates EIP-191 personal_sign signatures. It is pure:
// no I/O, no state, and it must run before anything is read or written for
// a submission.
type SignatureService struct{}

func NewSignatureService() *SignatureService {
	return &SignatureService{}
}

// ExpectedMessage builds the exact template a wallet must have signed.
func ExpectedMessage(walletAddress string, timestamp int64) string {
	return fmt.Sprintf("LupoVerify Quest Submission\nWallet: %s\nTimestamp: %d",
		strings.ToLower(walletAddress), timestamp)
}

// Verify checks freshness, the message template, and signature recovery.
// Any decode or recovery error yields an invalid result, never a panic or
// an error return.
func (s *SignatureService) Verify(walletAddress, signature, message string, timestamp int64) SignatureResult {
	now := time.Now().UnixMilli()
	drift := now - timestamp
	if drift < 0 {
		drift = -drift
	}
	if drift > signatureValidity.Milliseconds() {
		return SignatureResult{Reason: "Signature expired. Please try again."}
	}

	if message != ExpectedMessage(walletAddress, timestamp) {
		return SignatureResult{Reason: "Invalid message format"}
	}

	sig, err := hexutil.Decode(signature)
	if err != nil || len(sig) != crypto.SignatureLength {
		return SignatureResult{Reason: "Signature verification failed"}
	}
	// personal_sign emits V as 27/28; recovery wants 0/1.
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig[crypto.RecoveryIDOffset] -= 27
	}

	pub, err := crypto.SigToPub(accounts.TextHash([]byte(message)), sig)
	if err != nil {
		return SignatureResult{Reason: "Signature verification failed"}
	}

	recovered := crypto.PubkeyToAddress(*pub)
	if !strings.EqualFold(recovered.Hex(), walletAddress) {
		return SignatureResult{Reason: "Invalid signature"}
	}

	return SignatureResult{Valid: true}
}
