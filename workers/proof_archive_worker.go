package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"quest-verify-system/utils"

	"github.com/sirupsen/logrus"
)

type archiveJob struct {
	WalletAddress string
	QuestNumber   int
	ProofHash     string
	Proof         json.RawMessage
}

// ProofArchiver ships audit copies of verified proofs to R2 off the request
// path. Enqueue never blocks; when the buffer is full the copy is dropped
// with a warning — archival is observational, not trust-bearing.
type ProofArchiver struct {
	jobs chan archiveJob
}

func NewProofArchiver(buffer int) *ProofArchiver {
	if buffer <= 0 {
		buffer = 64
	}
	return &ProofArchiver{jobs: make(chan archiveJob, buffer)}
}

func (a *ProofArchiver) Enqueue(walletAddress string, questNumber int, proofHash string, proof json.RawMessage) {
	job := archiveJob{
		WalletAddress: walletAddress,
		QuestNumber:   questNumber,
		ProofHash:     proofHash,
		Proof:         proof,
	}
	select {
	case a.jobs <- job:
	default:
		logrus.WithFields(logrus.Fields{
			"wallet": walletAddress,
			"quest":  questNumber,
		}).Warn("Proof archive queue full, dropping copy")
	}
}

// Run consumes the queue until ctx is cancelled.
func (a *ProofArchiver) Run(ctx context.Context) {
	logrus.Info("Proof archiver started")
	for {
		select {
		case <-ctx.Done():
			logrus.Info("Proof archiver stopped")
			return
		case job := <-a.jobs:
			key := fmt.Sprintf("proofs/%s/quest-%d-%s.json", job.WalletAddress, job.QuestNumber, job.ProofHash)

			uploadCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
			err := utils.UploadProofArchive(uploadCtx, key, job.Proof)
			cancel()

			if err != nil {
				logrus.WithError(err).WithField("key", key).Warn("Failed to archive proof")
				continue
			}
			logrus.WithField("key", key).Debug("Archived proof")
		}
	}
}
