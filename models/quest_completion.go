package models

import (
	"time"
)

type QuestStatus string

const (
	StatusPending    QuestStatus = "pending"
	StatusInProgress QuestStatus = "in_progress"
	StatusCompleted  QuestStatus = "completed"
	StatusFailed     QuestStatus = "failed"

	// StatusLocked is derived for quests without a stored row whose
	// prerequisites are unmet; it is never persisted.
	StatusLocked QuestStatus = "locked"
)

type QuestType string

const (
	QuestProfile    QuestType = "profile"
	QuestAuthorship QuestType = "authorship"
	QuestEngagement QuestType = "engagement"
)

// QuestCompletion holds one row per (user, quest number). Rows are created
// lazily on the first submission attempt and only ever updated afterwards —
// `completed` is terminal, `failed` allows resubmission.
type QuestCompletion struct {
	ID          string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	UserID      string `gorm:"not null;index;uniqueIndex:idx_user_quest" json:"userId"`
	QuestNumber int    `gorm:"not null;uniqueIndex:idx_user_quest" json:"questNumber"`

	QuestType QuestType   `gorm:"not null" json:"questType"`
	Status    QuestStatus `gorm:"default:'pending'" json:"status"`

	// ProofHash is a sha256 over the canonical proof JSON, kept for
	// audit/dedup only — never used for trust decisions.
	ProofHash          string     `json:"proofHash,omitempty"`
	Metadata           JSONMap    `gorm:"type:jsonb" json:"metadata,omitempty"`
	VerificationResult JSONMap    `gorm:"type:jsonb" json:"verificationResult,omitempty"`
	CompletedAt        *time.Time `json:"completedAt,omitempty"`

	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}

func (QuestCompletion) TableName() string {
	return "quest_completions"
}
