package models

import (
	"time"
)

// User is the wallet-anchored identity. WalletAddress is always stored
// lower-cased; TwitterHandle is set exactly once, by a successful profile
// quest, and is unique across users (multiple NULLs allowed by Postgres).
type User struct {
	ID            string  `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	WalletAddress string  `gorm:"uniqueIndex;not null" json:"walletAddress"`
	TwitterHandle *string `gorm:"uniqueIndex" json:"twitterHandle,omitempty"`

	QuestCompletions []QuestCompletion `gorm:"foreignKey:UserID" json:"-"`

	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}
