package models

import (
	"time"
)

// LinkRecord binds one wallet to one Twitter handle, bidirectionally unique.
// Written once per successful linking event and immutable afterwards; the
// unique indexes are the source of truth under concurrent submissions.
type LinkRecord struct {
	ID            string    `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	WalletAddress string    `gorm:"uniqueIndex;not null" json:"walletAddress"`
	TwitterHandle string    `gorm:"uniqueIndex;not null" json:"twitterHandle"`
	ProofHash     string    `gorm:"not null" json:"proofHash"`
	VerifiedAt    time.Time `json:"verifiedAt"`

	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
}

func (LinkRecord) TableName() string {
	return "links"
}
