package services

import (
	"time"

	"quest-verify-system/models"

	"github.com/go-co-op/gocron/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// StartRegistryAudit runs an hourly read-only consistency sweep: registry
// counts, plus any user whose quest-linked handle diverges from the link
// registry for the same wallet.
func StartRegistryAudit(db *gorm.DB) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		logrus.WithError(err).Error("Failed to create audit scheduler")
		return
	}
	sched.Start()

	_, err = sched.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(func() {
			var users, links, completions int64
			if err := db.Model(&models.User{}).Count(&users).Error; err != nil {
				logrus.WithError(err).Error("[Audit] DB error counting users")
				return
			}
			db.Model(&models.LinkRecord{}).Count(&links)
			db.Model(&models.QuestCompletion{}).
				Where("status = ?", models.StatusCompleted).
				Count(&completions)

			logrus.WithFields(logrus.Fields{
				"users":       users,
				"links":       links,
				"completions": completions,
			}).Info("[Audit] Registry snapshot")

			var diverged []struct {
				WalletAddress string
				UserHandle    string
				LinkHandle    string
			}
			err := db.Raw(`
				SELECT u.wallet_address, u.twitter_handle AS user_handle, l.twitter_handle AS link_handle
				FROM users u
				INNER JOIN links l ON l.wallet_address = u.wallet_address
				WHERE u.twitter_handle IS NOT NULL
				  AND LOWER(u.twitter_handle) <> LOWER(l.twitter_handle)
			`).Scan(&diverged).Error
			if err != nil {
				logrus.WithError(err).Error("[Audit] DB error checking handle divergence")
				return
			}
			for _, row := range diverged {
				logrus.WithFields(logrus.Fields{
					"wallet":      row.WalletAddress,
					"user_handle": row.UserHandle,
					"link_handle": row.LinkHandle,
				}).Warn("[Audit] Handle diverges between users and links")
			}
		}),
	)
	if err != nil {
		logrus.WithError(err).Error("Failed to schedule registry audit")
	}
}
