package services

import (
	"github.com/gosimple/slug"

	"quest-verify-system/models"
)

// QuestConfig is the static definition of one quest: its display name, the
// proof type the verifier must check, and which quests must be completed
// first.
type QuestConfig struct {
	Number        int
	Type          models.QuestType
	Name          string
	Slug          string
	Prerequisites []int
}

var questConfigs = map[int]QuestConfig{
	1: {
		Number: 1,
		Type:   models.QuestProfile,
		Name:   "Verify Twitter Profile",
		Slug:   slug.Make("Verify Twitter Profile"),
	},
	2: {
		Number:        2,
		Type:          models.QuestAuthorship,
		Name:          "Verify Tweet Authorship",
		Slug:          slug.Make("Verify Tweet Authorship"),
		Prerequisites: []int{1},
	},
	3: {
		Number:        3,
		Type:          models.QuestEngagement,
		Name:          "Verify Like & Retweet",
		Slug:          slug.Make("Verify Like & Retweet"),
		Prerequisites: []int{1},
	},
}

// questNumbers is the display order for the progress endpoint.
var questNumbers = []int{1, 2, 3}
