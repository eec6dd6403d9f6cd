package services

import (
	"fmt"
	"strings"

	"quest-verify-system/models"
)

// interpretation is a successfully interpreted verdict: the metadata to
// persist on the completion row, the result returned to the caller, and —
// for the profile quest only — the handle to bind to the user.
type interpretation struct {
	Metadata models.JSONMap
	Result   models.JSONMap

	// LinkHandle is non-empty only for the profile quest; the orchestrator
	// applies it to the user (first-write wins).
	LinkHandle string
}

type interpreterInput struct {
	Verdict *VerifierResponse
	// TweetURL is the submitted reference locator (authorship/engagement).
	TweetURL string
	// LinkedHandle is the user's currently-linked handle, if any.
	LinkedHandle string
}

// verdictInterpreter turns an engine verdict into durable state. A non-empty
// failure message means the proof passed cryptographic validation but did not
// support the quest's claim.
type verdictInterpreter func(in interpreterInput) (*interpretation, string)

var interpreters = map[models.QuestType]verdictInterpreter{
	models.QuestProfile:    interpretProfile,
	models.QuestAuthorship: interpretAuthorship,
	models.QuestEngagement: interpretEngagement,
}

func interpretProfile(in interpreterInput) (*interpretation, string) {
	handle := in.Verdict.TwitterHandle
	if handle == "" {
		return nil, "Could not extract Twitter handle"
	}
	return &interpretation{
		Result:     models.JSONMap{"twitterHandle": handle},
		LinkHandle: handle,
	}, ""
}

func interpretAuthorship(in interpreterInput) (*interpretation, string) {
	author := in.Verdict.AuthorScreenName
	if author == "" || !strings.EqualFold(author, in.LinkedHandle) {
		return nil, fmt.Sprintf("Tweet was not authored by @%s", in.LinkedHandle)
	}
	return &interpretation{
		Metadata: models.JSONMap{
			"tweetId":      in.Verdict.TweetID,
			"tweetUrl":     in.TweetURL,
			"tweetText":    in.Verdict.TweetText,
			"authorHandle": author,
		},
		Result: models.JSONMap{
			"tweetId":        in.Verdict.TweetID,
			"authorVerified": true,
		},
	}, ""
}

func interpretEngagement(in interpreterInput) (*interpretation, string) {
	var missing []string
	if !in.Verdict.LikeVerified {
		missing = append(missing, "like")
	}
	if !in.Verdict.RetweetVerified {
		missing = append(missing, "retweet")
	}
	if len(missing) > 0 {
		return nil, "Missing engagement: " + strings.Join(missing, ", ")
	}
	return &interpretation{
		Metadata: models.JSONMap{
			"tweetId":         in.Verdict.TweetID,
			"tweetUrl":        in.TweetURL,
			"likeVerified":    true,
			"retweetVerified": true,
		},
		Result: models.JSONMap{
			"tweetId":         in.Verdict.TweetID,
			"likeVerified":    true,
			"retweetVerified": true,
		},
	}, ""
}
