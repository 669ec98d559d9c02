package xp

import (
	"math"

	"github.com/pizzanight/server/auth"
	"github.com/pizzanight/server/models"
)

// Point weights of the progress composition.
const (
	weightRegular = 1.0
	weightBonus   = 8.5
	weightLike    = 2.5
	weightComment = 2.5
)

const (
	pointsPerLevel = 100
	maxLevel       = 5
)

// Stats is the derived gamification state for one user.
type Stats struct {
	Level              int     `json:"level"`
	Progress           float64 `json:"progress"`
	TotalDisplayPoints float64 `json:"totalDisplayPoints"`
	LikesGiven         int     `json:"likesGiven"`
	CommentsGiven      int     `json:"commentsGiven"`
}

// Derive recomputes a user's level and XP from the current document plus
// the user's persisted high-water marks. Scores can be revised downward
// after the fact; the level must never decrease because of that, so the
// derivation updates MaxRegularPoints/MaxBonusPoints to max(stored, live)
// and always levels from the marks, never from the instantaneous sums.
//
// The function is idempotent: repeated calls with the same document and
// marks yield the same result, so it is safe to run on every render.
func Derive(u *models.UserAccount, entries []models.Entry, social models.SocialData, ownerMap map[string]string) Stats {
	var regular, bonus float64
	for i := range entries {
		e := &entries[i]
		if !auth.SameNickname(ownerMap[e.ID], u.Nickname) {
			continue
		}
		regular += e.SumScores(models.CategorySavory) + e.SumScores(models.CategorySweet)
		for _, b := range e.SavoryBonus {
			bonus += float64(b)
		}
		for _, b := range e.SweetBonus {
			bonus += float64(b)
		}
	}

	if regular > u.MaxRegularPoints {
		u.MaxRegularPoints = regular
	}
	if bonus > u.MaxBonusPoints {
		u.MaxBonusPoints = bonus
	}

	likes := LikesGiven(u.Nickname, social)
	comments := CommentsGiven(u.Nickname, social)

	progress := u.MaxRegularPoints*weightRegular +
		u.MaxBonusPoints*weightBonus +
		float64(likes)*weightLike +
		float64(comments)*weightComment
	progress -= u.XPOffset
	if progress < 0 {
		progress = 0
	}

	level := int(progress)/pointsPerLevel + 1
	within := math.Mod(progress, pointsPerLevel)
	if level >= maxLevel {
		level = maxLevel
		within = pointsPerLevel // filled bar at the cap
	}

	total := u.MaxRegularPoints + u.MaxBonusPoints +
		float64(likes) + float64(comments) - u.PointsOffset
	if total < 0 {
		total = 0
	}

	return Stats{
		Level:              level,
		Progress:           within,
		TotalDisplayPoints: total,
		LikesGiven:         likes,
		CommentsGiven:      comments,
	}
}

// ZeroingOffsets returns the XPOffset and PointsOffset that rebase the
// user's derivation to zero given the current marks and social state. An
// XP reset writes these offsets instead of deleting history, so the
// high-water marks stay intact and later activity resumes from level 1.
func ZeroingOffsets(u models.UserAccount, social models.SocialData) (xpOffset, pointsOffset float64) {
	likes := float64(LikesGiven(u.Nickname, social))
	comments := float64(CommentsGiven(u.Nickname, social))
	xpOffset = u.MaxRegularPoints*weightRegular +
		u.MaxBonusPoints*weightBonus +
		likes*weightLike +
		comments*weightComment
	pointsOffset = u.MaxRegularPoints + u.MaxBonusPoints + likes + comments
	return xpOffset, pointsOffset
}

// LikesGiven counts every reaction the user currently holds: likes on
// media items plus reactions on comments and replies, summed flatly.
// Toggling a like off and on nets to the same count; this is an accepted
// approximation of lifetime likes, not a true counter.
func LikesGiven(nickname string, social models.SocialData) int {
	count := 0
	for _, byUser := range social.Likes {
		for user := range byUser {
			if auth.SameNickname(user, nickname) {
				count++
			}
		}
	}
	for _, list := range social.Comments {
		for i := range list {
			for user := range list[i].Reactions {
				if auth.SameNickname(user, nickname) {
					count++
				}
			}
			for j := range list[i].Replies {
				for user := range list[i].Replies[j].Reactions {
					if auth.SameNickname(user, nickname) {
						count++
					}
				}
			}
		}
	}
	return count
}

// CommentsGiven counts the distinct media items on which the user
// authored at least one comment or reply. Five comments on one item count
// once; one comment each on five items counts five times. The cap is the
// anti-farming rule.
func CommentsGiven(nickname string, social models.SocialData) int {
	count := 0
	for _, list := range social.Comments {
		commented := false
		for i := range list {
			if auth.SameNickname(list[i].User, nickname) {
				commented = true
				break
			}
			for j := range list[i].Replies {
				if auth.SameNickname(list[i].Replies[j].User, nickname) {
					commented = true
					break
				}
			}
			if commented {
				break
			}
		}
		if commented {
			count++
		}
	}
	return count
}
