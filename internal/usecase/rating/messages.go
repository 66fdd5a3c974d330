package rating

import (
	"errors"
	"fmt"

	"reaction-rating-bot/internal/domain"
)

// UserMessage переводит ошибку построения отчёта в текст для пользователя.
func UserMessage(err error, maxBatches int) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, domain.ErrInvalidParameter):
		return fmt.Sprintf("Invalid input for number of messages (blocks) to update. (must be between 1 and %d)", maxBatches)
	case errors.Is(err, domain.ErrNoMessagesFetched):
		return "No messages found in this channel."
	case errors.Is(err, domain.ErrNoEligibleMessages):
		return "No messages with reactions found in the fetched history."
	case errors.Is(err, domain.ErrNoRatingsFound):
		return fmt.Sprintf("No scores have been given in this channel yet.\nTry rating some posts using the %s emojis as reactions.", ratingHint())
	case errors.Is(err, domain.ErrFetchFailed):
		return "Failed to get new messages."
	case errors.Is(err, domain.ErrCacheReadFailed):
		return "Failed to read the rating cache."
	case errors.Is(err, domain.ErrCacheWriteFailed):
		return "Failed to update the rating cache."
	default:
		return "Something went wrong while building the rating report."
	}
}
