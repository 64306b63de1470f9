package notifications

import (
	"context"
	"fmt"
	"strconv"

	"github.com/open-builders/todo-backend/internal/common/logger"
	projectmodels "github.com/open-builders/todo-backend/internal/features/project/models"
	usermodels "github.com/open-builders/todo-backend/internal/features/user/models"
)

type ProjectFinder interface {
	FindByID(ctx context.Context, id int64) (*projectmodels.Project, error)
}

type UserFinder interface {
	FindByID(ctx context.Context, id int64) (*usermodels.User, error)
}

// Notifier delivers a text message to a Telegram chat.
type Notifier interface {
	Notify(ctx context.Context, chatID int64, text string) error
}

// Service tells project owners about membership changes through the bot.
type Service struct {
	projects ProjectFinder
	users    UserFinder
	bot      Notifier
}

func NewService(projects ProjectFinder, users UserFinder, bot Notifier) *Service {
	return &Service{projects: projects, users: users, bot: bot}
}

// MemberJoined sends the owner of projectID a DM naming the new member.
// Owners without a Telegram account are skipped.
func (s *Service) MemberJoined(ctx context.Context, projectID, memberID int64) error {
	project, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		return fmt.Errorf("load project %d: %w", projectID, err)
	}
	if project == nil {
		// Deleted before the event was processed.
		return nil
	}

	owner, err := s.users.FindByID(ctx, project.OwnerID)
	if err != nil {
		return fmt.Errorf("load owner %d: %w", project.OwnerID, err)
	}
	if owner == nil || owner.TelegramID == nil {
		return nil
	}
	chatID, err := strconv.ParseInt(*owner.TelegramID, 10, 64)
	if err != nil {
		return fmt.Errorf("owner %d telegram id: %w", owner.ID, err)
	}

	member, err := s.users.FindByID(ctx, memberID)
	if err != nil {
		return fmt.Errorf("load member %d: %w", memberID, err)
	}

	text := fmt.Sprintf("%s joined \"%s\"", displayName(member), project.Name)
	if err := s.bot.Notify(ctx, chatID, text); err != nil {
		return err
	}
	logger.Debug().Int64("project_id", projectID).Int64("member_id", memberID).Msg("Owner notified about new member")
	return nil
}

func displayName(u *usermodels.User) string {
	switch {
	case u == nil:
		return "Someone"
	case u.Username != "":
		return "@" + u.Username
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	default:
		return "Someone"
	}
}
