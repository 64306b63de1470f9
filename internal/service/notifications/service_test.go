package notifications

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	projectmodels "github.com/open-builders/todo-backend/internal/features/project/models"
	usermodels "github.com/open-builders/todo-backend/internal/features/user/models"
	"github.com/open-builders/todo-backend/internal/platform/memory"
)

type message struct {
	chatID int64
	text   string
}

type fakeNotifier struct {
	sent []message
	err  error
}

func (f *fakeNotifier) Notify(_ context.Context, chatID int64, text string) error {
	f.sent = append(f.sent, message{chatID, text})
	return f.err
}

func setup(t *testing.T) (*memory.Store, *projectmodels.Project, *usermodels.User) {
	t.Helper()
	store := memory.New()
	ctx := context.Background()

	owner, err := store.Users().UpsertByTelegramID(ctx, "9007199254740993", usermodels.Profile{Username: "alice"})
	require.NoError(t, err)
	member, err := store.Users().UpsertByTelegramID(ctx, "222", usermodels.Profile{FirstName: "Bob", LastName: "Stone"})
	require.NoError(t, err)

	p := &projectmodels.Project{Name: "Groceries", OwnerID: owner.ID}
	require.NoError(t, store.Projects().Create(ctx, p))
	return store, p, member
}

func TestMemberJoined(t *testing.T) {
	store, project, member := setup(t)
	bot := &fakeNotifier{}
	svc := NewService(store.Projects(), store.Users(), bot)

	require.NoError(t, svc.MemberJoined(context.Background(), project.ID, member.ID))

	require.Len(t, bot.sent, 1)
	assert.Equal(t, int64(9007199254740993), bot.sent[0].chatID)
	assert.Equal(t, `Bob Stone joined "Groceries"`, bot.sent[0].text)
}

func TestMemberJoined_DeletedProject(t *testing.T) {
	store, _, member := setup(t)
	bot := &fakeNotifier{}
	svc := NewService(store.Projects(), store.Users(), bot)

	require.NoError(t, svc.MemberJoined(context.Background(), 999, member.ID))
	assert.Empty(t, bot.sent)
}

func TestMemberJoined_OwnerWithoutTelegram(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	owner, err := store.Users().CreateWithEmail(ctx, "alice@example.com", "hash", usermodels.Profile{})
	require.NoError(t, err)
	p := &projectmodels.Project{Name: "Work", OwnerID: owner.ID}
	require.NoError(t, store.Projects().Create(ctx, p))

	bot := &fakeNotifier{}
	require.NoError(t, NewService(store.Projects(), store.Users(), bot).MemberJoined(ctx, p.ID, owner.ID))
	assert.Empty(t, bot.sent)
}

func TestMemberJoined_SendError(t *testing.T) {
	store, project, member := setup(t)
	svc := NewService(store.Projects(), store.Users(), &fakeNotifier{err: errors.New("bot blocked")})

	err := svc.MemberJoined(context.Background(), project.ID, member.ID)
	assert.ErrorContains(t, err, "bot blocked")
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "@bob", displayName(&usermodels.User{Username: "bob", FirstName: "Bob"}))
	assert.Equal(t, "Bob", displayName(&usermodels.User{FirstName: "Bob"}))
	assert.Equal(t, "Someone", displayName(&usermodels.User{}))
	assert.Equal(t, "Someone", displayName(nil))
}
