package state

import (
	"context"
	"sync"

	"github.com/MrJorjinio/simpchat-client/internal/api"
	"github.com/MrJorjinio/simpchat-client/internal/model"
)

// fakeTransport implements ChatTransport, MessageLoader and PermissionLoader
// for tests.
type fakeTransport struct {
	mu         sync.Mutex
	chats      []model.ChatSummary
	chatByID   map[string]*api.ChatWithMessages
	perms      map[string][]string
	sendResp   *api.SendMessageResponse
	sendErr    error
	fetchErr   error
	fetchCalls int
	lastSend   api.SendMessageRequest
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		chatByID: make(map[string]*api.ChatWithMessages),
		perms:    make(map[string][]string),
	}
}

func (f *fakeTransport) FetchChats(context.Context) ([]model.ChatSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetchCalls++
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return append([]model.ChatSummary(nil), f.chats...), nil
}

func (f *fakeTransport) FetchChat(_ context.Context, chatID string) (*api.ChatWithMessages, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	if resp, ok := f.chatByID[chatID]; ok {
		return resp, nil
	}
	return nil, &api.Error{Status: 404, Code: "CHAT_NOT_FOUND"}
}

func (f *fakeTransport) SendMessage(_ context.Context, req api.SendMessageRequest) (*api.SendMessageResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastSend = req
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	return f.sendResp, nil
}

func (f *fakeTransport) FetchPermissions(_ context.Context, chatID, _ string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.perms[chatID], nil
}

func directChat(id, withUser string) model.ChatSummary {
	return model.ChatSummary{
		ID:   id,
		Kind: model.KindDirect,
		Members: []model.Membership{
			{ChatID: id, UserID: "me", Role: model.RoleMember},
			{ChatID: id, UserID: withUser, Role: model.RoleMember},
		},
	}
}

func groupChat(id, creator string, memberRoles map[string]model.Role) model.ChatSummary {
	c := model.ChatSummary{ID: id, Kind: model.KindGroup, CreatorID: creator}
	for userID, role := range memberRoles {
		c.Members = append(c.Members, model.Membership{ChatID: id, UserID: userID, Role: role})
	}
	return c
}

func msg(id, chatID, content string) model.Message {
	return model.Message{ID: id, ChatID: chatID, Content: content}
}
