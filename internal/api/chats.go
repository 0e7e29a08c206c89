package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/MrJorjinio/simpchat-client/internal/model"
)

// ChatWithMessages is the fetch-chat-by-id response: the summary plus the
// chat's message history.
type ChatWithMessages struct {
	Chat     model.ChatSummary `json:"chat"`
	Messages []model.Message   `json:"messages"`
}

// FetchChats loads the viewer's full chat list.
func (c *Client) FetchChats(ctx context.Context) ([]model.ChatSummary, error) {
	var chats []model.ChatSummary
	if err := c.do(ctx, http.MethodGet, "/api/chats", nil, &chats); err != nil {
		return nil, err
	}
	return chats, nil
}

// FetchChat loads one chat and its messages.
func (c *Client) FetchChat(ctx context.Context, chatID string) (*ChatWithMessages, error) {
	var out ChatWithMessages
	if err := c.do(ctx, http.MethodGet, "/api/chats/"+url.PathEscape(chatID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FetchPermissions loads the permission names granted to userID in chatID.
func (c *Client) FetchPermissions(ctx context.Context, chatID, userID string) ([]string, error) {
	var perms []string
	path := "/api/chats/" + url.PathEscape(chatID) + "/permissions/" + url.PathEscape(userID)
	if err := c.do(ctx, http.MethodGet, path, nil, &perms); err != nil {
		return nil, err
	}
	return perms, nil
}

// GrantPermission grants a single permission to a user in a chat.
func (c *Client) GrantPermission(ctx context.Context, chatID, userID, permission string) error {
	path := "/api/chats/" + url.PathEscape(chatID) + "/permissions/" + url.PathEscape(userID)
	return c.do(ctx, http.MethodPost, path, map[string]string{"permission": permission}, nil)
}

// RevokePermission revokes a single permission from a user in a chat.
func (c *Client) RevokePermission(ctx context.Context, chatID, userID, permission string) error {
	path := "/api/chats/" + url.PathEscape(chatID) + "/permissions/" + url.PathEscape(userID) + "/revoke"
	return c.do(ctx, http.MethodPost, path, map[string]string{"permission": permission}, nil)
}
