package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/MrJorjinio/simpchat-client/internal/model"
)

// SendMessageRequest is the payload for sending a message. TargetUserID is
// set instead of ChatID when sending the first message of a not-yet-created
// direct conversation; the server materializes the chat and returns it.
type SendMessageRequest struct {
	ChatID       string `json:"chatId,omitempty"`
	TargetUserID string `json:"targetUserId,omitempty"`
	ClientMsgID  string `json:"clientMsgId"`
	Content      string `json:"content"`
	ReplyToID    string `json:"replyToId,omitempty"`

	// Attachment switches the call to multipart upload when non-nil.
	AttachmentName string    `json:"-"`
	AttachmentBody io.Reader `json:"-"`
}

// SendMessageResponse carries the confirmed message and, for first DM
// messages, the id of the materialized conversation.
type SendMessageResponse struct {
	Message model.Message `json:"message"`
	ChatID  string        `json:"chatId"`
}

// SendMessage sends a message, as multipart when it carries an attachment
// and as plain JSON otherwise.
func (c *Client) SendMessage(ctx context.Context, req SendMessageRequest) (*SendMessageResponse, error) {
	if req.AttachmentBody != nil {
		return c.sendMultipart(ctx, req)
	}
	var out SendMessageResponse
	if err := c.do(ctx, http.MethodPost, "/api/messages", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) sendMultipart(ctx context.Context, req SendMessageRequest) (*SendMessageResponse, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	meta, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode message meta: %w", err)
	}
	if err := w.WriteField("message", string(meta)); err != nil {
		return nil, err
	}
	part, err := w.CreateFormFile("attachment", req.AttachmentName)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, req.AttachmentBody); err != nil {
		return nil, fmt.Errorf("copy attachment: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/messages", &buf)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", w.FormDataContentType())
	httpReq.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, decodeError(resp)
	}
	var out SendMessageResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &out, nil
}

// EditMessage replaces a message's text content.
func (c *Client) EditMessage(ctx context.Context, messageID, content string) error {
	return c.do(ctx, http.MethodPut, "/api/messages/"+url.PathEscape(messageID),
		map[string]string{"content": content}, nil)
}

// DeleteMessage deletes a message.
func (c *Client) DeleteMessage(ctx context.Context, messageID string) error {
	return c.do(ctx, http.MethodDelete, "/api/messages/"+url.PathEscape(messageID), nil, nil)
}

// ToggleReaction adds or removes the viewer's reaction of the given kind.
func (c *Client) ToggleReaction(ctx context.Context, messageID, kind string) error {
	return c.do(ctx, http.MethodPost, "/api/messages/"+url.PathEscape(messageID)+"/reactions",
		map[string]string{"reaction": kind}, nil)
}

// PinMessage pins a message in its chat.
func (c *Client) PinMessage(ctx context.Context, messageID string) error {
	return c.do(ctx, http.MethodPost, "/api/messages/"+url.PathEscape(messageID)+"/pin", nil, nil)
}

// UnpinMessage unpins a message.
func (c *Client) UnpinMessage(ctx context.Context, messageID string) error {
	return c.do(ctx, http.MethodDelete, "/api/messages/"+url.PathEscape(messageID)+"/pin", nil, nil)
}

// MarkSeen reports the given visible messages as seen by the viewer.
func (c *Client) MarkSeen(ctx context.Context, chatID string, messageIDs []string) error {
	return c.do(ctx, http.MethodPost, "/api/chats/"+url.PathEscape(chatID)+"/seen",
		map[string]any{"messageIds": messageIDs}, nil)
}
