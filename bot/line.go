package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"
)

// lineReplier is the slice of *messaging_api.MessagingApiAPI the bot uses.
type lineReplier interface {
	ReplyMessage(request *messaging_api.ReplyMessageRequest) (*messaging_api.ReplyMessageResponse, error)
}

// callback handles the LINE webhook: validate the signature, run the pipeline
// for each text message and push the reply back. LINE always gets a 200 "OK"
// once the signature checks out, whatever happens downstream.
func (a *App) callback(c *gin.Context) {
	cb, err := webhook.ParseRequest(a.config.Line.ChannelSecret, c.Request)
	if err != nil {
		if errors.Is(err, webhook.ErrInvalidSignature) {
			slog.Error("invalid webhook signature")
			c.String(http.StatusBadRequest, "invalid signature")
			return
		}

		slog.Error("failed to parse webhook request", "error", err)
		c.String(http.StatusBadRequest, "bad request")
		return
	}

	for _, event := range cb.Events {
		e, ok := event.(webhook.MessageEvent)
		if !ok {
			continue
		}
		msg, ok := e.Message.(webhook.TextMessageContent)
		if !ok {
			continue
		}

		userID := sourceUserID(e.Source)
		slog.Info("received message", "user_id", userID, "text", msg.Text)

		reply := a.safeRespond(c.Request.Context(), userID, msg.Text)
		if err := a.reply(e.ReplyToken, reply); err != nil {
			slog.Error("failed to send reply", "user_id", userID, "error", err)
		}
	}

	c.String(http.StatusOK, "OK")
}

func (a *App) reply(replyToken, text string) error {
	_, err := a.line.ReplyMessage(&messaging_api.ReplyMessageRequest{
		ReplyToken: replyToken,
		Messages: []messaging_api.MessageInterface{
			messaging_api.TextMessage{Text: text},
		},
	})

	return err
}

// safeRespond shields the webhook from pipeline panics with the generic
// system-failure reply.
func (a *App) safeRespond(ctx context.Context, userID, text string) (reply string) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("panic while handling message", "panic", r)
			reply = MsgSystemFailure
		}
	}()

	return a.handler.Respond(ctx, userID, text)
}

func sourceUserID(source webhook.SourceInterface) string {
	switch s := source.(type) {
	case webhook.UserSource:
		return s.UserId
	case webhook.GroupSource:
		return s.UserId
	case webhook.RoomSource:
		return s.UserId
	}

	return ""
}
