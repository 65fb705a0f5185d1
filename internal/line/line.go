// Package line is the messaging delivery adapter: the signed webhook in, and
// reply-token or push sends out. The webhook acknowledges with a fixed body
// no matter what happened inside; only a bad signature is refused.
package line

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/line/line-bot-sdk-go/v7/linebot"
	"go.uber.org/zap"

	"lumie/internal/identity"
	"lumie/internal/perfume"
	"lumie/internal/persona"
	"lumie/internal/router"
)

// Messenger sends outbound LINE messages. Split from the webhook parser so
// tests can capture sends without talking to the platform.
type Messenger interface {
	Reply(replyToken string, messages ...linebot.SendingMessage) error
	Push(to string, messages ...linebot.SendingMessage) error
}

type botMessenger struct{ bot *linebot.Client }

func (m botMessenger) Reply(replyToken string, messages ...linebot.SendingMessage) error {
	_, err := m.bot.ReplyMessage(replyToken, messages...).Do()
	return err
}

func (m botMessenger) Push(to string, messages ...linebot.SendingMessage) error {
	_, err := m.bot.PushMessage(to, messages...).Do()
	return err
}

// NewMessenger wraps the SDK client for production wiring.
func NewMessenger(bot *linebot.Client) Messenger { return botMessenger{bot: bot} }

// Tags accepted by the operator reminder endpoint.
var reminderTags = map[string]string{
	"study-break": persona.StudyReminder,
	"drink-water": "記得喝口水喔 💧 Lumie 在看著妳～",
	"goodnight":   "夜深了，早點休息，Lumie 陪妳到夢裡 🌙",
}

type Handler struct {
	bot        *linebot.Client // signature verification and event parsing
	messenger  Messenger
	router     *router.Router
	identity   identity.Cache
	drawer     *perfume.Drawer
	pushSecret string
	log        *zap.Logger
}

func NewHandler(
	bot *linebot.Client,
	messenger Messenger,
	r *router.Router,
	idCache identity.Cache,
	drawer *perfume.Drawer,
	pushSecret string,
	log *zap.Logger,
) *Handler {
	return &Handler{
		bot:        bot,
		messenger:  messenger,
		router:     r,
		identity:   idCache,
		drawer:     drawer,
		pushSecret: pushSecret,
		log:        log,
	}
}

// Register wires the webhook and, when a push secret is configured, the
// operator push endpoints. Without the secret those endpoints do not exist.
func (h *Handler) Register(e *gin.Engine) {
	e.POST("/line-webhook", h.webhook)
	if h.pushSecret != "" {
		e.POST("/push-lumie-reminder", h.pushReminder)
		e.POST("/push-daily-perfume", h.pushPerfume)
	}
}

func (h *Handler) webhook(c *gin.Context) {
	events, err := h.bot.ParseRequest(c.Request)
	if err != nil {
		if err == linebot.ErrInvalidSignature {
			c.String(http.StatusBadRequest, "bad signature")
		} else {
			c.String(http.StatusInternalServerError, "parse error")
		}
		return
	}

	for _, ev := range events {
		if ev.Type != linebot.EventTypeMessage {
			continue
		}
		msg, ok := ev.Message.(*linebot.TextMessage)
		if !ok {
			continue
		}
		h.handleText(c.Request.Context(), ev, msg.Text)
	}

	// Fixed acknowledgement: application-level failures never nack the
	// delivery, the platform only retries transport errors.
	c.String(http.StatusOK, "OK")
}

func (h *Handler) handleText(ctx context.Context, ev *linebot.Event, text string) {
	userID := ev.Source.UserID
	h.identity.SaveDefaultUser(userID)

	reply := h.router.Handle(ctx, router.Request{
		Key:    userID,
		UserID: userID,
		Text:   text,
		Room:   persona.Line,
		Notify: func(text string) {
			if err := h.messenger.Push(userID, linebot.NewTextMessage(text)); err != nil {
				h.log.Warn("reminder push failed", zap.String("user", userID), zap.Error(err))
			}
		},
	})

	if reply.Perfume != nil {
		if err := h.messenger.Reply(ev.ReplyToken, perfumeFlex(*reply.Perfume)); err == nil {
			return
		}
		h.log.Warn("flex reply failed, falling back to text", zap.String("user", userID))
	}
	if err := h.messenger.Reply(ev.ReplyToken, linebot.NewTextMessage(reply.Text)); err != nil {
		h.log.Warn("reply failed", zap.String("user", userID), zap.Error(err))
	}
}

// pushReminder delivers an operator-triggered line to the cached default
// user. Operator endpoints speak status codes, not persona.
func (h *Handler) pushReminder(c *gin.Context) {
	if c.Query("secret") != h.pushSecret {
		c.String(http.StatusForbidden, "forbidden")
		return
	}
	text, ok := reminderTags[c.Query("tag")]
	if !ok {
		c.String(http.StatusBadRequest, "unknown tag")
		return
	}
	userID, ok := h.identity.LoadDefaultUser()
	if !ok {
		c.String(http.StatusBadRequest, "no known user")
		return
	}
	if err := h.messenger.Push(userID, linebot.NewTextMessage(text)); err != nil {
		c.String(http.StatusInternalServerError, "push failed: %v", err)
		return
	}
	c.String(http.StatusOK, "OK")
}

func (h *Handler) pushPerfume(c *gin.Context) {
	if c.Query("secret") != h.pushSecret {
		c.String(http.StatusForbidden, "forbidden")
		return
	}
	if _, ok := h.identity.LoadDefaultUser(); !ok {
		c.String(http.StatusBadRequest, "no known user")
		return
	}
	if err := h.PushDailyPerfume(); err != nil {
		c.String(http.StatusInternalServerError, "push failed: %v", err)
		return
	}
	c.String(http.StatusOK, "OK")
}

// PushDailyPerfume draws and pushes today's perfume to the cached default
// user. Shared by the operator endpoint and the optional cron schedule.
func (h *Handler) PushDailyPerfume() error {
	userID, ok := h.identity.LoadDefaultUser()
	if !ok {
		return errNoDefaultUser
	}
	e := h.drawer.Draw()
	if err := h.messenger.Push(userID, perfumeFlex(e)); err == nil {
		return nil
	}
	h.log.Warn("flex push failed, falling back to text", zap.String("user", userID))
	return h.messenger.Push(userID, linebot.NewTextMessage(e.PlainText()))
}
