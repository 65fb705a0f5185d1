// Package web serves the browser rooms. Each room is one page: GET renders
// the form, POST runs the message through the conversation router and
// re-renders with the reply. Conversation state is keyed by a session cookie.
package web

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"lumie/internal/besteffort"
	"lumie/internal/persona"
	"lumie/internal/router"
	"lumie/internal/session"
	"lumie/internal/transcript"
)

//go:embed templates/*.html
var templateFS embed.FS

// Templates parses the embedded page templates for the gin engine.
func Templates() *template.Template {
	return template.Must(template.ParseFS(templateFS, "templates/*.html"))
}

type Handler struct {
	router      *router.Router
	sessions    session.Store
	transcripts transcript.Recorder
	secret      string
	cookieName  string
	log         *zap.Logger
}

func NewHandler(
	r *router.Router,
	sessions session.Store,
	transcripts transcript.Recorder,
	secret, cookieName string,
	log *zap.Logger,
) *Handler {
	return &Handler{
		router:      r,
		sessions:    sessions,
		transcripts: transcripts,
		secret:      secret,
		cookieName:  cookieName,
		log:         log,
	}
}

// Register wires the web routes onto the engine.
func (h *Handler) Register(e *gin.Engine) {
	e.GET("/", h.loginPage)
	e.POST("/verify", h.verify)

	for _, room := range []roomSpec{
		{persona.Chat, "/chat", "chat.html", "message", false},
		{persona.Hug, "/hug", "hug.html", "user_input", false},
		{persona.Velvet, "/velvet", "velvet.html", "message", true},
		{persona.Persuade, "/persuade", "persuade.html", "message", true},
	} {
		room := room
		e.GET(room.path, func(c *gin.Context) {
			c.HTML(http.StatusOK, room.page, gin.H{})
		})
		e.POST(room.path, func(c *gin.Context) {
			h.roomPost(c, room)
		})
	}
}

type roomSpec struct {
	room       persona.Room
	path       string
	page       string
	field      string // form field carrying the message; /hug kept its older name
	transcribe bool
}

func (h *Handler) loginPage(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", gin.H{})
}

// verify gates entry to the rooms. With no secret configured the gate cannot
// initialize and every attempt is refused.
func (h *Handler) verify(c *gin.Context) {
	if h.secret == "" || c.PostForm("secret") != h.secret {
		c.HTML(http.StatusForbidden, "login.html", gin.H{"Error": "密語不對喔，再試一次？"})
		return
	}
	h.sessionID(c)
	c.Redirect(http.StatusFound, "/chat")
}

func (h *Handler) roomPost(c *gin.Context, spec roomSpec) {
	userInput := c.PostForm(spec.field)
	if userInput == "" {
		c.HTML(http.StatusOK, spec.page, gin.H{})
		return
	}

	sid := h.sessionID(c)
	key := sid + ":" + string(spec.room)
	if spec.room == persona.Hug {
		// The hug room is single-turn: every message stands alone.
		h.sessions.Reset(key)
	}

	reply := h.router.Handle(c.Request.Context(), router.Request{
		Key:    key,
		UserID: sid,
		Text:   userInput,
		Room:   spec.room,
	})

	if spec.transcribe && h.transcripts != nil {
		besteffort.Run(h.log, "room transcript", func() error {
			return h.transcripts.AppendExchange(string(spec.room), userInput, reply.Text)
		})
	}

	c.HTML(http.StatusOK, spec.page, gin.H{
		"UserInput": userInput,
		"Reply":     reply.Text,
	})
}

// sessionID returns the browser's session key, minting the cookie on first
// contact.
func (h *Handler) sessionID(c *gin.Context) string {
	if sid, err := c.Cookie(h.cookieName); err == nil && sid != "" {
		return sid
	}
	sid := uuid.NewString()
	c.SetCookie(h.cookieName, sid, 0, "/", "", false, true)
	return sid
}
