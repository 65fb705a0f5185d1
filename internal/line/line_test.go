package line

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/line/line-bot-sdk-go/v7/linebot"
	"go.uber.org/zap"

	"lumie/internal/identity"
	"lumie/internal/ledger"
	"lumie/internal/perfume"
	"lumie/internal/reminder"
	"lumie/internal/router"
	"lumie/internal/session"
)

const (
	testChannelSecret = "test-channel-secret"
	testPushSecret    = "push-secret"
)

type fakeMessenger struct {
	mu      sync.Mutex
	replies []linebot.SendingMessage
	pushes  []linebot.SendingMessage
	pushTo  []string
	fail    bool
}

func (m *fakeMessenger) Reply(_ string, messages ...linebot.SendingMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.New("reply failed")
	}
	m.replies = append(m.replies, messages...)
	return nil
}

func (m *fakeMessenger) Push(to string, messages ...linebot.SendingMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.New("push failed")
	}
	m.pushTo = append(m.pushTo, to)
	m.pushes = append(m.pushes, messages...)
	return nil
}

func newTestHandler(t *testing.T) (*gin.Engine, *fakeMessenger, *identity.FileCache) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	bot, err := linebot.New(testChannelSecret, "test-access-token")
	if err != nil {
		t.Fatalf("init linebot: %v", err)
	}
	store, err := ledger.NewFileStore(filepath.Join(t.TempDir(), "expenses.json"))
	if err != nil {
		t.Fatalf("init ledger: %v", err)
	}
	idCache, err := identity.NewFileCache(filepath.Join(t.TempDir(), "default_user.json"), zap.NewNop())
	if err != nil {
		t.Fatalf("init identity: %v", err)
	}
	reminders := reminder.NewScheduler(false, zap.NewNop())
	t.Cleanup(reminders.Stop)
	drawer := perfume.NewDrawer(nil, zap.NewNop())
	// No completion provider in these tests: free text gets the apology line,
	// every command path works as usual.
	r := router.New(store, session.NewMemoryStore(), drawer, nil, reminders, time.Hour, zap.NewNop())

	msgr := &fakeMessenger{}
	h := NewHandler(bot, msgr, r, idCache, drawer, testPushSecret, zap.NewNop())
	e := gin.New()
	h.Register(e)
	return e, msgr, idCache
}

func sign(body string) string {
	mac := hmac.New(sha256.New, []byte(testChannelSecret))
	mac.Write([]byte(body))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func webhookBody(text string) string {
	return `{"destination":"xxx","events":[{"type":"message","mode":"active","timestamp":1700000000000,` +
		`"source":{"type":"user","userId":"U1"},"replyToken":"rt1",` +
		`"message":{"type":"text","id":"m1","text":"` + text + `"}}]}`
}

func postWebhook(e *gin.Engine, body, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/line-webhook", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Line-Signature", signature)
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)
	return w
}

func TestWebhookInvalidSignature(t *testing.T) {
	e, msgr, _ := newTestHandler(t)
	w := postWebhook(e, webhookBody("hello"), "bogus")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if len(msgr.replies) != 0 {
		t.Fatalf("unsigned event reached the router")
	}
}

func TestWebhookValidSignatureReplies(t *testing.T) {
	e, msgr, idCache := newTestHandler(t)
	body := webhookBody("我的ID")
	w := postWebhook(e, body, sign(body))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if w.Body.String() != "OK" {
		t.Fatalf("expected fixed OK body, got %q", w.Body.String())
	}
	if len(msgr.replies) != 1 {
		t.Fatalf("expected one reply, got %d", len(msgr.replies))
	}
	tm, ok := msgr.replies[0].(*linebot.TextMessage)
	if !ok || !strings.Contains(tm.Text, "U1") {
		t.Fatalf("identity reply wrong: %#v", msgr.replies[0])
	}
	// The inbound event cached the sender as the default push recipient.
	if id, ok := idCache.LoadDefaultUser(); !ok || id != "U1" {
		t.Fatalf("default user not cached, got %q ok=%v", id, ok)
	}
}

func TestWebhookAcksEvenWhenReplyFails(t *testing.T) {
	e, msgr, _ := newTestHandler(t)
	msgr.fail = true
	body := webhookBody("查今天花多少")
	w := postWebhook(e, body, sign(body))
	if w.Code != http.StatusOK || w.Body.String() != "OK" {
		t.Fatalf("webhook must ack regardless of send outcome, got %d %q", w.Code, w.Body.String())
	}
}

func TestWebhookPerfumeRepliesFlex(t *testing.T) {
	e, msgr, _ := newTestHandler(t)
	body := webhookBody("抽香水")
	postWebhook(e, body, sign(body))
	if len(msgr.replies) != 1 {
		t.Fatalf("expected one reply, got %d", len(msgr.replies))
	}
	if _, ok := msgr.replies[0].(*linebot.FlexMessage); !ok {
		t.Fatalf("perfume reply should be a flex card, got %#v", msgr.replies[0])
	}
}

func TestPushReminderWrongSecret(t *testing.T) {
	e, msgr, _ := newTestHandler(t)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/push-lumie-reminder?secret=wrong&tag=study-break", nil)
	e.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
	if len(msgr.pushes) != 0 {
		t.Fatalf("push sent despite bad secret")
	}
}

func TestPushReminderUnknownTag(t *testing.T) {
	e, _, idCache := newTestHandler(t)
	idCache.SaveDefaultUser("U1")
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/push-lumie-reminder?secret="+testPushSecret+"&tag=nope", nil)
	e.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestPushReminderNoCachedIdentity(t *testing.T) {
	e, _, _ := newTestHandler(t)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/push-lumie-reminder?secret="+testPushSecret+"&tag=study-break", nil)
	e.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestPushReminderDelivers(t *testing.T) {
	e, msgr, idCache := newTestHandler(t)
	idCache.SaveDefaultUser("U9")
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/push-lumie-reminder?secret="+testPushSecret+"&tag=study-break", nil)
	e.ServeHTTP(w, req)
	if w.Code != http.StatusOK || w.Body.String() != "OK" {
		t.Fatalf("expected 200 OK, got %d %q", w.Code, w.Body.String())
	}
	if len(msgr.pushTo) != 1 || msgr.pushTo[0] != "U9" {
		t.Fatalf("push recipient wrong: %v", msgr.pushTo)
	}
}

func TestPushReminderDeliveryFailure(t *testing.T) {
	e, msgr, idCache := newTestHandler(t)
	idCache.SaveDefaultUser("U9")
	msgr.fail = true
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/push-lumie-reminder?secret="+testPushSecret+"&tag=study-break", nil)
	e.ServeHTTP(w, req)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
}

func TestPushDailyPerfume(t *testing.T) {
	e, msgr, idCache := newTestHandler(t)
	idCache.SaveDefaultUser("U9")
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/push-daily-perfume?secret="+testPushSecret, nil)
	e.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d %q", w.Code, w.Body.String())
	}
	if len(msgr.pushes) != 1 {
		t.Fatalf("expected one push, got %d", len(msgr.pushes))
	}
	if _, ok := msgr.pushes[0].(*linebot.FlexMessage); !ok {
		t.Fatalf("daily perfume should push a flex card, got %#v", msgr.pushes[0])
	}
}

func TestStudyReminderPushedToSameUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	bot, err := linebot.New(testChannelSecret, "test-access-token")
	if err != nil {
		t.Fatalf("init linebot: %v", err)
	}
	store, err := ledger.NewFileStore(filepath.Join(t.TempDir(), "expenses.json"))
	if err != nil {
		t.Fatalf("init ledger: %v", err)
	}
	idCache, err := identity.NewFileCache(filepath.Join(t.TempDir(), "default_user.json"), zap.NewNop())
	if err != nil {
		t.Fatalf("init identity: %v", err)
	}
	reminders := reminder.NewScheduler(false, zap.NewNop())
	t.Cleanup(reminders.Stop)
	drawer := perfume.NewDrawer(nil, zap.NewNop())
	// Short delay so the one-shot fires inside the test.
	r := router.New(store, session.NewMemoryStore(), drawer, nil, reminders, 10*time.Millisecond, zap.NewNop())
	msgr := &fakeMessenger{}
	h := NewHandler(bot, msgr, r, idCache, drawer, testPushSecret, zap.NewNop())
	e := gin.New()
	h.Register(e)

	body := webhookBody("開始讀書")
	postWebhook(e, body, sign(body))

	deadline := time.Now().Add(time.Second)
	for {
		msgr.mu.Lock()
		pushed := len(msgr.pushTo)
		msgr.mu.Unlock()
		if pushed == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("study reminder never pushed")
		}
		time.Sleep(5 * time.Millisecond)
	}
	if msgr.pushTo[0] != "U1" {
		t.Fatalf("reminder pushed to %q, want U1", msgr.pushTo[0])
	}
}
