// Package router turns one inbound text into one outbound reply. Dispatch is
// an ordered first-match walk: fixed commands, the expense matcher, the
// meal-followup state, then the persona free-text fallback. Exact commands
// run before the regex and the fallback so user text containing a trigger
// substring is never misrouted.
package router

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"lumie/internal/ledger"
	"lumie/internal/llm"
	"lumie/internal/perfume"
	"lumie/internal/persona"
	"lumie/internal/reminder"
	"lumie/internal/session"
)

// historyLimit caps the turns sent to the completion provider.
const historyLimit = 25

var expensePattern = regexp.MustCompile(`^(` + strings.Join(ledger.Categories, "|") + `)\s*(\d+)`)

var identityTriggers = map[string]bool{
	"我的ID":  true,
	"我的id":  true,
	"查詢ID":  true,
	"my id": true,
}

const (
	studyTrigger  = "開始讀書"
	totalsTrigger = "查今天花多少"
	drawTrigger   = "抽香水"
)

// Request is one inbound text event.
type Request struct {
	// Key addresses the conversation in the session store.
	Key string
	// UserID is the caller's channel identifier, echoed by the identity query
	// and used as the reminder key.
	UserID string
	Text   string
	// Room selects the fallback persona for this surface.
	Room persona.Room
	// Notify pushes text to the user later, outside the reply cycle. Nil on
	// channels without push; the study acknowledgement still goes out, the
	// reminder is skipped.
	Notify func(text string)
}

// Reply is the outbound action. Perfume is set for draw replies so channels
// with rich cards can upgrade the formatting; Text always carries the plain
// form.
type Reply struct {
	Text    string
	Perfume *perfume.Entry
}

type Router struct {
	ledger    ledger.Store
	sessions  session.Store
	drawer    *perfume.Drawer
	llm       llm.Client // nil when the completion provider is not configured
	reminders *reminder.Scheduler
	delay     time.Duration
	log       *zap.Logger
}

func New(
	ledgerStore ledger.Store,
	sessions session.Store,
	drawer *perfume.Drawer,
	llmClient llm.Client,
	reminders *reminder.Scheduler,
	reminderDelay time.Duration,
	log *zap.Logger,
) *Router {
	return &Router{
		ledger:    ledgerStore,
		sessions:  sessions,
		drawer:    drawer,
		llm:       llmClient,
		reminders: reminders,
		delay:     reminderDelay,
		log:       log,
	}
}

// Handle dispatches one inbound text and returns the reply.
func (r *Router) Handle(ctx context.Context, req Request) Reply {
	text := strings.TrimSpace(req.Text)

	if identityTriggers[text] {
		return Reply{Text: fmt.Sprintf("妳的 ID 是：%s", req.UserID)}
	}

	if text == studyTrigger || strings.Contains(text, "陪我讀書") {
		if req.Notify != nil {
			notify := req.Notify
			r.reminders.Schedule(req.UserID, r.delay, func() {
				notify(persona.StudyReminder)
			})
		}
		return Reply{Text: persona.StudyAck}
	}

	// The expense matcher runs before the awaiting-meal check: a second
	// literal expense command in that slot is a new expense, not a meal
	// description.
	if m := expensePattern.FindStringSubmatch(text); m != nil {
		return r.handleExpense(req, m[1], m[2])
	}

	if r.sessions.State(req.Key) == session.AwaitingMealDescription {
		return r.handleMealDescription(ctx, req, text)
	}

	if text == totalsTrigger {
		return r.handleTotalsQuery(req)
	}

	if strings.Contains(text, drawTrigger) {
		e := r.drawer.Draw()
		return Reply{Text: e.PlainText(), Perfume: &e}
	}

	return r.handleFreeText(ctx, req, text)
}

func (r *Router) handleExpense(req Request, category, rawAmount string) Reply {
	amount, _ := strconv.Atoi(rawAmount)
	if err := r.ledger.RecordExpense(req.UserID, category, amount); err != nil {
		// The reply below then reports more than was durably stored; accepted.
		r.log.Warn("failed to persist expense", zap.String("user", req.UserID), zap.Error(err))
	}

	totals := r.ledger.TodayTotals(req.UserID)
	var b strings.Builder
	fmt.Fprintf(&b, "已記錄 %s %d 元 💰\n今日目前花費：\n%s\n➕ 總計：%d 元",
		category, amount, formatTotals(totals), totals.Total)

	if ledger.IsMeal(category) {
		r.sessions.SetState(req.Key, session.AwaitingMealDescription)
		b.WriteString("\n\n對了，今天吃了什麼呀？說給我聽聽 🍽️")
	}
	return Reply{Text: b.String()}
}

func (r *Router) handleMealDescription(ctx context.Context, req Request, text string) Reply {
	r.sessions.SetState(req.Key, session.Idle)
	if r.llm == nil {
		return Reply{Text: persona.Apology}
	}
	resp, err := r.llm.Generate(ctx, []llm.Message{
		{Role: "system", Content: persona.Prompt(persona.Meal)},
		{Role: "user", Content: text},
	})
	if err != nil {
		r.log.Warn("meal follow-up completion failed", zap.Error(err))
		return Reply{Text: persona.Apology}
	}
	return Reply{Text: resp.Content}
}

func (r *Router) handleTotalsQuery(req Request) Reply {
	totals := r.ledger.TodayTotals(req.UserID)
	if len(totals.ByCategory) == 0 {
		return Reply{Text: persona.NoExpensesYet}
	}
	return Reply{Text: fmt.Sprintf("今日花費如下：\n%s\n➕ 總計：%d 元",
		formatTotals(totals), totals.Total)}
}

func (r *Router) handleFreeText(ctx context.Context, req Request, text string) Reply {
	r.sessions.AppendUser(req.Key, text)
	if r.llm == nil {
		return Reply{Text: persona.Apology}
	}

	var msgs []llm.Message
	if p := persona.Prompt(req.Room); p != "" {
		msgs = append(msgs, llm.Message{Role: "system", Content: p})
	}
	msgs = append(msgs, r.sessions.Recent(req.Key, historyLimit)...)

	resp, err := r.llm.Generate(ctx, msgs)
	if err != nil {
		r.log.Warn("completion failed", zap.String("room", string(req.Room)), zap.Error(err))
		return Reply{Text: persona.Apology}
	}
	r.sessions.AppendAssistant(req.Key, resp.Content)
	return Reply{Text: resp.Content}
}

// formatTotals renders category sums in the fixed category order so replies
// are stable.
func formatTotals(t ledger.Totals) string {
	var lines []string
	for _, cat := range ledger.Categories {
		if v, ok := t.ByCategory[cat]; ok {
			lines = append(lines, fmt.Sprintf("%s：%d 元", cat, v))
		}
	}
	return strings.Join(lines, "\n")
}
