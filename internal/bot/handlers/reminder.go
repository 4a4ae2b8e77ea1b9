package handlers

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/hray3182/DoseLine/internal/clock"
	"github.com/hray3182/DoseLine/internal/format"
	"github.com/hray3182/DoseLine/internal/models"
	"github.com/hray3182/DoseLine/internal/rrule"
)

func (h *Handlers) handleToday(ctx context.Context, msg *tgbotapi.Message) {
	date := strings.TrimSpace(msg.CommandArguments())
	if date != "" {
		if _, err := clock.ParseDate(date, nil); err != nil {
			h.sendMessage(msg.Chat.ID, "日期格式錯誤，請使用 YYYY-MM-DD")
			return
		}
	} else {
		now, _, err := h.svc.LocalNow(ctx, msg.From.ID)
		if err != nil {
			h.replyError(msg.Chat.ID, "get local time", err)
			return
		}
		date = clock.FormatDate(now)
	}

	insts, err := h.svc.Instances(ctx, msg.From.ID, date)
	if err != nil {
		h.replyError(msg.Chat.ID, "expand instances", err)
		return
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, inst := range insts {
		if inst.Actionable() {
			rows = append(rows, h.instanceRow(msg.From.ID, inst, inst.Title))
		}
	}

	var keyboard *tgbotapi.InlineKeyboardMarkup
	if len(rows) > 0 {
		k := tgbotapi.NewInlineKeyboardMarkup(rows...)
		keyboard = &k
	}
	if err := h.sendWithKeyboard(msg.Chat.ID, format.DayList(date, insts), keyboard); err != nil {
		h.replyError(msg.Chat.ID, "send day list", err)
	}
}

var everyHoursRe = regexp.MustCompile(`^(?:every-?)?(\d+)h$`)

// frequencyArg maps the short /add spelling to a stored frequency:
// daily, weekly, once, 8h (or every-8h), and comma-separated weekdays.
func frequencyArg(arg string) (string, bool) {
	arg = strings.ToLower(strings.TrimSpace(arg))
	var freq string
	switch arg {
	case "daily":
		freq = "Daily"
	case "weekly":
		freq = "Weekly"
	case "once":
		freq = "Once"
	default:
		if m := everyHoursRe.FindStringSubmatch(arg); m != nil {
			freq = fmt.Sprintf("Every %s Hours", m[1])
			break
		}
		days := strings.Split(arg, ",")
		for i, d := range days {
			d = strings.TrimSpace(d)
			if d == "" {
				return "", false
			}
			days[i] = strings.ToUpper(d[:1]) + d[1:]
		}
		freq = strings.Join(days, ", ")
	}

	f := rrule.ParseFrequency(freq)
	if f.Kind == rrule.KindUnknown {
		return "", false
	}
	if f.Kind == rrule.KindInterval && f.IntervalHours > 24 {
		return "", false
	}
	return freq, true
}

func (h *Handlers) handleAdd(ctx context.Context, msg *tgbotapi.Message) {
	const usage = "用法: /add <HH:MM> <頻率> <標題>\n例如: /add 08:00 daily 維他命"

	parts := strings.Fields(msg.CommandArguments())
	if len(parts) < 3 {
		h.sendMessage(msg.Chat.ID, "請提供時間、頻率和標題\n"+usage)
		return
	}
	if _, ok := clock.ParseClock(parts[0]); !ok {
		h.sendMessage(msg.Chat.ID, "時間格式錯誤，請使用 HH:MM 格式 (例如 08:30)")
		return
	}
	freq, ok := frequencyArg(parts[1])
	if !ok {
		h.sendMessage(msg.Chat.ID, "無法識別的頻率\n"+usage)
		return
	}

	now, _, err := h.svc.LocalNow(ctx, msg.From.ID)
	if err != nil {
		h.replyError(msg.Chat.ID, "get local time", err)
		return
	}
	today := clock.FormatDate(now)

	def := models.ReminderDefinition{
		Title:     strings.Join(parts[2:], " "),
		Date:      today,
		Time:      parts[0],
		Frequency: freq,
		Schedule: &models.BasicSchedule{
			Window:    models.Window{StartDate: today},
			Frequency: freq,
			Time:      parts[0],
		},
	}
	saved, err := h.svc.AddReminder(ctx, msg.From.ID, def)
	if err != nil {
		h.replyError(msg.Chat.ID, "add reminder", err)
		return
	}
	h.sendMessage(msg.Chat.ID, "⏰ 提醒已設定\n"+format.DefinitionLine(*saved))
}

func (h *Handlers) handleReminderList(ctx context.Context, msg *tgbotapi.Message) {
	defs, err := h.svc.Reminders(ctx, msg.From.ID)
	if err != nil {
		h.replyError(msg.Chat.ID, "list reminders", err)
		return
	}
	if len(defs) == 0 {
		h.sendMessage(msg.Chat.ID, "⏰ 目前沒有提醒")
		return
	}

	var sb strings.Builder
	sb.WriteString("⏰ *提醒列表*\n\n")
	for _, def := range defs {
		sb.WriteString(format.DefinitionLine(def))
		sb.WriteString("\n")
	}
	h.sendMessage(msg.Chat.ID, sb.String())
}

func (h *Handlers) handleDelete(ctx context.Context, msg *tgbotapi.Message) {
	prefix := strings.TrimSpace(msg.CommandArguments())
	if prefix == "" {
		h.sendMessage(msg.Chat.ID, "請提供提醒編號\n用法: /delete <編號>\n編號可在 /reminders 查看")
		return
	}

	defs, err := h.svc.Reminders(ctx, msg.From.ID)
	if err != nil {
		h.replyError(msg.Chat.ID, "list reminders", err)
		return
	}
	var matches []models.ReminderDefinition
	for _, def := range defs {
		if strings.HasPrefix(string(def.ID), prefix) {
			matches = append(matches, def)
		}
	}

	switch len(matches) {
	case 0:
		h.sendMessage(msg.Chat.ID, "找不到此提醒")
	case 1:
		if err := h.svc.DeleteReminder(ctx, msg.From.ID, matches[0].ID); err != nil {
			h.replyError(msg.Chat.ID, "delete reminder", err)
			return
		}
		h.sendMessage(msg.Chat.ID, fmt.Sprintf("🗑 已刪除「%s」", format.Escape(matches[0].Title)))
	default:
		h.sendMessage(msg.Chat.ID, fmt.Sprintf("有 %d 個提醒符合此編號，請提供更長的編號", len(matches)))
	}
}
