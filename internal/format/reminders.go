package format

import (
	"fmt"
	"strings"

	"github.com/hray3182/DoseLine/internal/history"
	"github.com/hray3182/DoseLine/internal/models"
	"github.com/hray3182/DoseLine/internal/rrule"
)

const shortIDLen = 8

func StatusIcon(s models.Status) string {
	switch s {
	case models.StatusTaken:
		return "✅"
	case models.StatusMissed:
		return "❌"
	case models.StatusSnoozed:
		return "💤"
	case models.StatusCancelled:
		return "🚫"
	default:
		return "⏰"
	}
}

func StatusLabel(s models.Status) string {
	switch s {
	case models.StatusTaken:
		return "已服用"
	case models.StatusMissed:
		return "已錯過"
	case models.StatusSnoozed:
		return "延後中"
	case models.StatusCancelled:
		return "已取消"
	default:
		return "待服用"
	}
}

// ShortID trims an id for display and for /delete prefixes.
func ShortID(id models.ID) string {
	s := string(id)
	if len(s) > shortIDLen {
		return s[:shortIDLen]
	}
	return s
}

// InstanceLine renders one instance as a single line, e.g.
// "✅ 08:00 維他命 (飯後)".
func InstanceLine(inst models.Instance) string {
	var sb strings.Builder
	sb.WriteString(StatusIcon(inst.Status))
	sb.WriteString(" ")
	if inst.DisplayTime != "" {
		sb.WriteString("`" + inst.DisplayTime + "` ")
	} else {
		sb.WriteString("`--:--` ")
	}
	sb.WriteString(Escape(inst.Title))
	if src := inst.SourceReminder; src != nil {
		if src.Instructions != "" {
			fmt.Fprintf(&sb, " (%s)", Escape(src.Instructions))
		}
		if src.IsImportant {
			sb.WriteString(" ❗")
		}
	}
	if inst.Status == models.StatusTaken && inst.TakenAt != nil {
		fmt.Fprintf(&sb, " · %s 服用", inst.TakenAt.In(inst.At.Location()).Format("15:04"))
	}
	return sb.String()
}

// DayList renders the instances of one date as a Markdown list.
func DayList(date string, insts []models.Instance) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📋 *%s 的提醒*\n\n", date)
	if len(insts) == 0 {
		sb.WriteString("今天沒有需要服用的項目")
		return sb.String()
	}
	for _, inst := range insts {
		sb.WriteString(InstanceLine(inst))
		sb.WriteString("\n")
	}
	return sb.String()
}

// DefinitionLine summarizes a stored definition for /reminders.
func DefinitionLine(def models.ReminderDefinition) string {
	var when string
	switch s := def.Schedule.(type) {
	case *models.RecurringSchedule:
		parts := make([]string, 0, len(s.Slots))
		for _, slot := range s.Slots {
			parts = append(parts, fmt.Sprintf("%s %s", Escape(slot), s.Times[slot]))
		}
		when = "每天 " + strings.Join(parts, ", ")
	default:
		when = rrule.ParseFrequency(def.EffectiveFrequency()).Describe()
		if t := def.EffectiveTime(); t != "" {
			when += " @ " + t
		}
	}

	line := fmt.Sprintf("*%s* · %s · 自 %s", Escape(def.Title), when, def.StartDate())
	if def.ID != "" {
		line = fmt.Sprintf("`%s` %s", ShortID(def.ID), line)
	}
	if d := def.DurationDays(); d != nil {
		line += fmt.Sprintf(" 共 %d 天", *d)
	}
	return line
}

// ReportText renders an adherence report.
func ReportText(r *history.Report) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📊 *服藥報告* %s ~ %s\n\n", r.From, r.To)
	if pct, ok := r.Adherence(); ok {
		fmt.Fprintf(&sb, "遵從率: *%.0f%%*\n", pct)
	} else {
		sb.WriteString("遵從率: 尚無資料\n")
	}
	fmt.Fprintf(&sb, "✅ 已服用 %d\n❌ 已錯過 %d\n", r.Taken, r.Missed)
	if r.Snoozed > 0 {
		fmt.Fprintf(&sb, "💤 延後中 %d\n", r.Snoozed)
	}
	if r.Upcoming > 0 {
		fmt.Fprintf(&sb, "⏰ 待服用 %d\n", r.Upcoming)
	}

	var bad []string
	for _, d := range r.Days {
		if d.Missed > 0 {
			bad = append(bad, fmt.Sprintf("%s (%d)", d.Date, d.Missed))
		}
	}
	if len(bad) > 0 {
		sb.WriteString("\n錯過的日子: ")
		sb.WriteString(strings.Join(bad, ", "))
	}
	return sb.String()
}
