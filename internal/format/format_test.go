package format

import (
	"testing"
	"time"

	"github.com/hray3182/DoseLine/internal/history"
	"github.com/hray3182/DoseLine/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUTF16Len(t *testing.T) {
	assert.Equal(t, 5, UTF16Len("hello"))
	assert.Equal(t, 2, UTF16Len("提醒"))
	assert.Equal(t, 1, UTF16Len("✅"))
	assert.Equal(t, 2, UTF16Len("💤"))
}

func TestMarkdown(t *testing.T) {
	m := Markdown("# Title\n**bold** and `code` and *it*")
	assert.Equal(t, "Title\nbold and code and it", m.Text)
	require.Len(t, m.Entities, 4)

	assert.Equal(t, "bold", m.Entities[0].Type)
	assert.Equal(t, 0, m.Entities[0].Offset)
	assert.Equal(t, 5, m.Entities[0].Length)

	assert.Equal(t, "bold", m.Entities[1].Type)
	assert.Equal(t, 6, m.Entities[1].Offset)

	assert.Equal(t, "code", m.Entities[2].Type)
	assert.Equal(t, 15, m.Entities[2].Offset)
	assert.Equal(t, 4, m.Entities[2].Length)

	assert.Equal(t, "italic", m.Entities[3].Type)
	assert.Equal(t, 24, m.Entities[3].Offset)
	assert.Equal(t, 2, m.Entities[3].Length)
}

func TestMarkdownOffsetsCountUTF16(t *testing.T) {
	m := Markdown("💤 **維他命**")
	assert.Equal(t, "💤 維他命", m.Text)
	require.Len(t, m.Entities, 1)
	assert.Equal(t, 3, m.Entities[0].Offset)
	assert.Equal(t, 3, m.Entities[0].Length)
}

func TestMarkdownKeepsEscapedMarkers(t *testing.T) {
	m := Markdown(`a\_b\_c \*x\* \# **bold\\**`)
	assert.Equal(t, `a_b_c *x* # bold\`, m.Text)
	require.Len(t, m.Entities, 1)
	assert.Equal(t, 12, m.Entities[0].Offset)
	assert.Equal(t, 5, m.Entities[0].Length)

	assert.Equal(t, `Vitamin\_D\_3 \*2\*`, Escape("Vitamin_D_3 *2*"))
}

func TestUserTitlesSurviveMarkdown(t *testing.T) {
	inst := models.Instance{
		DisplayTime: "08:00",
		Title:       "Vitamin_D_3",
		SourceReminder: &models.ReminderDefinition{
			Instructions: "*after* food",
		},
	}
	m := Markdown(InstanceLine(inst))
	assert.Equal(t, "⏰ 08:00 Vitamin_D_3 (*after* food)", m.Text)
	require.Len(t, m.Entities, 1)
	assert.Equal(t, "code", m.Entities[0].Type)

	def := models.ReminderDefinition{ID: "7", Title: "__Fish_oil__", Time: "09:00", Frequency: "Daily", Date: "2024-02-01"}
	m = Markdown(DefinitionLine(def))
	assert.Contains(t, m.Text, "__Fish_oil__ · ")
	require.Len(t, m.Entities, 2)
	assert.Equal(t, "code", m.Entities[0].Type)
	assert.Equal(t, "italic", m.Entities[1].Type)
	assert.Equal(t, 2, m.Entities[1].Offset)
	assert.Equal(t, 12, m.Entities[1].Length)
}

func TestInstanceLine(t *testing.T) {
	taken := time.Date(2024, 1, 1, 8, 5, 0, 0, time.UTC)
	inst := models.Instance{
		DisplayTime: "08:00",
		Status:      models.StatusTaken,
		TakenAt:     &taken,
		Title:       "Multivitamin",
		At:          time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC),
		HasTime:     true,
		SourceReminder: &models.ReminderDefinition{
			Instructions: "with food",
			IsImportant:  true,
		},
	}
	assert.Equal(t, "✅ `08:00` Multivitamin (with food) ❗ · 08:05 服用", InstanceLine(inst))

	inst.Status = models.StatusUpcoming
	inst.DisplayTime = ""
	inst.SourceReminder = nil
	assert.Equal(t, "⏰ `--:--` Multivitamin", InstanceLine(inst))
}

func TestDayList(t *testing.T) {
	assert.Contains(t, DayList("2024-01-01", nil), "沒有")

	out := DayList("2024-01-01", []models.Instance{
		{DisplayTime: "08:00", Status: models.StatusMissed, Title: "A"},
		{DisplayTime: "20:00", Status: models.StatusUpcoming, Title: "B"},
	})
	assert.Contains(t, out, "2024-01-01")
	assert.Contains(t, out, "❌ `08:00` A\n")
	assert.Contains(t, out, "⏰ `20:00` B\n")
}

func TestDefinitionLine(t *testing.T) {
	days := 7
	def := models.ReminderDefinition{
		ID:    "0f3c2b1a-aaaa-bbbb-cccc-000000000000",
		Title: "Vitamin",
		Schedule: &models.RecurringSchedule{
			Window: models.Window{StartDate: "2024-01-01", DurationDays: &days},
			Slots:  []string{"breakfast", "dinner"},
			Times:  map[string]string{"breakfast": "08:00", "dinner": "20:00"},
		},
	}
	assert.Equal(t, "`0f3c2b1a` *Vitamin* · 每天 breakfast 08:00, dinner 20:00 · 自 2024-01-01 共 7 天", DefinitionLine(def))

	basic := models.ReminderDefinition{ID: "7", Title: "Pill", Date: "2024-02-01", Time: "09:00", Frequency: "Every 8 Hours"}
	assert.Equal(t, "`7` *Pill* · every 8 hours @ 09:00 · 自 2024-02-01", DefinitionLine(basic))

	basic.ID = ""
	assert.Equal(t, "*Pill* · every 8 hours @ 09:00 · 自 2024-02-01", DefinitionLine(basic))
}

func TestReportText(t *testing.T) {
	out := ReportText(&history.Report{
		From: "2024-01-01", To: "2024-01-31",
		Taken: 3, Missed: 1,
		Days: []history.DayStats{{Date: "2024-01-02", Missed: 1}},
	})
	assert.Contains(t, out, "遵從率: *75%*")
	assert.Contains(t, out, "錯過的日子: 2024-01-02 (1)")

	empty := ReportText(&history.Report{From: "2024-01-01", To: "2024-01-31"})
	assert.Contains(t, empty, "尚無資料")
}
