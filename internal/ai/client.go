package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sashabaranov/go-openai"
)

type Client struct {
	client *openai.Client
	model  string
}

func New(apiKey, baseURL, model string) *Client {
	config := openai.DefaultConfig(apiKey)
	config.BaseURL = baseURL

	return &Client{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}
}

func (c *Client) SetModel(model string) {
	c.model = model
}

const systemPromptTemplate = `你是 DoseLine 的用藥提醒助理，負責把用戶的自然語言描述轉換成結構化的提醒草稿。

當前時間: %s

action:
- create_reminder: 用戶想新增提醒
- unknown: 無法識別或只是閒聊

欄位說明：
- title: 提醒標題，例如藥名
- type: 分類，例如 medication、supplement、appointment
- instructions: 服用說明，例如「飯後」「配水」
- is_important: 錯過會有風險時為 true（例如胰島素），睡眠時段也會通知
- start_date: 開始日期 (YYYY-MM-DD)，未提及時使用今天
- duration_days: 療程天數，未提及時為 0
- time: 單一時間 (HH:MM, 24 小時制)
- frequency: "Once"、"Daily"、"Weekly"、以逗號分隔的星期 (例如 "Mon, Wed, Fri") 或 "Every N Hours"
- slots: 一天多次的療程，例如早餐與晚餐，每個 slot 有 name 與 time (HH:MM)；有 slots 時 time 與 frequency 留空
- reply: 給用戶的簡短回覆

規則：
1. 相對時間（「明天」「下週一」）請換算成具體日期。
2. 「每 N 小時」使用 frequency = "Every N Hours"，time 為第一次服用時間。
3. 「早晚各一次」「三餐飯後」等使用 slots。
4. 資訊不足時 action 設為 unknown，並在 reply 中追問。`

func systemPrompt(now time.Time) string {
	return fmt.Sprintf(systemPromptTemplate, now.Format("2006-01-02 15:04 (Monday)"))
}

// JSON Schema for structured output
var draftSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"action": {"type": "string", "enum": ["create_reminder", "unknown"]},
		"title": {"type": "string"},
		"type": {"type": "string"},
		"instructions": {"type": "string"},
		"is_important": {"type": "boolean"},
		"start_date": {"type": "string", "description": "YYYY-MM-DD"},
		"duration_days": {"type": "integer", "minimum": 0},
		"time": {"type": "string", "description": "HH:MM"},
		"frequency": {"type": "string"},
		"slots": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"name": {"type": "string"},
					"time": {"type": "string", "description": "HH:MM"}
				},
				"required": ["name", "time"],
				"additionalProperties": false
			}
		},
		"reply": {"type": "string"}
	},
	"required": ["action", "title", "type", "instructions", "is_important", "start_date", "duration_days", "time", "frequency", "slots", "reply"],
	"additionalProperties": false
}`)

// ParseReminder asks the model to turn text into a reminder draft.
func (c *Client) ParseReminder(ctx context.Context, text string, now time.Time) (*Draft, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt(now),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: text,
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   "reminder_draft",
				Schema: draftSchema,
				Strict: true,
			},
		},
		Temperature: 0.1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to call AI API: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from AI")
	}

	content := resp.Choices[0].Message.Content
	draft := &Draft{RawResponse: content}
	if err := json.Unmarshal([]byte(content), draft); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w", err)
	}
	return draft, nil
}
