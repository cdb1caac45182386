package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"AIHoldem/internal/game/table"
	"AIHoldem/internal/utils"
)

// GeminiClient 通过 REST generateContent 调 Gemini，
// 同时充当 DealerBrain 和 Judge。响应统一约束成 JSON schema，
// 但解析出来的内容仍按不可信输入对待，清洗在 engine 侧做
type GeminiClient struct {
	APIKey  string
	BaseURL string
	Model   string
	HTTP    *http.Client
}

func NewGemini(apiKey, baseURL, model string) *GeminiClient {
	return &GeminiClient{
		APIKey:  apiKey,
		BaseURL: strings.TrimRight(baseURL, "/"),
		Model:   model,
		HTTP:    http.DefaultClient,
	}
}

const dealerSystemPrompt = `You are a Texas Hold'em expert playing heads-up against a human. ` +
	`Act strategically. Available actions: FOLD, CHECK, CALL, BET, RAISE. ` +
	`You must CHECK when there is no bet to call (amountToCall is 0). ` +
	`You must CALL or FOLD when there is a bet; you may also RAISE. ` +
	`For BET or RAISE give the total amount of your bet for this round, a reasonable size ` +
	`between half pot and full pot, never more chips than you have. ` +
	`Answer with a JSON object with fields 'action' and optionally 'amount'.`

const judgeSystemPrompt = `You are a Texas Hold'em referee. Given the player hand, the dealer hand ` +
	`and the community cards, determine the winner. Answer with a JSON object with three fields: ` +
	`'winner' ('PLAYER', 'DEALER' or 'TIE'), 'winningHandName' (e.g. 'Full House') and ` +
	`'winningHandDescription' (e.g. 'Aces full of kings').`

func cardsToString(cards []table.Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = c.String()
	}
	return strings.Join(parts, ", ")
}

func (g *GeminiClient) Decide(ctx context.Context, req DecisionRequest) (Decision, error) {
	prompt := fmt.Sprintf(`Game State:
- Your Hand: [%s]
- Community Cards: [%s]
- Current Pot: %d chips
- Your Chips: %d
- Opponent's Chips: %d
- Amount to Call: %d chips

What is your action? If you BET or RAISE, what is the total amount of your bet for this round?`,
		cardsToString(req.DealerHand), cardsToString(req.Community),
		req.Pot, req.DealerChips, req.OpponentChips, req.AmountToCall)

	schema := map[string]any{
		"type": "OBJECT",
		"properties": map[string]any{
			"action": map[string]any{
				"type": "STRING",
				"enum": []string{ActionFold, ActionCheck, ActionCall, ActionBet, ActionRaise},
			},
			"amount": map[string]any{"type": "NUMBER"},
		},
		"required": []string{"action"},
	}

	var out Decision
	if err := g.generate(ctx, dealerSystemPrompt, prompt, schema, &out); err != nil {
		return Decision{}, err
	}
	return out, nil
}

func (g *GeminiClient) Evaluate(ctx context.Context, req VerdictRequest) (Verdict, error) {
	prompt := fmt.Sprintf(`Player Hand: [%s]
Dealer Hand: [%s]
Community Cards: [%s]

Who wins?`,
		cardsToString(req.PlayerHand), cardsToString(req.DealerHand), cardsToString(req.Community))

	schema := map[string]any{
		"type": "OBJECT",
		"properties": map[string]any{
			"winner": map[string]any{
				"type": "STRING",
				"enum": []string{WinnerPlayer, WinnerDealer, WinnerTie},
			},
			"winningHandName":        map[string]any{"type": "STRING"},
			"winningHandDescription": map[string]any{"type": "STRING"},
		},
		"required": []string{"winner", "winningHandName", "winningHandDescription"},
	}

	var out Verdict
	if err := g.generate(ctx, judgeSystemPrompt, prompt, schema, &out); err != nil {
		return Verdict{}, err
	}
	return out, nil
}

// ---- generateContent 请求/响应体 ----

type genRequest struct {
	SystemInstruction *genContent  `json:"systemInstruction,omitempty"`
	Contents          []genContent `json:"contents"`
	GenerationConfig  genConfig    `json:"generationConfig"`
}

type genContent struct {
	Parts []genPart `json:"parts"`
}

type genPart struct {
	Text string `json:"text"`
}

type genConfig struct {
	Temperature      float64        `json:"temperature"`
	ResponseMimeType string         `json:"responseMimeType"`
	ResponseSchema   map[string]any `json:"responseSchema"`
}

type genResponse struct {
	Candidates []struct {
		Content struct {
			Parts []genPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// generate 发一次受 schema 约束的请求，把模型输出的 JSON 解到 out
func (g *GeminiClient) generate(ctx context.Context, system, prompt string, schema map[string]any, out any) error {
	body, err := json.Marshal(genRequest{
		SystemInstruction: &genContent{Parts: []genPart{{Text: system}}},
		Contents:          []genContent{{Parts: []genPart{{Text: prompt}}}},
		GenerationConfig: genConfig{
			Temperature:      0.9,
			ResponseMimeType: "application/json",
			ResponseSchema:   schema,
		},
	})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", g.BaseURL, g.Model, g.APIKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.HTTP.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("gemini returned %d: %s", resp.StatusCode, truncate(data, 200))
	}

	var gr genResponse
	if err := json.Unmarshal(data, &gr); err != nil {
		return fmt.Errorf("malformed gemini response: %w", err)
	}
	if len(gr.Candidates) == 0 || len(gr.Candidates[0].Content.Parts) == 0 {
		return fmt.Errorf("gemini returned no candidates")
	}

	text := gr.Candidates[0].Content.Parts[0].Text
	if err := json.Unmarshal([]byte(text), out); err != nil {
		return fmt.Errorf("model output is not the expected JSON: %w", err)
	}
	utils.Log.Debug("gemini responded", "model", g.Model, "text", truncate([]byte(text), 120))
	return nil
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}
