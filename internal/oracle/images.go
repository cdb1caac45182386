package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"AIHoldem/internal/utils"
)

// 桌面/终局插画。纯装饰，失败统一退回固定占位图，绝不影响游戏逻辑
const (
	ArtTable    = "table"
	ArtGameOver = "gameover"
	ArtVictory  = "victory"

	placeholderURL = "https://picsum.photos/1920/1080?blur=5"
)

var artPrompts = map[string]string{
	ArtTable: "A perfectly centered medium shot of an elegant anime-style poker dealer behind a " +
		"green felt table, seen from the player's perspective. Casino background, elegant and " +
		"vibrant. Art style: high-quality anime, detailed, dynamic lighting, cinematic framing.",
	ArtGameOver: "A funny, cartoonish splash art of a poker player who has lost everything, " +
		"standing with his pockets turned inside out, sad and dejected in a stylized, humorous " +
		"way. A flashy 'GAME OVER' text integrated into the scene. Art style: vibrant caricature.",
	ArtVictory: "A celebratory, high-quality anime splash art of a victorious poker player " +
		"raising a glass of champagne, confetti in the air, with a stylish 'YOU WIN!' text " +
		"integrated into the scene. Art style: vibrant, detailed anime.",
}

// ArtProvider 给定插画类别返回可展示的图片引用
type ArtProvider interface {
	Art(ctx context.Context, kind string) string
}

// ImagenClient 调 imagen predict 生成插画
type ImagenClient struct {
	APIKey  string
	BaseURL string
	Model   string
	HTTP    *http.Client
}

func NewImagen(apiKey, baseURL, model string) *ImagenClient {
	return &ImagenClient{
		APIKey:  apiKey,
		BaseURL: strings.TrimRight(baseURL, "/"),
		Model:   model,
		HTTP:    http.DefaultClient,
	}
}

func (ic *ImagenClient) Art(ctx context.Context, kind string) string {
	prompt, ok := artPrompts[kind]
	if !ok {
		return placeholderURL
	}

	url, err := ic.predict(ctx, prompt)
	if err != nil {
		utils.Log.Warn("image generation failed, using placeholder", "kind", kind, "err", err)
		return placeholderURL
	}
	return url
}

type predictRequest struct {
	Instances  []predictInstance `json:"instances"`
	Parameters predictParams     `json:"parameters"`
}

type predictInstance struct {
	Prompt string `json:"prompt"`
}

type predictParams struct {
	SampleCount int    `json:"sampleCount"`
	AspectRatio string `json:"aspectRatio"`
}

type predictResponse struct {
	Predictions []struct {
		BytesBase64Encoded string `json:"bytesBase64Encoded"`
		MimeType           string `json:"mimeType"`
	} `json:"predictions"`
}

func (ic *ImagenClient) predict(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(predictRequest{
		Instances:  []predictInstance{{Prompt: prompt}},
		Parameters: predictParams{SampleCount: 1, AspectRatio: "16:9"},
	})
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:predict?key=%s", ic.BaseURL, ic.Model, ic.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := ic.HTTP.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("imagen returned %d", resp.StatusCode)
	}

	var pr predictResponse
	if err := json.Unmarshal(data, &pr); err != nil {
		return "", err
	}
	if len(pr.Predictions) == 0 || pr.Predictions[0].BytesBase64Encoded == "" {
		return "", fmt.Errorf("imagen returned no image")
	}

	mime := pr.Predictions[0].MimeType
	if mime == "" {
		mime = "image/jpeg"
	}
	return fmt.Sprintf("data:%s;base64,%s", mime, pr.Predictions[0].BytesBase64Encoded), nil
}

// StaticArt 无 API key 时的实现：永远返回占位图
type StaticArt struct{}

func (StaticArt) Art(ctx context.Context, kind string) string {
	return placeholderURL
}
