// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package grade

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"text/template"

	"github.com/pdiddy/statute-engine/pkg/types"
)

// judgePromptTmpl asks the model, in Vietnamese, to grade one answer
// against the statute excerpt and respond with a bare JSON object.
var judgePromptTmpl = template.Must(template.New("judge").Parse(`Bạn là giám khảo chấm câu trả lời cho các câu hỏi về văn bản luật Việt Nam.

Câu hỏi:
{{.Question}}

Câu trả lời cần chấm:
{{.Answer}}

Căn cứ tham chiếu (trích từ văn bản luật):
{{.Reference}}

Đánh giá câu trả lời theo các tiêu chí sau:
- is_correct: true nếu nội dung trả lời đúng với căn cứ tham chiếu
- reasoning_level_correct: true nếu mức độ lập luận phù hợp với yêu cầu của câu hỏi
- insufficient_correct: true nếu câu trả lời nhận định đúng rằng căn cứ không đủ để trả lời (false nếu không áp dụng)
- issues: danh sách vấn đề của câu trả lời, mảng chuỗi, để rỗng nếu không có
- score: điểm từ 0 đến 10
- comment: nhận xét ngắn gọn

Chỉ trả về một đối tượng JSON với đầy đủ các trường trên, không kèm văn bản nào khác.

Ví dụ:
{"is_correct": true, "reasoning_level_correct": true, "insufficient_correct": false, "issues": [], "score": 9, "comment": "Trả lời đúng và đầy đủ."}
`))

func renderJudgePrompt(rec types.QARecord) (string, error) {
	var buf bytes.Buffer
	if err := judgePromptTmpl.Execute(&buf, rec); err != nil {
		return "", fmt.Errorf("rendering judge prompt: %w", err)
	}
	return buf.String(), nil
}

// claudeAPIURL is a package variable so tests can substitute a local
// HTTP server.
var claudeAPIURL = "https://api.anthropic.com/v1/messages"

// ClaudeBackend implements Backend using the Anthropic Messages API.
type ClaudeBackend struct {
	APIKey string
	Model  string
	Client *http.Client
}

type claudeRequest struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens"`
	Messages  []claudeMessage `json:"messages"`
}

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeResponse struct {
	Content []claudeContent `json:"content"`
}

type claudeContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Complete sends the prompt as a single user message and returns the
// concatenated text blocks of the response.
func (c *ClaudeBackend) Complete(ctx context.Context, prompt string) (string, error) {
	reqBody := claudeRequest{
		Model:     c.Model,
		MaxTokens: 4096,
		Messages: []claudeMessage{
			{Role: "user", Content: prompt},
		},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, claudeAPIURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.APIKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}

	var cResp claudeResponse
	if err := json.NewDecoder(resp.Body).Decode(&cResp); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}

	var text strings.Builder
	for _, block := range cResp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return "", fmt.Errorf("empty response from API")
	}
	return text.String(), nil
}
