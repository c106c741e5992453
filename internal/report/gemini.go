// Package report generates narrative monthly reports with Gemini.
package report

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"fintrack/internal/core"
)

const DefaultModel = "gemini-1.5-flash"

const (
	systemPrimer = "You are an expert in personal finance management and organisation. " +
		"You help people understand their finances and make better informed financial decisions."
	modelAck     = "Understood! I am ready to analyse the financial data and provide valuable insights."
	promptHeader = "Write a report with insights about my finances, with tips and guidance on how to improve my financial life.\n" +
		"Transactions are separated by semicolons. Each one has the structure {DATE} - {AMOUNT} - {TYPE} - {CATEGORY}. They are:\n"
)

var errEmptyResponse = errors.New("empty response")

// GeminiGenerator implements services.ReportGenerator on top of a primed
// two-turn Gemini chat.
type GeminiGenerator struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewGeminiGenerator(ctx context.Context, apiKey, model string) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}
	if model == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("unable to create Gemini client: %w", err)
	}
	return &GeminiGenerator{client: client, model: client.GenerativeModel(model)}, nil
}

func (g *GeminiGenerator) GenerateReport(ctx context.Context, txs []core.Transaction, customs []core.CustomCategory) (string, error) {
	cs := g.model.StartChat()
	cs.History = History()

	resp, err := cs.SendMessage(ctx, genai.Text(Prompt(txs, customs)))
	if err != nil {
		return "", &core.UpstreamError{Service: "gemini", Err: err}
	}
	text := ResponseText(resp)
	if text == "" {
		return "", &core.UpstreamError{Service: "gemini", Err: errEmptyResponse}
	}
	return text, nil
}

func (g *GeminiGenerator) Close() error {
	return g.client.Close()
}

// History is the priming exchange sent before the prompt.
func History() []*genai.Content {
	return []*genai.Content{
		{Role: "user", Parts: []genai.Part{genai.Text(systemPrimer)}},
		{Role: "model", Parts: []genai.Part{genai.Text(modelAck)}},
	}
}

// Prompt lists every transaction as "date - amount - type - category".
func Prompt(txs []core.Transaction, customs []core.CustomCategory) string {
	entries := make([]string, 0, len(txs))
	for _, t := range txs {
		entries = append(entries, fmt.Sprintf("%s - %s - %s - %s",
			t.Date.Format("2006-01-02"),
			t.Amount.StringFixed(2),
			t.Type,
			core.Label(t.Category, customs),
		))
	}
	return promptHeader + strings.Join(entries, ";")
}

// ResponseText concatenates the text parts of the first candidate.
func ResponseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return strings.TrimSpace(b.String())
}
