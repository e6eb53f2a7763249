package advisor

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"facility-logbook-backend/config"
	"facility-logbook-backend/internal/model"
)

// KeyFunc supplies the current API key. The key is shared across devices
// through the bridge's config store, so it can change between calls.
type KeyFunc func(ctx context.Context) string

// Advisor is the generative-advice collaborator. It is strictly best-effort:
// a missing key or any transport failure degrades to a neutral response and
// is never surfaced as an API error to the UI.
type Advisor struct {
	cfg config.AdvisorConfig
	key KeyFunc
}

// Anomaly is the structured verdict for one refrigeration reading.
type Anomaly struct {
	IsAnomaly bool   `json:"isAnomaly"`
	Message   string `json:"message"`
}

func New(cfg config.AdvisorConfig, key KeyFunc) *Advisor {
	return &Advisor{cfg: cfg, key: key}
}

func (a *Advisor) apiKey(ctx context.Context) string {
	if a.key != nil {
		if k := a.key(ctx); k != "" {
			return k
		}
	}
	return a.cfg.APIKey
}

func (a *Advisor) client(ctx context.Context) (openai.Client, bool) {
	key := a.apiKey(ctx)
	if key == "" {
		return openai.Client{}, false
	}
	opts := []option.RequestOption{option.WithAPIKey(key)}
	if a.cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(a.cfg.BaseURL))
	}
	return openai.NewClient(opts...), true
}

func (a *Advisor) complete(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion) (string, error) {
	client, ok := a.client(ctx)
	if !ok {
		return "", fmt.Errorf("no API key configured")
	}
	resp, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(a.cfg.Model),
		Messages: messages,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty completion response")
	}
	return resp.Choices[0].Message.Content, nil
}

// AnalyzeIssue returns a short troubleshooting guide for a reported
// maintenance issue, optionally grounded on an attached photo.
func (a *Advisor) AnalyzeIssue(ctx context.Context, machineName, issue, photoData, language string) string {
	if a.apiKey(ctx) == "" {
		return "API key not configured."
	}
	if language == "" {
		language = a.cfg.Language
	}

	prompt := fmt.Sprintf(`You are an expert industrial refrigeration technician.
A user reported an issue with machine %q.
Issue description: %q.

%s

Provide a concise, 3-step troubleshooting guide. Focus on safety and practical immediate actions.
If looking at the photo, identify the specific component if possible.`,
		machineName, issue, photoNote(photoData))

	if strings.EqualFold(language, "Myanmar") {
		prompt += "\n\nIMPORTANT: Please provide the response in Myanmar language (Burmese). Use clear, professional terminology suitable for technicians."
	}

	var message openai.ChatCompletionMessageParamUnion
	if photoData != "" {
		message = openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
			openai.TextContentPart(prompt),
			openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
				URL: photoDataURL(photoData),
			}),
		})
	} else {
		message = openai.UserMessage(prompt)
	}

	text, err := a.complete(ctx, []openai.ChatCompletionMessageParamUnion{message})
	if err != nil {
		log.Printf("Advisor issue analysis failed: %v", err)
		return "Could not retrieve AI advice at this time."
	}
	if text == "" {
		return "No advice available."
	}
	return text
}

// DetectAnomaly evaluates one temperature reading against its setpoint.
func (a *Advisor) DetectAnomaly(ctx context.Context, temp, setpoint float64, machineType string) Anomaly {
	if a.apiKey(ctx) == "" {
		return Anomaly{}
	}

	prompt := fmt.Sprintf(`Evaluate this refrigeration reading.
Machine Type: %s
Current Temperature: %g°C
Setpoint: %g°C

Is this a dangerous anomaly that requires immediate attention?
Return ONLY a JSON object: {"isAnomaly": <bool>, "message": "<short warning if anomaly, else 'Normal'>"}`,
		machineType, temp, setpoint)

	text, err := a.complete(ctx, []openai.ChatCompletionMessageParamUnion{openai.UserMessage(prompt)})
	if err != nil {
		log.Printf("Advisor anomaly check failed: %v", err)
		return Anomaly{}
	}

	var verdict Anomaly
	if err := json.Unmarshal([]byte(stripFences(text)), &verdict); err != nil {
		log.Printf("Advisor anomaly response was not valid JSON: %v", err)
		return Anomaly{}
	}
	return verdict
}

// DailyReport summarizes a machine's recent logs.
func (a *Advisor) DailyReport(ctx context.Context, machine model.Machine, recent []model.LogRecord) string {
	if a.apiKey(ctx) == "" {
		return "API key not configured."
	}

	type entry struct {
		Time     string   `json:"time"`
		Temp     *float64 `json:"temp,omitempty"`
		Setpoint *float64 `json:"setpoint,omitempty"`
		Issue    *string  `json:"issue,omitempty"`
	}
	entries := make([]entry, 0, len(recent))
	for _, rec := range recent {
		e := entry{Time: rec.Timestamp.UTC().Format("2006-01-02T15:04:05Z07:00")}
		switch rec.RecordType {
		case model.RecordTemperature:
			e.Temp = rec.CurrentTemp
			e.Setpoint = rec.SetpointTemp
		case model.RecordMaintenance:
			e.Issue = rec.IssueDescription
		default:
			continue
		}
		entries = append(entries, e)
	}
	blob, _ := json.Marshal(entries)

	prompt := fmt.Sprintf(`Analyze these recent logs for %s (%s).
Default Setpoint: %g.

Logs:
%s

Provide a brief 1-paragraph summary of the machine's health and any recommendations in %s.`,
		machine.Name, machine.Type, machine.DefaultSetpoint, blob, a.cfg.Language)

	text, err := a.complete(ctx, []openai.ChatCompletionMessageParamUnion{openai.UserMessage(prompt)})
	if err != nil {
		log.Printf("Advisor daily report failed: %v", err)
		return "Error generating report."
	}
	if text == "" {
		return "No report generated."
	}
	return text
}

func photoNote(photoData string) string {
	if photoData == "" {
		return ""
	}
	return "The user has also attached a photo of the issue (see attached)."
}

func photoDataURL(photoData string) string {
	if strings.HasPrefix(photoData, "data:") {
		return photoData
	}
	return "data:image/jpeg;base64," + photoData
}

// stripFences removes markdown code fences some models wrap JSON answers in.
func stripFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}
