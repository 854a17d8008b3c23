package services

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf16"

	"storefront-backend/internal/models"
)

const (
	maxRecommendations = 6
	minReasonLength    = 12
	recommendTemp      = 0.5
)

const recommendationSystemPrompt = `You are an AI shopping assistant for an e-commerce site.
You must recommend ONLY from the provided product list.
Ignore earlier requests unless the latest message explicitly references them.
Choose products ONLY if they strictly match the user's latest request.
Do NOT suggest related or alternative categories unless explicitly requested.
If a budget is mentioned by the user, do NOT recommend items above the budget.

Hard rules:
- If the user specifies a category/type (e.g. "makeup", "fragrance", "laptop"), recommend ONLY products that match that category/type.
- If the user specifies a max price (e.g. under $50), recommend ONLY products with price <= that max.
- If no matching products exist, return an assistant_message explaining that nothing matches and include an empty recommendations array.
- Recommend 3 to 6 items.
- Reasons must mention why it matches the user's need (budget, category, use-case).
- Use only IDs from the provided list.
- Do not include any extra keys or any text outside JSON.

Return STRICT JSON with this shape:
{
  "assistant_message": "string",
  "recommendations": [
    { "id": number, "reason": "short reason referencing the request" }
  ]
}`

type recommendationPayload struct {
	UserMessage      string                    `json:"user_message"`
	InferredCategory *string                   `json:"inferred_category"`
	BudgetMax        *float64                  `json:"budget_max"`
	Products         []models.CandidateProduct `json:"products"`
}

// buildRecommendationRequest puts prior turns (oldest first) ahead of the
// current request, which travels as a JSON document the model must answer.
func buildRecommendationRequest(message string, intent Intent, products []models.CandidateProduct, history []ChatTurn) (ChatRequest, error) {
	payload, err := json.Marshal(recommendationPayload{
		UserMessage:      message,
		InferredCategory: intent.InferredCategory,
		BudgetMax:        intent.BudgetMax,
		Products:         products,
	})
	if err != nil {
		return ChatRequest{}, err
	}

	turns := make([]ChatTurn, 0, len(history)+1)
	turns = append(turns, history...)
	turns = append(turns, ChatTurn{Role: models.RoleUser, Content: string(payload)})

	return ChatRequest{
		System:      recommendationSystemPrompt,
		Messages:    turns,
		Temperature: recommendTemp,
		JSON:        true,
	}, nil
}

// recommendationReply is the model's answer before sanitizing.
type recommendationReply struct {
	AssistantMessage string
	Recommendations  interface{}
}

// parseRecommendationReply decodes the model's JSON. Malformed or empty text is
// an error; a well-formed document of the wrong shape yields an empty reply.
func parseRecommendationReply(content string) (*recommendationReply, error) {
	content = stripCodeFence(content)

	var doc interface{}
	if err := json.Unmarshal([]byte(content), &doc); err != nil {
		return nil, fmt.Errorf("assistant returned invalid JSON: %w", err)
	}

	reply := &recommendationReply{}
	obj, ok := doc.(map[string]interface{})
	if !ok {
		return reply, nil
	}
	if msg, ok := obj["assistant_message"]; ok && msg != nil {
		reply.AssistantMessage = jsString(msg)
	}
	reply.Recommendations = obj["recommendations"]
	return reply, nil
}

// SanitizeRecommendations keeps at most six of the model's picks, each naming
// a candidate id and carrying a reason of at least twelve characters.
func SanitizeRecommendations(raw interface{}, candidates []models.CandidateProduct) []models.Recommendation {
	out := make([]models.Recommendation, 0)

	items, ok := raw.([]interface{})
	if !ok {
		return out
	}
	if len(items) > maxRecommendations {
		items = items[:maxRecommendations]
	}

	allowed := make(map[int64]struct{}, len(candidates))
	for _, c := range candidates {
		allowed[c.ID] = struct{}{}
	}

	for _, item := range items {
		id, reason := coerceRecommendation(item)
		if math.IsNaN(id) || math.IsInf(id, 0) || id != math.Trunc(id) {
			continue
		}
		if _, ok := allowed[int64(id)]; !ok {
			continue
		}
		if utf16Len(reason) < minReasonLength {
			continue
		}
		out = append(out, models.Recommendation{ID: int64(id), Reason: reason})
	}
	return out
}

func coerceRecommendation(item interface{}) (float64, string) {
	obj, ok := item.(map[string]interface{})
	if !ok {
		return math.NaN(), ""
	}

	id := math.NaN()
	if v, present := obj["id"]; present {
		id = jsNumber(v)
	}

	reason := ""
	if v := obj["reason"]; v != nil {
		reason = strings.TrimSpace(jsString(v))
	}
	return id, reason
}

// jsNumber converts a decoded JSON value the way JavaScript's Number() does:
// numeric strings parse, booleans become 1 or 0, null becomes 0, arrays go
// through their comma-joined string form and objects are NaN.
func jsNumber(v interface{}) float64 {
	switch t := v.(type) {
	case nil:
		return 0
	case float64:
		return t
	case bool:
		if t {
			return 1
		}
		return 0
	case string:
		return parseJSNumber(strings.TrimSpace(t))
	case []interface{}:
		return parseJSNumber(strings.TrimSpace(jsString(t)))
	default:
		return math.NaN()
	}
}

func parseJSNumber(s string) float64 {
	switch s {
	case "":
		return 0
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}
	if strings.Contains(s, "_") {
		return math.NaN()
	}
	if len(s) > 2 && s[0] == '0' && strings.ContainsAny(s[1:2], "xXoObB") {
		n, err := strconv.ParseUint(s, 0, 64)
		if err != nil {
			return math.NaN()
		}
		return float64(n)
	}
	// ParseFloat also takes "inf", "nan" and hex floats, none of which count.
	if strings.IndexFunc(s, func(r rune) bool { return unicode.IsLetter(r) && r != 'e' && r != 'E' }) >= 0 {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

func jsString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case []interface{}:
		parts := make([]string, len(t))
		for i, e := range t {
			if e != nil {
				parts[i] = jsString(e)
			}
		}
		return strings.Join(parts, ",")
	default:
		return "[object Object]"
	}
}

// utf16Len measures s in UTF-16 code units, the unit JavaScript string
// lengths count.
func utf16Len(s string) int {
	return len(utf16.Encode([]rune(s)))
}

// recommendationIDs lists the ids in pick order.
func recommendationIDs(recs []models.Recommendation) []int64 {
	ids := make([]int64, 0, len(recs))
	for _, r := range recs {
		ids = append(ids, r.ID)
	}
	return ids
}
