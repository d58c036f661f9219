// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package capability

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/pdiddy/qa-synth/pkg/types"
)

// Markers that separate the question from the answer in a writer reply.
var (
	answerMarkers   = []string{"Answer:", "答：", "答案："}
	questionMarkers = []string{"Question:", "问：", "问题："}
)

const maxScore = 10.0

// stripFences removes a surrounding Markdown code fence (```json ... ```).
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		s = ""
	}
	s = strings.TrimSpace(s)
	return strings.TrimSpace(strings.TrimSuffix(s, "```"))
}

// parseOutline decodes a JSON array of outline nodes. Nodes without a
// section heading make the whole reply a fallback.
func parseOutline(raw string) Outcome[[]types.OutlineNode] {
	var nodes []types.OutlineNode
	if err := json.Unmarshal([]byte(stripFences(raw)), &nodes); err != nil {
		return Fallback[[]types.OutlineNode](raw)
	}
	for _, n := range nodes {
		if strings.TrimSpace(n.Section) == "" {
			return Fallback[[]types.OutlineNode](raw)
		}
	}
	return Parsed(nodes, raw)
}

// parseQA splits a writer reply at the first answer marker and strips a
// leading question marker. A reply without an answer marker is a fallback.
func parseQA(raw string) Outcome[QAPair] {
	idx, marker := -1, ""
	for _, m := range answerMarkers {
		if i := strings.Index(raw, m); i >= 0 && (idx < 0 || i < idx) {
			idx, marker = i, m
		}
	}
	if idx < 0 {
		return Fallback[QAPair](raw)
	}

	question := strings.TrimSpace(raw[:idx])
	for _, m := range questionMarkers {
		question = strings.ReplaceAll(question, m, "")
	}
	return Parsed(QAPair{
		Question: strings.TrimSpace(question),
		Answer:   strings.TrimSpace(raw[idx+len(marker):]),
	}, raw)
}

// PairOf returns the pair carried by o. A fallback treats the whole reply as
// the question with an empty answer.
func PairOf(o Outcome[QAPair]) QAPair {
	if o.Ok() {
		return o.Value
	}
	return QAPair{Question: strings.TrimSpace(o.Raw)}
}

// score accepts a JSON number or a numeric string.
type score float64

func (s *score) UnmarshalJSON(b []byte) error {
	var f float64
	if err := json.Unmarshal(b, &f); err == nil {
		*s = score(f)
		return nil
	}
	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return fmt.Errorf("score is neither number nor string: %s", b)
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(str), 64)
	if err != nil {
		return fmt.Errorf("parsing score %q: %w", str, err)
	}
	*s = score(f)
	return nil
}

type reviewReply struct {
	Score  *score `json:"score"`
	Review string `json:"review"`
}

// parseReview decodes {"score": ..., "review": ...}. A missing score counts
// as 0; scores are clamped into [0, 10].
func parseReview(raw string) Outcome[Review] {
	body := stripFences(raw)
	if !strings.HasPrefix(body, "{") {
		return Fallback[Review](raw)
	}
	var rr reviewReply
	if err := json.Unmarshal([]byte(body), &rr); err != nil {
		return Fallback[Review](raw)
	}
	var v float64
	if rr.Score != nil {
		v = float64(*rr.Score)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Fallback[Review](raw)
	}
	v = math.Max(0, math.Min(maxScore, v))
	return Parsed(Review{Score: v, Text: rr.Review}, raw)
}

// ReviewOf returns the review carried by o. A fallback scores 0 and keeps
// the raw reply as the review text.
func ReviewOf(o Outcome[Review]) Review {
	if o.Ok() {
		return o.Value
	}
	return Review{Score: 0, Text: o.Raw}
}
