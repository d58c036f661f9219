// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dataset

import (
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/pdiddy/qa-synth/pkg/types"
)

// Summary describes a dataset.
type Summary struct {
	Total        int                      `json:"total" yaml:"total"`
	ByDifficulty map[types.Difficulty]int `json:"by_difficulty" yaml:"by_difficulty"`
	ByTopic      map[string]int           `json:"by_topic" yaml:"by_topic"`
	Scored       int                      `json:"scored" yaml:"scored"`
	MeanScore    float64                  `json:"mean_score" yaml:"mean_score"`
	MinScore     float64                  `json:"min_score" yaml:"min_score"`
	MaxScore     float64                  `json:"max_score" yaml:"max_score"`
	Duplicates   int                      `json:"duplicate_questions" yaml:"duplicate_questions"`
	FirstID      int                      `json:"first_id" yaml:"first_id"`
	LastID       int                      `json:"last_id" yaml:"last_id"`
	IDGaps       int                      `json:"id_gaps" yaml:"id_gaps"`
}

// Summarize computes counts and score statistics for items. Duplicates
// counts records whose input exactly repeats an earlier one; IDGaps counts
// ids missing between FirstID and LastID.
func Summarize(items []types.QAItem) Summary {
	s := Summary{
		Total:        len(items),
		ByDifficulty: map[types.Difficulty]int{},
		ByTopic:      map[string]int{},
	}
	if len(items) == 0 {
		return s
	}

	seen := make(map[string]bool, len(items))
	ids := make(map[int]bool, len(items))
	s.FirstID, s.LastID = items[0].ID, items[0].ID
	s.MinScore, s.MaxScore = math.Inf(1), math.Inf(-1)
	var sum float64

	for _, it := range items {
		s.ByDifficulty[it.Difficulty]++
		s.ByTopic[it.Topic]++
		if seen[it.Input] {
			s.Duplicates++
		}
		seen[it.Input] = true
		ids[it.ID] = true
		s.FirstID = min(s.FirstID, it.ID)
		s.LastID = max(s.LastID, it.ID)
		if it.Score != nil {
			s.Scored++
			sum += *it.Score
			s.MinScore = math.Min(s.MinScore, *it.Score)
			s.MaxScore = math.Max(s.MaxScore, *it.Score)
		}
	}

	if s.Scored > 0 {
		s.MeanScore = sum / float64(s.Scored)
	} else {
		s.MinScore, s.MaxScore = 0, 0
	}
	s.IDGaps = (s.LastID - s.FirstID + 1) - len(ids)
	return s
}

// WriteText prints s in the plain layout used by the stats command.
func (s Summary) WriteText(w io.Writer) {
	fmt.Fprintf(w, "items:      %d\n", s.Total)
	if s.Total == 0 {
		return
	}
	fmt.Fprintf(w, "ids:        %d..%d (gaps: %d)\n", s.FirstID, s.LastID, s.IDGaps)
	fmt.Fprintf(w, "duplicates: %d\n", s.Duplicates)
	if s.Scored > 0 {
		fmt.Fprintf(w, "score:      mean %.2f, min %.1f, max %.1f (%d scored)\n",
			s.MeanScore, s.MinScore, s.MaxScore, s.Scored)
	}

	fmt.Fprintln(w, "difficulty:")
	for _, d := range types.DefaultDifficulties {
		if n := s.ByDifficulty[d]; n > 0 {
			fmt.Fprintf(w, "  %-8s %d\n", d, n)
		}
	}

	topics := make([]string, 0, len(s.ByTopic))
	for t := range s.ByTopic {
		topics = append(topics, t)
	}
	sort.Strings(topics)
	fmt.Fprintln(w, "topics:")
	for _, t := range topics {
		fmt.Fprintf(w, "  %s: %d\n", t, s.ByTopic[t])
	}
}
