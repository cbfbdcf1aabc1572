package question

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
)

// ErrInvalidSpec is returned by Spec.Validate. Wrapped errors carry the
// specific reason.
var ErrInvalidSpec = errors.New("invalid question spec")

// ratioTolerance is how far a ratio set may drift from summing to 1.
const ratioTolerance = 0.01

// Distribution is the target share of each question type.
type Distribution struct {
	SingleChoice float64 `json:"single_choice"`
	FillIn       float64 `json:"fill_in"`
	FreeResponse float64 `json:"free_response"`
}

var (
	// PracticeDistribution is the type mix for practice sets.
	PracticeDistribution = Distribution{SingleChoice: 0.4, FillIn: 0.3, FreeResponse: 0.3}
	// AssessmentDistribution is the type mix for assessments.
	AssessmentDistribution = Distribution{SingleChoice: 0.6, FillIn: 0.2, FreeResponse: 0.2}
)

func (d Distribution) ratios() []float64 {
	return []float64{d.SingleChoice, d.FillIn, d.FreeResponse}
}

// Counts splits n items across types by largest remainder, so the counts
// always add up to n. Ties go to the earlier type.
func (d Distribution) Counts(n int) map[Type]int {
	split := apportion(d.ratios(), n)
	return map[Type]int{SingleChoice: split[0], FillIn: split[1], FreeResponse: split[2]}
}

// DifficultyMix is the target share of each tier for mixed-difficulty sets.
// The zero value means every item uses Spec.Difficulty.
type DifficultyMix struct {
	Basic        float64 `json:"basic"`
	Intermediate float64 `json:"intermediate"`
	Hard         float64 `json:"hard"`
}

// AssessmentDifficultyMix is the tier mix for assessments.
var AssessmentDifficultyMix = DifficultyMix{Basic: 0.5, Intermediate: 0.3, Hard: 0.2}

func (m DifficultyMix) ratios() []float64 {
	return []float64{m.Basic, m.Intermediate, m.Hard}
}

// IsZero reports whether no mix is set.
func (m DifficultyMix) IsZero() bool {
	return m == DifficultyMix{}
}

// Counts splits n items across tiers by largest remainder.
func (m DifficultyMix) Counts(n int) map[Difficulty]int {
	split := apportion(m.ratios(), n)
	return map[Difficulty]int{Basic: split[0], Intermediate: split[1], Hard: split[2]}
}

func apportion(ratios []float64, n int) []int {
	out := make([]int, len(ratios))
	var sum float64
	for _, r := range ratios {
		sum += r
	}
	if n <= 0 || sum <= 0 {
		return out
	}

	rem := make([]float64, len(ratios))
	assigned := 0
	for i, r := range ratios {
		exact := r / sum * float64(n)
		out[i] = int(math.Floor(exact))
		rem[i] = exact - float64(out[i])
		assigned += out[i]
	}
	for ; assigned < n; assigned++ {
		best := 0
		for i := range rem {
			if rem[i] > rem[best] {
				best = i
			}
		}
		out[best]++
		rem[best] = -1
	}
	return out
}

// Spec describes the questions to generate. It is treated as immutable;
// the With* methods return modified copies.
type Spec struct {
	Topic         string        `json:"topic"`
	Chapter       string        `json:"chapter,omitempty"`
	Grade         string        `json:"grade,omitempty"`
	Topics        []string      `json:"topics,omitempty"`
	Difficulty    Difficulty    `json:"difficulty"`
	DifficultyMix DifficultyMix `json:"difficulty_mix,omitzero"`
	Count         int           `json:"count"`
	Distribution  Distribution  `json:"distribution"`
	Exclude       []string      `json:"exclude,omitempty"`
}

// PracticeSpec returns a single-tier practice spec for one topic.
func PracticeSpec(topic string, d Difficulty, count int) Spec {
	return Spec{
		Topic:        topic,
		Difficulty:   d,
		Count:        count,
		Distribution: PracticeDistribution,
	}
}

// AssessmentSpec returns a mixed-tier assessment spec covering a chapter.
func AssessmentSpec(chapter string, topics []string, grade string, count int) Spec {
	return Spec{
		Topic:         chapter,
		Chapter:       chapter,
		Grade:         grade,
		Topics:        slices.Clone(topics),
		Difficulty:    Basic,
		DifficultyMix: AssessmentDifficultyMix,
		Count:         count,
		Distribution:  AssessmentDistribution,
	}
}

// Validate checks s before any model call is made.
func (s Spec) Validate() error {
	if strings.TrimSpace(s.Topic) == "" {
		return fmt.Errorf("%w: topic is blank", ErrInvalidSpec)
	}
	if s.Count < 1 {
		return fmt.Errorf("%w: count must be at least 1, got %d", ErrInvalidSpec, s.Count)
	}
	if !s.Difficulty.Valid() {
		return fmt.Errorf("%w: unknown difficulty %d", ErrInvalidSpec, int(s.Difficulty))
	}
	if err := checkRatios("distribution", s.Distribution.ratios()); err != nil {
		return err
	}
	if !s.DifficultyMix.IsZero() {
		if err := checkRatios("difficulty mix", s.DifficultyMix.ratios()); err != nil {
			return err
		}
	}
	return nil
}

func checkRatios(name string, ratios []float64) error {
	var sum float64
	for _, r := range ratios {
		if r < 0 {
			return fmt.Errorf("%w: %s has a negative ratio %g", ErrInvalidSpec, name, r)
		}
		sum += r
	}
	if math.Abs(sum-1) > ratioTolerance {
		return fmt.Errorf("%w: %s sums to %g, want 1", ErrInvalidSpec, name, sum)
	}
	return nil
}

// WithCount returns a copy of s requesting n questions.
func (s Spec) WithCount(n int) Spec {
	s.Topics = slices.Clone(s.Topics)
	s.Exclude = slices.Clone(s.Exclude)
	s.Count = n
	return s
}

// WithExclusions returns a copy of s whose exclusion list is extended with
// texts.
func (s Spec) WithExclusions(texts []string) Spec {
	s.Topics = slices.Clone(s.Topics)
	s.Exclude = append(slices.Clone(s.Exclude), texts...)
	return s
}
