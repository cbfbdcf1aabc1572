package question

import (
	"fmt"
	"strings"
)

// Difficulty is an ordered difficulty tier: Basic < Intermediate < Hard.
// The zero value is not a valid tier.
type Difficulty int

const (
	Basic Difficulty = iota + 1
	Intermediate
	Hard
)

// Difficulties lists every tier in ascending order.
var Difficulties = []Difficulty{Basic, Intermediate, Hard}

var difficultyNames = map[Difficulty][2]string{
	Basic:        {"basic", "基础"},
	Intermediate: {"intermediate", "中等"},
	Hard:         {"hard", "困难"},
}

// String returns the wire name ("basic", "intermediate", "hard").
func (d Difficulty) String() string {
	if n, ok := difficultyNames[d]; ok {
		return n[0]
	}
	return fmt.Sprintf("Difficulty(%d)", int(d))
}

// Label returns the Chinese label used in prompts (基础, 中等, 困难).
func (d Difficulty) Label() string {
	if n, ok := difficultyNames[d]; ok {
		return n[1]
	}
	return ""
}

// Valid reports whether d is one of the defined tiers.
func (d Difficulty) Valid() bool {
	_, ok := difficultyNames[d]
	return ok
}

// ParseDifficulty accepts the wire names (case-insensitive) and the
// Chinese labels.
func ParseDifficulty(s string) (Difficulty, error) {
	s = strings.TrimSpace(s)
	for d, n := range difficultyNames {
		if strings.EqualFold(s, n[0]) || s == n[1] {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown difficulty %q", s)
}

func (d Difficulty) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("invalid difficulty %d", int(d))
	}
	return []byte(d.String()), nil
}

func (d *Difficulty) UnmarshalText(b []byte) error {
	v, err := ParseDifficulty(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// Type is the question type.
type Type int

const (
	SingleChoice Type = iota + 1
	FillIn
	FreeResponse
)

// Types lists every question type.
var Types = []Type{SingleChoice, FillIn, FreeResponse}

var typeNames = map[Type][2]string{
	SingleChoice: {"single_choice", "单选"},
	FillIn:       {"fill_in", "填空"},
	FreeResponse: {"free_response", "解答"},
}

func (t Type) String() string {
	if n, ok := typeNames[t]; ok {
		return n[0]
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// Label returns the Chinese label (单选, 填空, 解答).
func (t Type) Label() string {
	if n, ok := typeNames[t]; ok {
		return n[1]
	}
	return ""
}

func (t Type) Valid() bool {
	_, ok := typeNames[t]
	return ok
}

// ParseType accepts the wire names (case-insensitive) and the Chinese labels.
func ParseType(s string) (Type, error) {
	s = strings.TrimSpace(s)
	for t, n := range typeNames {
		if strings.EqualFold(s, n[0]) || s == n[1] {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown question type %q", s)
}

func (t Type) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("invalid question type %d", int(t))
	}
	return []byte(t.String()), nil
}

func (t *Type) UnmarshalText(b []byte) error {
	v, err := ParseType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}
