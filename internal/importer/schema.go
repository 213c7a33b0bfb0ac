package importer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
)

// DecompositionSchema is the backend's decomposition JSON.
type DecompositionSchema struct {
	Epics               []EpicImport `json:"epics"`
	TotalEstimatedHours FlexFloat    `json:"total_estimated_hours"`
	TimelineWeeks       FlexFloat    `json:"timeline_weeks"`
	RunID               string       `json:"run_id"`
	GeneratedAt         string       `json:"generated_at"`
	SchemaVersion       string       `json:"schema_version"`
	Warnings            []string     `json:"warnings,omitempty"`
}

type EpicImport struct {
	ID             string        `json:"id"`
	Title          string        `json:"title"`
	Description    string        `json:"description"`
	Priority       string        `json:"priority"`
	EstimatedHours FlexFloat     `json:"estimated_hours"`
	Status         string        `json:"status"`
	Team           string        `json:"team"`
	Labels         []string      `json:"labels,omitempty"`
	Stories        []StoryImport `json:"stories"`
}

type StoryImport struct {
	ID                 string          `json:"id"`
	Title              string          `json:"title"`
	Description        string          `json:"description"`
	AcceptanceCriteria []string        `json:"acceptance_criteria,omitempty"`
	Priority           string          `json:"priority"`
	EstimatedHours     FlexFloat       `json:"estimated_hours"`
	Status             string          `json:"status"`
	Team               string          `json:"team"`
	StoryPoints        FlexFloat       `json:"story_points"`
	Subtasks           []SubtaskImport `json:"subtasks"`
}

type SubtaskImport struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Priority       string    `json:"priority"`
	EstimatedHours FlexFloat `json:"estimated_hours"`
	Status         string    `json:"status"`
	Team           string    `json:"team"`
}

// FlexFloat decodes a number leniently. Numbers and numeric strings are
// kept; null, booleans, objects and unparseable strings decode as absent
// instead of failing the whole document.
type FlexFloat struct {
	Value *float64
}

func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	f.Value = nil
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil
		}
		f.Value = &v
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		var v float64
		if err := json.Unmarshal(data, &v); err != nil {
			return nil
		}
		f.Value = &v
	}
	return nil
}

func (f FlexFloat) MarshalJSON() ([]byte, error) {
	if f.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*f.Value)
}

// Parse decodes a decomposition payload.
func Parse(data []byte) (*DecompositionSchema, error) {
	var schema DecompositionSchema
	if err := json.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("parsing decomposition: %w", err)
	}
	return &schema, nil
}

// LoadFile reads and parses a decomposition JSON file.
func LoadFile(path string) (*DecompositionSchema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}
