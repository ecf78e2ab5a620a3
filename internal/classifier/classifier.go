// Package classifier suggests a department and emergency flag for complaint text.
package classifier

import (
	"context"
	"regexp"
	"strings"

	"github.com/civicvoice/complaint-service/internal/domain"
)

// Result is a classification suggestion. The lifecycle only consumes Department and Emergency.
type Result struct {
	Department     domain.Department `json:"department"`
	Severity       int               `json:"severity"`
	Emergency      bool              `json:"emergency"`
	Tags           []string          `json:"tags"`
	Summary        string            `json:"summary"`
	SuggestedTitle string            `json:"suggested_title"`
}

// Classifier maps a title/description pair to a suggestion.
type Classifier interface {
	Classify(ctx context.Context, title, description string) (*Result, error)
}

type rule struct {
	department domain.Department
	pattern    *regexp.Regexp
}

// Rules are evaluated in order; the first match wins.
var departmentRules = []rule{
	{domain.DepartmentRoads, regexp.MustCompile(`pothole|road|footpath|pavement|bridge|traffic`)},
	{domain.DepartmentSanitation, regexp.MustCompile(`garbage|waste|trash|dustbin|sanit|sewage`)},
	{domain.DepartmentLighting, regexp.MustCompile(`light|lamp|street.*light|dark|bulb`)},
	{domain.DepartmentWater, regexp.MustCompile(`water|pipe|supply|leakage|flood`)},
	{domain.DepartmentParks, regexp.MustCompile(`park|garden|tree|grass|playground`)},
}

var emergencyPattern = regexp.MustCompile(`emergency|danger|hazard|accident|injur|fire|electric|wire`)

const (
	emergencySeverity = 8
	defaultSeverity   = 4
)

// Keyword is the offline keyword classifier.
type Keyword struct{}

// NewKeyword constructs the keyword classifier.
func NewKeyword() *Keyword {
	return &Keyword{}
}

// Classify never fails.
func (k *Keyword) Classify(_ context.Context, title, description string) (*Result, error) {
	text := strings.ToLower(title + " " + description)

	department := domain.DepartmentGeneral
	for _, r := range departmentRules {
		if r.pattern.MatchString(text) {
			department = r.department
			break
		}
	}

	emergency := emergencyPattern.MatchString(text)
	severity := defaultSeverity
	if emergency {
		severity = emergencySeverity
	}

	return &Result{
		Department: department,
		Severity:   severity,
		Emergency:  emergency,
		Tags:       []string{},
	}, nil
}
