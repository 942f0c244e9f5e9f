package models

import "time"

// OnboardingStep names the provider registration question that is outstanding.
type OnboardingStep string

const (
	StepNone        OnboardingStep = ""
	StepName        OnboardingStep = "name"
	StepServiceType OnboardingStep = "service_type"
	StepCoverage    OnboardingStep = "coverage"
	StepPolicy      OnboardingStep = "policy"
	StepActivate    OnboardingStep = "activate"
)

func (s OnboardingStep) Valid() bool {
	switch s {
	case StepNone, StepName, StepServiceType, StepCoverage, StepPolicy, StepActivate:
		return true
	}
	return false
}

// Next returns the step that follows s. Activation is the last step.
func (s OnboardingStep) Next() OnboardingStep {
	switch s {
	case StepName:
		return StepServiceType
	case StepServiceType:
		return StepCoverage
	case StepCoverage:
		return StepPolicy
	case StepPolicy:
		return StepActivate
	}
	return StepNone
}

// Provider offers a service within a coverage area. Only active providers are
// visible to search and ranking.
type Provider struct {
	ID             string         `bson:"id" json:"id"`
	Phone          string         `bson:"phone" json:"phone"`
	Name           string         `bson:"name" json:"name"`
	ServiceType    string         `bson:"service_type" json:"service_type"`
	Coverage       string         `bson:"coverage" json:"coverage"`
	CoverageCoords *GeoPoint      `bson:"coverage_coords,omitempty" json:"coverage_coords,omitempty"`
	Active         bool           `bson:"active" json:"active"`
	AgreedPolicy   bool           `bson:"agreed_policy" json:"agreed_policy"`
	PendingField   OnboardingStep `bson:"pending_field" json:"pending_field"`
	Rating         *float64       `bson:"rating,omitempty" json:"rating,omitempty"`
	CreatedAt      time.Time      `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `bson:"updated_at" json:"updated_at"`
}

// RatingOrZero returns the rating, treating a missing one as 0.
func (p *Provider) RatingOrZero() float64 {
	if p.Rating == nil {
		return 0
	}
	return *p.Rating
}

// Onboarding reports whether the provider is still answering onboarding questions.
func (p *Provider) Onboarding() bool {
	return p != nil && p.PendingField != StepNone
}
