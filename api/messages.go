package api

import (
	"time"

	"github.com/goccy/go-json"
)

// PlanInfo describes a cataloged plan.
type PlanInfo struct {
	Key       string    `json:"key"`
	Name      string    `json:"name"`
	Root      string    `json:"root"`
	Sources   []string  `json:"sources"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"createdAt"`
}

type SubmitPlanRequest struct {
	Name string          `json:"name"`
	Plan json.RawMessage `json:"plan"`
}

type SubmitPlanResponse struct {
	Plan PlanInfo `json:"plan"`
}

type GetPlanRequest struct {
	Key string `json:"key"`
}

type GetPlanResponse struct {
	Plan    PlanInfo        `json:"plan"`
	Message json.RawMessage `json:"message"`
}

type ListPlansRequest struct {
	// Pattern is a doublestar glob matched against plan names.
	Pattern string `json:"pattern,omitempty"`
	// Since restricts the listing to plans created at or after it.
	Since time.Time `json:"since,omitempty"`
}

type ListPlansResponse struct {
	Plans []PlanInfo `json:"plans"`
}

type DeletePlanRequest struct {
	Key string `json:"key"`
}

type DeletePlanResponse struct{}

// TranslatePlanRequest asks for a translation without persisting the plan.
type TranslatePlanRequest struct {
	Plan json.RawMessage `json:"plan"`
}

type TranslatePlanResponse struct {
	Key         string   `json:"key"`
	Fingerprint string   `json:"fingerprint"`
	Root        string   `json:"root"`
	Sources     []string `json:"sources"`
	Depth       int      `json:"depth"`
}
