package entities

import (
	"encoding/json"
	"fmt"
)

const (
	// NoRootCauseText replaces a missing or empty root cause in a successful response
	NoRootCauseText = "No analysis available."
	// NoSuggestedActionText replaces a missing or empty suggested action in a successful response
	NoSuggestedActionText = "No action available."
	// FailedRootCauseText is shown when the root cause request fails
	FailedRootCauseText = "Failed to load root cause."
	// FailedSuggestedActionText is shown when the root cause request fails
	FailedSuggestedActionText = "Failed to load suggested action."
)

// RootCauseResult is the backend diagnosis for a SKU on a simulation day.
// Absent fields stay nil; any fields beyond the known three are kept in Extra.
type RootCauseResult struct {
	RootCause       *string
	SuggestedAction *string
	AutoAction      *bool
	Extra           map[string]any
}

// FailedRootCauseResult returns the placeholder committed when the request fails
func FailedRootCauseResult() *RootCauseResult {
	rootCause := FailedRootCauseText
	action := FailedSuggestedActionText
	auto := false
	return &RootCauseResult{
		RootCause:       &rootCause,
		SuggestedAction: &action,
		AutoAction:      &auto,
	}
}

// CallOutText returns the root cause, or NoRootCauseText when absent
func (r *RootCauseResult) CallOutText() string {
	if r == nil || r.RootCause == nil || *r.RootCause == "" {
		return NoRootCauseText
	}
	return *r.RootCause
}

// ActionText returns the suggested action, or NoSuggestedActionText when absent
func (r *RootCauseResult) ActionText() string {
	if r == nil || r.SuggestedAction == nil || *r.SuggestedAction == "" {
		return NoSuggestedActionText
	}
	return *r.SuggestedAction
}

// IsAutoAction reports whether the backend already acted on the SKU
func (r *RootCauseResult) IsAutoAction() bool {
	return r != nil && r.AutoAction != nil && *r.AutoAction
}

// UnmarshalJSON decodes the known fields and collects everything else into Extra
func (r *RootCauseResult) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	out := RootCauseResult{}
	for key, value := range raw {
		switch key {
		case "root_cause":
			s, err := decodeOptional[string](value)
			if err != nil {
				return fmt.Errorf("root_cause: %w", err)
			}
			out.RootCause = s
		case "suggested_action":
			s, err := decodeOptional[string](value)
			if err != nil {
				return fmt.Errorf("suggested_action: %w", err)
			}
			out.SuggestedAction = s
		case "auto_action":
			b, err := decodeOptional[bool](value)
			if err != nil {
				return fmt.Errorf("auto_action: %w", err)
			}
			out.AutoAction = b
		default:
			var v any
			if err := json.Unmarshal(value, &v); err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			if out.Extra == nil {
				out.Extra = make(map[string]any)
			}
			out.Extra[key] = v
		}
	}

	*r = out
	return nil
}

// MarshalJSON writes the known fields next to the extra ones
func (r RootCauseResult) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Extra)+3)
	for k, v := range r.Extra {
		out[k] = v
	}
	if r.RootCause != nil {
		out["root_cause"] = *r.RootCause
	}
	if r.SuggestedAction != nil {
		out["suggested_action"] = *r.SuggestedAction
	}
	if r.AutoAction != nil {
		out["auto_action"] = *r.AutoAction
	}
	return json.Marshal(out)
}

func decodeOptional[T any](value json.RawMessage) (*T, error) {
	if string(value) == "null" {
		return nil, nil
	}
	var v T
	if err := json.Unmarshal(value, &v); err != nil {
		return nil, err
	}
	return &v, nil
}
