package storage

import (
	"fmt"

	"github.com/samvad-hq/neowatch/internal/domain"
)

// ThresholdKey names the persisted maximum-distance preference.
const ThresholdKey = "maxAU"

// LoadThreshold reads the persisted threshold. Absent or invalid values yield
// domain.DefaultThresholdAU; a backend error is returned alongside the default.
func LoadThreshold(s Store) (domain.Threshold, error) {
	if s == nil {
		return domain.DefaultThresholdAU, nil
	}
	v, ok, err := s.GetFloat(ThresholdKey)
	if err != nil {
		return domain.DefaultThresholdAU, fmt.Errorf("read %s: %w", ThresholdKey, err)
	}
	if !ok {
		return domain.DefaultThresholdAU, nil
	}
	return domain.Threshold(v).Normalize(), nil
}

// SaveThreshold coerces v to a valid threshold, persists it, and returns what was stored.
func SaveThreshold(s Store, v float64) (domain.Threshold, error) {
	t := domain.Threshold(v).Normalize()
	if s == nil {
		return t, nil
	}
	if err := s.SetFloat(ThresholdKey, float64(t)); err != nil {
		return t, fmt.Errorf("write %s: %w", ThresholdKey, err)
	}
	return t, nil
}
