package models

// Tier identifies one rate-limited backend identity.
type Tier string

const (
	TierPrimary   Tier = "primary"
	TierSecondary Tier = "secondary"
)

// Other returns the opposite tier.
func (t Tier) Other() Tier {
	if t == TierPrimary {
		return TierSecondary
	}
	return TierPrimary
}

// TierQuota defines request quotas and model variants for one tier.
type TierQuota struct {
	RPM         int    `json:"rpm" yaml:"rpm"`
	RPD         int    `json:"rpd" yaml:"rpd"`
	TextModel   string `json:"text_model" yaml:"text_model"`
	VisionModel string `json:"vision_model" yaml:"vision_model"`
}

// ModelFor returns the model variant for the given attachment situation.
func (q TierQuota) ModelFor(hasImages bool) string {
	if hasImages {
		return q.VisionModel
	}
	return q.TextModel
}
