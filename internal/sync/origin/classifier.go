// Package origin decides whether a legacy write came from genuine legacy
// activity or from the synchronisation pipeline echoing a target change back.
package origin

import (
	"strings"

	"contactsync/internal/sync/models"
)

// DefaultTargetTags are the module tags the pipeline writes under when it
// replays target changes into the legacy system.
var DefaultTargetTags = []string{
	"DPS_SYNCHRONISATION",
	"DPS_SYNCHRONISATION_CONTACTS",
	"DPS_SYNCHRONISATION_PERSON",
	"DPS_SYNCHRONISATION_PRISONER",
}

// Classifier maps an origin module tag to an Origin. It holds no mutable state
// and is safe for concurrent use.
type Classifier struct {
	targetTags map[string]struct{}
}

// NewClassifier builds a classifier for the given target tags. An empty list
// falls back to DefaultTargetTags.
func NewClassifier(targetTags []string) *Classifier {
	if len(targetTags) == 0 {
		targetTags = DefaultTargetTags
	}
	tags := make(map[string]struct{}, len(targetTags))
	for _, t := range targetTags {
		if n := normalize(t); n != "" {
			tags[n] = struct{}{}
		}
	}
	return &Classifier{targetTags: tags}
}

// Classify never guesses: only an exact configured tag is target-originated.
// Anything else, including an empty tag, is treated as legacy activity.
func (c *Classifier) Classify(originModule string) models.Origin {
	if _, ok := c.targetTags[normalize(originModule)]; ok {
		return models.OriginTarget
	}
	return models.OriginLegacy
}

// Apply stamps the event's Origin if ingestion has not done so already.
func (c *Classifier) Apply(ev models.ChangeEvent) models.ChangeEvent {
	if ev.Origin == models.OriginUnclassified {
		ev.Origin = c.Classify(ev.OriginModule)
	}
	return ev
}

func normalize(tag string) string {
	return strings.ToUpper(strings.TrimSpace(tag))
}
