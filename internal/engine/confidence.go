package engine

import "github.com/zeroslashagency/epsilon-attendance-api/internal/models"

// classify assigns per-event confidence, decides ambiguity, and computes the
// day confidence as the minimum over all contributing events. Cleanly paired
// events are high, events adjacent to an inference are medium, and inferred,
// discarded or unmatched events are low. Any inference, discard or unmatched
// single forces hasAmbiguousPunches; a fully clean day stays at high.
func classify(events []models.PunchEvent, res intervalResult, leftovers []models.PunchEvent) ([]models.AnnotatedPunch, models.Confidence, bool) {
	punches := make([]models.AnnotatedPunch, 0, len(events)+len(res.synthesized))
	confidence := models.ConfidenceHigh

	for i, ev := range events {
		annotated := models.AnnotatedPunch{
			Time:       ev.Time,
			Direction:  ev.Direction,
			DeviceID:   ev.DeviceID,
			Confidence: models.ConfidenceHigh,
		}
		switch res.states[i] {
		case stateAdjacent:
			annotated.Confidence = models.ConfidenceMedium
		case stateDiscarded:
			annotated.Confidence = models.ConfidenceLow
			annotated.Discarded = true
		case stateUnmatched:
			annotated.Confidence = models.ConfidenceLow
		}
		confidence = confidence.Min(annotated.Confidence)
		punches = append(punches, annotated)
	}

	for _, syn := range res.synthesized {
		confidence = confidence.Min(syn.Confidence)
		punches = append(punches, syn)
	}

	ambiguous := res.inferred || len(leftovers) > 0
	if ambiguous {
		confidence = confidence.Min(models.ConfidenceMedium)
	}
	return punches, confidence, ambiguous
}
