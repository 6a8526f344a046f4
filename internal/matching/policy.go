package matching

// Decide is the single decision point for an incoming text. Every caller
// (batch worker, interactive test endpoint, review create-new path) routes
// through here so the threshold bands live in exactly one place.
//
//	best >= auto            -> auto-associate to the top candidate
//	review <= best < auto   -> pending human review
//	best < review / empty   -> mint a provisional master
func Decide(best float64, hasCandidates bool, auto, review float64) Outcome {
	if !hasCandidates {
		return OutcomeProvisional
	}

	switch {
	case best >= auto:
		return OutcomeAutoAssociate
	case best >= review:
		return OutcomePendingReview
	default:
		return OutcomeProvisional
	}
}
