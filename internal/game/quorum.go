package game

// DrawingQuorum is the number of distinct authors needed to leave the drawing phase.
func DrawingQuorum(participants int) int {
	return participants
}

// AuthorExcludedQuorum is the number of distinct non-authors needed to complete guessing or voting.
func AuthorExcludedQuorum(participants int) int {
	return participants - 1
}

// QuorumReached reports whether submitted meets the required count.
func QuorumReached(submitted, required int) bool {
	return required > 0 && submitted >= required
}
