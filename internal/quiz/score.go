package quiz

// Score reports whether the answer is correct for the question.
//
// Choice kinds are scored by exact set equality between the selected and
// correct option index sets, order-independent. Free-text and fill-blank are
// recorded as correct by policy: the service stores the text for instructor
// review and there is no fuzzy matching client-side.
func Score(q *Question, ans Answer) bool {
	switch q.Kind {
	case KindSingleChoice:
		return len(ans.Selected) == 1 && sameIndexSet(ans.Selected, q.Correct)
	case KindMultiChoice:
		return sameIndexSet(ans.Selected, q.Correct)
	case KindFreeText, KindFillBlank:
		return true
	}
	return false
}

// sameIndexSet compares two index slices as sets, ignoring order and
// duplicates.
func sameIndexSet(got, want []int) bool {
	if len(want) == 0 {
		return len(got) == 0
	}
	wantSet := make(map[int]bool, len(want))
	for _, i := range want {
		wantSet[i] = true
	}
	gotSet := make(map[int]bool, len(got))
	for _, i := range got {
		if !wantSet[i] {
			return false
		}
		gotSet[i] = true
	}
	return len(gotSet) == len(wantSet)
}
