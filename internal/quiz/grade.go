package quiz

import "github.com/stemsi/tamilprep-backend/internal/model"

// Grade scores answers against set. An item is correct only when the selected
// text is byte-identical to its answer; unanswered items are incorrect.
func Grade(set model.QuizSet, answers model.AnswerRecord) model.GradeResult {
	res := model.GradeResult{
		Total:    len(set),
		Verdicts: make([]model.Verdict, 0, len(set)),
	}

	for i, item := range set {
		selected, answered := answers[i]
		v := model.Verdict{Index: i, Selected: selected}

		if answered && selected == item.Answer {
			v.Status = model.VerdictCorrect
			res.Score++
		} else {
			v.Status = model.VerdictIncorrect
			v.CorrectAnswer = item.Answer
			v.Explanation = item.Explanation
		}
		res.Verdicts = append(res.Verdicts, v)
	}

	return res
}
