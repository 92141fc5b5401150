// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// QARecord is one question/answer pair in a grading testset.
type QARecord struct {
	// ID identifies the record within its testset (e.g. "luat-giao-duc-art-3").
	ID string `json:"id" yaml:"id"`

	// Question is the question posed about the statute.
	Question string `json:"question" yaml:"question"`

	// Answer is the answer under evaluation.
	Answer string `json:"answer" yaml:"answer"`

	// Reference is the ground-truth statute text the answer is judged against.
	Reference string `json:"reference" yaml:"reference"`
}

// Judgment is the judge model's verdict on one QARecord.
type Judgment struct {
	// ID echoes the graded record's ID.
	ID string `json:"id" yaml:"id"`

	// IsCorrect reports whether the answer matches the reference.
	IsCorrect bool `json:"is_correct" yaml:"is_correct"`

	// ReasoningLevelCorrect reports whether the answer's level of
	// reasoning matches what the question asks for.
	ReasoningLevelCorrect bool `json:"reasoning_level_correct" yaml:"reasoning_level_correct"`

	// InsufficientCorrect reports whether the answer correctly flags
	// the reference as insufficient, when it is.
	InsufficientCorrect bool `json:"insufficient_correct" yaml:"insufficient_correct"`

	// Issues lists problems the judge found with the answer.
	Issues []string `json:"issues" yaml:"issues"`

	// Score is the judge's score from 0 to 10.
	Score float64 `json:"score" yaml:"score"`

	// Comment is the judge's free-form remark.
	Comment string `json:"comment" yaml:"comment"`
}
