// Package quiz implements the multiple-choice quiz widget.
//
// A quiz moves through two phases. While Answering the user may move freely
// between questions and change answers; Submit is accepted on the last
// question only and scores every question, counting unanswered ones as wrong.
// In Results the answers are frozen and Review explains each question along
// with a feedback tier (perfect, good at 70% or more, needs-practice).
// Restart returns to the first question with nothing answered.
//
// Invalid choices and out-of-range navigation are rejected with sentinel
// errors and leave the state untouched.
package quiz
