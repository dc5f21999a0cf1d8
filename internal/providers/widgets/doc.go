// Package widgets exposes mounted sandboxes and quizzes as services, so the
// generic /services/execute endpoint can drive them with tool calls such as
// sandbox.run or quiz.submit.
package widgets
