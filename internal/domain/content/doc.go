// Package content loads the lesson catalog.
//
// A lesson is a markdown file with YAML (---) or TOML (+++) frontmatter.
// Fenced blocks tagged sandbox or quiz are lifted out of the prose and become
// widget seeds:
//
//	```sandbox id=counter file=Counter.js instructions="Add a decrement button."
//	return React.createElement('p', null, 'Count: 0');
//	```
//
//	```quiz id=state-basics
//	- question: What does useState return?
//	  answers: [A value, A pair]
//	  answer: A pair
//	```
//
// The remaining prose is rendered to sanitized HTML with a table of contents.
package content
