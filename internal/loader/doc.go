// Package loader reads declarative suite files into suite modules.
//
// # File Format
//
// A suite file is a mapping from export names to members, written in YAML
// (.yaml, .yml, .json) or CUE (.cue). Key order is declaration order.
//
//	test arithmetic:
//	  - assert: equal
//	    actual: "2"
//	    expected: 2
//	test strings:
//	  only: true
//	  prefix:
//	    - assert: match
//	      actual: hello world
//	      pattern: /^hello/
//
// A list is a test: its steps run in order and the first failing step fails
// the test. A mapping is a group; boolean "skip" and "only" keys set the
// group flags; at the top level they are rejected. Any other value is
// ignored. Export and member names follow
// the usual naming convention.
//
// # Steps
//
// Each step names an assertion and its operands:
//
//	assert:   ok | fail | equal | notEqual | strictEqual | notStrictEqual |
//	          deepEqual | notDeepEqual | match
//	actual:   any value
//	expected: any value
//	pattern:  substring, or /regexp/
//	message:  replaces the default failure reason
//
// Unknown step fields and unknown assertions are load errors.
package loader
