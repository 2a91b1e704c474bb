// Package harness provides conformance testing for the statement generator.
//
// The harness loads a catalog, generates a seeded batch of statements,
// checks the structural invariants of every generated tree (Check), and
// evaluates scenario assertions against the rendered text. Golden files pin
// the exact rendering of a seed so generator changes show up as diffs.
//
// # Scenario Format
//
//	name: t1_no_subqueries
//	description: "Budget 0 keeps every FROM entry a named relation"
//	catalog: ../catalogs/t1.cue
//	seed: 1
//	count: 20
//	config:
//	  max_subqueries: 0
//	  weights: {join: 0}
//	assertions:
//	  - type: all_contain
//	    text: "FROM T1 AS t"
//	  - type: absent
//	    text: "(SELECT"
//
// # Assertion Types
//
//   - contains: some statement contains text
//   - all_contain: every statement contains text
//   - absent: no statement contains text
//   - distinct: at least count statements are distinct
//
// # Deterministic Testing
//
// Generation depends only on the catalog, the config and the seed, so a
// scenario renders identically on every run and golden comparison is exact.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/t1.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(scenario)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if !result.Pass {
//	    for _, v := range result.Violations {
//	        log.Println(v.Seq, v.Violation)
//	    }
//	}
package harness
