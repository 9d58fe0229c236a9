// Package scenario loads Lua scenario scripts and runs them against the
// luck economy, formula resolver and roll sessions in process.
//
// A script builds a Scenario with Scenario.new and appends steps:
//
//	local scene = Scenario.new("fudge at cap")
//	scene:character({id = "jotaro", temp = 5, stats = {power = 3}})
//	scene:resolve({character = "jotaro", formula = "1d6cs>=5", advantage = 3, fudge = true, expect = "(1d6cs>=2)"})
//	scene:spend({character = "jotaro", move = "fudge", expect_temp = 3})
//	return scene
package scenario
