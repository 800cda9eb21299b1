/*

Process of compilation

Shader (NIR) ->
	front end (not here) ->
Dependency Graph (ir) ->
	lower ->
Legal Dependency Graph (ir) ->
	schedule, regalloc, codegen (not here) ->
Instruction Stream

Program Description (yaml) ->
	load ->
Dependency Graph (ir)

*/
package compiler
