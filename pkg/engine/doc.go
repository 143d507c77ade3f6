// Package engine discovers the files matched by organize rules and runs the
// rules' actions on them.
//
// Discovery ([FindJobs]) scans every folder of every rule one level deep and
// keeps the files that pass all of the rule's filters. Execution
// ([ExecuteRules]) then runs each job's actions in order, threading the file
// path from one action to the next.
package engine
