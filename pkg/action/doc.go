// Package action implements the operations organize performs on matched
// files.
//
// Every [Action] receives the job's current path, the attributes extracted
// by the job's first filter, and a simulate flag. In simulation an action
// only logs what it would do, but still returns the path the file would end
// up at so that later actions in the chain see the hypothetical location.
package action
