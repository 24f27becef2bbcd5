// Package compileinfoprint is imported for the side effect of logging the
// binary's build information at start-up.
package compileinfoprint

import "github.com/dsugurtuna/apoe-genotyping-toolkit/compileinfo"

func init() {
	compileinfo.Log()
}
