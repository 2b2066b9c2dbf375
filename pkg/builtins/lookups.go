package builtins

// lookupVariables are the always-set variables the engine provides. Reads of
// these (and of their properties) never trigger unset-variable warnings.
var lookupVariables = map[string]bool{
	"browser": true,
	"config":  true,
	"engine":  true,
	"now":     true,
	"passage": true,
	"random":  true,
	"story":   true,
}

// IsLookupVariable reports whether name is an engine-provided lookup
// variable.
func IsLookupVariable(name string) bool {
	return lookupVariables[name]
}
