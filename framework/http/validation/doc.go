// Package validation provides Laravel-style input validation.
//
// Rules are pipe-separated strings keyed by field name:
//
//	v := validation.Make(map[string]string{
//	    "value": "42",
//	}, validation.Rules{
//	    "value": "required|integer|gte:0",
//	})
//
//	if v.Fails() {
//	    // JSON: {"errors": {"value": ["The value must be an integer."]}}
//	    res.ValidationError(v.Errors())
//	}
//
// Each field stops at its first failing rule. Fields are checked in sorted
// order so the error bag is deterministic.
//
// # Available Rules
//
//   - required         : present and not blank
//   - numeric, integer : parseable as float64 / int
//   - gt:n, gte:n, lt:n, lte:n: numeric bounds
//   - min:n, max:n     : length in UTF-8 characters
//   - email, alpha_num, regex:pattern
//   - in:a,b,c         : value must be one of the list
//   - same:other       : must equal data[other]
//   - nullable, sometimes: stop silently when the value is empty
//
// # Custom rules
//
// The framework binds a *Factory in the container. Extend it from a
// provider's Boot:
//
//	f, _ := container.Resolve[*validation.Factory](app)
//	f.Extend("even", func(field, value, _ string, _ map[string]string) (string, bool) {
//	    n, err := strconv.Atoi(value)
//	    return "The " + field + " must be even.", err == nil && n%2 == 0
//	})
package validation
