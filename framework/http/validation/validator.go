package validation

import (
	"fmt"
	"net/mail"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"
)

// ── Types ────────────────────────────────────────────────────────────────────

// Errors holds validation errors, mirroring Laravel's MessageBag.
// JSON output: {"errors": {"field": ["msg1", "msg2"]}}
type Errors struct {
	Bag map[string][]string `json:"errors"`
}

func (e *Errors) add(field, msg string) {
	if e.Bag == nil {
		e.Bag = make(map[string][]string)
	}
	e.Bag[field] = append(e.Bag[field], msg)
}

// Has returns true if there are any errors.
func (e *Errors) Has() bool { return len(e.Bag) > 0 }

// First returns the first error for a field.
func (e *Errors) First(field string) string {
	if msgs, ok := e.Bag[field]; ok && len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

// Rules is a map of field → pipe-separated rule string.
// e.g. Rules{"value": "required|integer|gte:0"}
type Rules map[string]string

// RuleFunc checks one value. It returns the error message and false when the
// value is rejected. data is the whole input, for rules comparing fields.
type RuleFunc func(field, value, param string, data map[string]string) (string, bool)

// ── Factory ──────────────────────────────────────────────────────────────────

// Factory builds validators from a rule set that can be extended at boot,
// like Laravel's Validator::extend. The framework binds one as a singleton.
type Factory struct {
	mu    sync.RWMutex
	rules map[string]RuleFunc
}

// NewFactory returns a Factory with the built-in rules.
func NewFactory() *Factory {
	f := &Factory{rules: make(map[string]RuleFunc, len(builtin))}
	for name, fn := range builtin {
		f.rules[name] = fn
	}
	return f
}

// Extend adds or replaces a rule.
//
//	f.Extend("even", func(field, value, _ string, _ map[string]string) (string, bool) {
//	    n, _ := strconv.Atoi(value)
//	    return fmt.Sprintf("The %s must be even.", field), n%2 == 0
//	})
func (f *Factory) Extend(name string, fn RuleFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rules[name] = fn
}

func (f *Factory) rule(name string) (RuleFunc, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	fn, ok := f.rules[name]
	return fn, ok
}

// Make creates a Validator bound to this factory's rules.
func (f *Factory) Make(data map[string]string, rules Rules) *Validator {
	return &Validator{factory: f, data: data, rules: rules}
}

var defaultFactory = NewFactory()

// Make creates a Validator using the built-in rules, mirroring
// Validator::make($data, $rules).
func Make(data map[string]string, rules Rules) *Validator {
	return defaultFactory.Make(data, rules)
}

// ── Validator ────────────────────────────────────────────────────────────────

// Validator validates a flat map of input values.
type Validator struct {
	factory *Factory
	data    map[string]string
	rules   Rules

	once   sync.Once
	errors *Errors
}

// Fails runs validation and returns true if any rule fails.
func (v *Validator) Fails() bool {
	v.once.Do(v.validate)
	return v.errors.Has()
}

// Passes runs validation and returns true if all rules pass.
func (v *Validator) Passes() bool { return !v.Fails() }

// Errors returns the validation error bag.
func (v *Validator) Errors() *Errors {
	v.once.Do(v.validate)
	return v.errors
}

// validate checks fields in sorted order, stopping at the first failing
// rule of each field (Laravel's bail behaviour).
func (v *Validator) validate() {
	v.errors = &Errors{}

	fields := make([]string, 0, len(v.rules))
	for field := range v.rules {
		fields = append(fields, field)
	}
	slices.Sort(fields)

	for _, field := range fields {
		value := v.data[field]
	rules:
		for _, rule := range strings.Split(v.rules[field], "|") {
			rule = strings.TrimSpace(rule)
			if rule == "" {
				continue
			}
			// min:3 → name=min, param=3
			name, param, _ := strings.Cut(rule, ":")

			switch name {
			case "nullable", "sometimes":
				if value == "" {
					break rules
				}
				continue
			}

			fn, ok := v.factory.rule(name)
			if !ok {
				v.errors.add(field, fmt.Sprintf("The %s rule is not defined.", name))
				break
			}
			if msg, ok := fn(field, value, param, v.data); !ok {
				v.errors.add(field, msg)
				break
			}
		}
	}
}

// ── Built-in rules ───────────────────────────────────────────────────────────

var alphaNum = regexp.MustCompile(`^[a-zA-Z0-9]+$`)

var builtin = map[string]RuleFunc{
	"required": func(field, value, _ string, _ map[string]string) (string, bool) {
		return fmt.Sprintf("The %s field is required.", field), strings.TrimSpace(value) != ""
	},
	"numeric": func(field, value, _ string, _ map[string]string) (string, bool) {
		_, err := strconv.ParseFloat(value, 64)
		return fmt.Sprintf("The %s must be a number.", field), err == nil
	},
	"integer": func(field, value, _ string, _ map[string]string) (string, bool) {
		_, err := strconv.Atoi(value)
		return fmt.Sprintf("The %s must be an integer.", field), err == nil
	},
	"email": func(field, value, _ string, _ map[string]string) (string, bool) {
		_, err := mail.ParseAddress(value)
		return fmt.Sprintf("The %s must be a valid email address.", field), err == nil
	},
	"alpha_num": func(field, value, _ string, _ map[string]string) (string, bool) {
		return fmt.Sprintf("The %s may only contain letters and numbers.", field), alphaNum.MatchString(value)
	},
	"regex": func(field, value, param string, _ map[string]string) (string, bool) {
		re, err := regexp.Compile(param)
		return fmt.Sprintf("The %s format is invalid.", field), err == nil && re.MatchString(value)
	},
	"min": func(field, value, param string, _ map[string]string) (string, bool) {
		n, _ := strconv.Atoi(param)
		return fmt.Sprintf("The %s must be at least %d characters.", field, n), utf8.RuneCountInString(value) >= n
	},
	"max": func(field, value, param string, _ map[string]string) (string, bool) {
		n, _ := strconv.Atoi(param)
		return fmt.Sprintf("The %s may not be greater than %d characters.", field, n), utf8.RuneCountInString(value) <= n
	},
	"in": func(field, value, param string, _ map[string]string) (string, bool) {
		for _, a := range strings.Split(param, ",") {
			if strings.TrimSpace(a) == value {
				return "", true
			}
		}
		return fmt.Sprintf("The selected %s is invalid.", field), false
	},
	"same": func(field, value, param string, data map[string]string) (string, bool) {
		return fmt.Sprintf("The %s and %s must match.", field, param), data[param] == value
	},
	"gte": compare("greater than or equal to", func(a, b float64) bool { return a >= b }),
	"gt":  compare("greater than", func(a, b float64) bool { return a > b }),
	"lte": compare("less than or equal to", func(a, b float64) bool { return a <= b }),
	"lt":  compare("less than", func(a, b float64) bool { return a < b }),
}

// compare builds a numeric bound rule. Non-numeric values fail it.
func compare(phrase string, ok func(a, b float64) bool) RuleFunc {
	return func(field, value, param string, _ map[string]string) (string, bool) {
		msg := fmt.Sprintf("The %s must be %s %s.", field, phrase, param)
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return msg, false
		}
		t, err := strconv.ParseFloat(param, 64)
		if err != nil {
			return msg, false
		}
		return msg, ok(f, t)
	}
}
