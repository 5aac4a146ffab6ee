package mailer

import "strings"

// Substitute replaces every literal {Name} placeholder in s with the value of
// the matching variable. Matching is case-sensitive on the variable name;
// placeholders with no matching variable are left as literal text.
func Substitute(s string, vars map[string]string) string {
	if len(vars) == 0 || !strings.Contains(s, "{") {
		return s
	}

	pairs := make([]string, 0, len(vars)*2)
	for name, value := range vars {
		pairs = append(pairs, "{"+name+"}", value)
	}
	return strings.NewReplacer(pairs...).Replace(s)
}
