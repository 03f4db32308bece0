package polyglot

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/b-macker/naab/internal/runtime"
)

// NormalizeIndent strips the common leading whitespace of every line
// after the first, so a polyglot block written indented inside host code
// (to match the surrounding `main { ... }`) yields correctly
// left-aligned foreign source. The first line is untouched since it
// usually sits right
// after `<<lang[...]` on the same source line.
func NormalizeIndent(code string) string {
	lines := strings.Split(code, "\n")
	if len(lines) <= 1 {
		return code
	}
	minIndent := -1
	for _, l := range lines[1:] {
		if strings.TrimSpace(l) == "" {
			continue
		}
		stripped := strings.TrimLeft(l, " \t")
		indent := len(l) - len(stripped)
		if minIndent == -1 || indent < minIndent {
			minIndent = indent
		}
	}
	if minIndent <= 0 {
		return code
	}
	for i := 1; i < len(lines); i++ {
		if len(lines[i]) >= minIndent {
			lines[i] = lines[i][minIndent:]
		} else {
			lines[i] = strings.TrimLeft(lines[i], " \t")
		}
	}
	return strings.Join(lines, "\n")
}

// serializeBoundVar renders the declaration statement the dispatcher
// prepends to a polyglot block for one bound variable, using the
// per-target declaration syntax.
func serializeBoundVar(language, name string, v *runtime.Value) (string, error) {
	lit, err := literalFor(language, v)
	if err != nil {
		return "", fmt.Errorf("bound variable %q: %w", name, err)
	}
	switch language {
	case "python", "ruby":
		return name + " = " + lit, nil
	case "javascript", "js":
		return "const " + name + " = " + lit + ";", nil
	case "rust":
		return "let " + name + " = " + lit + ";", nil
	case "go":
		return name + " := " + lit, nil
	case "cpp":
		return "auto " + name + " = " + lit + ";", nil
	case "csharp":
		return "var " + name + " = " + lit + ";", nil
	case "bash":
		return name + "=" + lit, nil
	default:
		return name + " = " + lit, nil
	}
}

// literalFor renders v as a literal in the target language's syntax,
// recursively for lists/dicts/structs.
func literalFor(language string, v *runtime.Value) (string, error) {
	switch v.Kind {
	case runtime.KNull:
		return nullLiteral(language), nil
	case runtime.KBool:
		return boolLiteral(language, v.B), nil
	case runtime.KInt:
		return strconv.FormatInt(v.I, 10), nil
	case runtime.KFloat:
		return strconv.FormatFloat(v.F, 'g', -1, 64), nil
	case runtime.KString:
		return stringLiteral(language, v.Str), nil
	case runtime.KList:
		parts := make([]string, len(v.List))
		for i, e := range v.List {
			lit, err := literalFor(language, e)
			if err != nil {
				return "", err
			}
			parts[i] = lit
		}
		return "[" + strings.Join(parts, ", ") + "]", nil
	case runtime.KDict:
		parts := make([]string, 0, v.Dict.Len())
		for _, k := range v.Dict.Keys() {
			val, _ := v.Dict.Get(k)
			lit, err := literalFor(language, val)
			if err != nil {
				return "", err
			}
			parts = append(parts, stringLiteral(language, k)+": "+lit)
		}
		return "{" + strings.Join(parts, ", ") + "}", nil
	case runtime.KStruct:
		parts := make([]string, 0, v.Struct.Fields.Len())
		for _, k := range v.Struct.Fields.Keys() {
			val, _ := v.Struct.Fields.Get(k)
			lit, err := literalFor(language, val)
			if err != nil {
				return "", err
			}
			parts = append(parts, stringLiteral(language, k)+": "+lit)
		}
		return "{" + strings.Join(parts, ", ") + "}", nil
	default:
		return "", fmt.Errorf("value of kind %d has no marshalled representation for %s", v.Kind, language)
	}
}

func nullLiteral(language string) string {
	switch language {
	case "python":
		return "None"
	case "ruby", "rust":
		return "nil"
	case "go":
		return "nil"
	case "cpp":
		return "nullptr"
	case "bash":
		return ""
	default:
		return "null"
	}
}

func boolLiteral(language string, b bool) string {
	if language == "python" {
		if b {
			return "True"
		}
		return "False"
	}
	if b {
		return "true"
	}
	return "false"
}

// stringLiteral quotes s for the target language: double-quoted with
// `"`, `\`, newline, and tab escaped everywhere except shell, where
// special shell metacharacters are backslash-escaped instead.
func stringLiteral(language, s string) string {
	if language == "bash" {
		r := strings.NewReplacer(
			`\`, `\\`,
			`"`, `\"`,
			"$", "\\$",
			"`", "\\`",
			"\n", "\\n",
		)
		return `"` + r.Replace(s) + `"`
	}
	r := strings.NewReplacer(
		`\`, `\\`,
		`"`, `\"`,
		"\n", `\n`,
		"\t", `\t`,
	)
	return `"` + r.Replace(s) + `"`
}
