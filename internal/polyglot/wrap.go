package polyglot

import (
	"strings"

	"github.com/b-macker/naab/internal/exec"
)

// wrapForReturn prepares a block's source for the executeWithReturn
// mode: the trailing bare expression is rewritten into a print of
// exec.ReturnMarker plus the expression's value, so that running the
// script leaves the block's result on a marker line of stdout that the
// executor can split back out. Compiled targets are additionally wrapped
// into a complete program. Languages this package has no print syntax
// for are passed through unchanged.
func wrapForReturn(language, body string) string {
	if rest, expr, ok := splitTrailingExpr(language, body); ok {
		body = rest + returnPrint(language, expr)
	}
	return wrapProgram(language, body)
}

// wrapForEffect applies only the program boilerplate compiled targets
// need to run at all; nothing is printed on the caller's behalf.
func wrapForEffect(language, body string) string {
	return wrapProgram(language, body)
}

// statementPrefixes lists, per language, line prefixes that mark the
// final line as a statement rather than a bare expression. A language
// absent from this table is never wrapped.
var statementPrefixes = map[string][]string{
	"python":     {"print", "import", "from ", "def ", "class ", "if ", "elif", "else", "for ", "while ", "return", "pass", "raise", "with ", "try", "#"},
	"ruby":       {"puts", "print", "require", "def ", "class ", "if ", "end", "for ", "while ", "return", "#"},
	"javascript": {"console.", "let ", "const ", "var ", "function", "if ", "for ", "while ", "return", "import", "export", "//"},
	"js":         {"console.", "let ", "const ", "var ", "function", "if ", "for ", "while ", "return", "import", "export", "//"},
	"go":         {"fmt.", "package", "import", "func ", "if ", "for ", "return", "var ", "//"},
	"rust":       {"println!", "eprintln!", "fn ", "let ", "use ", "if ", "for ", "while ", "return", "//"},
	"cpp":        {"std::", "#", "int ", "return", "if ", "for ", "while ", "//"},
	"csharp":     {"System.", "Console.", "using ", "var ", "if ", "for ", "while ", "return", "//"},
	"bash":       {"echo", "export", "if ", "for ", "while ", "#"},
}

// splitTrailingExpr locates the last non-blank line of body and decides
// whether it is a bare expression worth printing: it must not end in a
// statement terminator or brace, must not start with a known statement
// prefix for the language, and must not be an assignment.
func splitTrailingExpr(language, body string) (rest, expr string, ok bool) {
	prefixes, known := statementPrefixes[language]
	if !known {
		return "", "", false
	}
	lines := strings.Split(body, "\n")
	last := -1
	for i := len(lines) - 1; i >= 0; i-- {
		if strings.TrimSpace(lines[i]) != "" {
			last = i
			break
		}
	}
	if last < 0 {
		return "", "", false
	}
	line := strings.TrimSpace(lines[last])
	switch line[len(line)-1] {
	case ';', '{', '}', ':':
		return "", "", false
	}
	for _, p := range prefixes {
		if strings.HasPrefix(line, p) {
			return "", "", false
		}
	}
	if isAssignment(line) {
		return "", "", false
	}
	rest = strings.Join(lines[:last], "\n")
	if rest != "" {
		rest += "\n"
	}
	return rest, line, true
}

// isAssignment reports whether line is a simple `name = value` statement
// (a single '=' not part of a comparison operator, with an identifier on
// its left).
func isAssignment(line string) bool {
	idx := strings.IndexByte(line, '=')
	if idx <= 0 || idx+1 >= len(line) {
		return false
	}
	if line[idx+1] == '=' || line[idx-1] == '!' || line[idx-1] == '<' || line[idx-1] == '>' {
		return false
	}
	lhs := strings.TrimSpace(line[:idx])
	for _, r := range lhs {
		if !(r == '_' || r == '.' || r == '[' || r == ']' ||
			(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')) {
			return false
		}
	}
	return lhs != ""
}

// returnPrint renders the per-language print statement that puts expr's
// value on the marker line.
func returnPrint(language, expr string) string {
	m := exec.ReturnMarker
	switch language {
	case "python":
		return `print("` + m + `" + str(` + expr + `))` + "\n"
	case "ruby":
		return `puts("` + m + `" + (` + expr + `).to_s)` + "\n"
	case "javascript", "js":
		return `console.log("` + m + `" + (` + expr + `));` + "\n"
	case "go":
		return `fmt.Printf("` + m + `%v\n", ` + expr + `)` + "\n"
	case "rust":
		return `println!("` + m + `{}", ` + expr + `);` + "\n"
	case "cpp":
		return `std::cout << "` + m + `" << (` + expr + `) << std::endl;` + "\n"
	case "csharp":
		return `System.Console.WriteLine("` + m + `" + (` + expr + `));` + "\n"
	case "bash":
		return `echo "` + m + `$((` + expr + `))"` + "\n"
	default:
		return expr + "\n"
	}
}

// wrapProgram surrounds body with the entry-point boilerplate compiled
// targets require, unless the block already supplies its own.
func wrapProgram(language, body string) string {
	switch language {
	case "go":
		if strings.Contains(body, "package main") {
			return body
		}
		imports := ""
		if strings.Contains(body, "fmt.") {
			imports = "\nimport \"fmt\"\n"
		}
		return "package main\n" + imports + "\nfunc main() {\n" + body + "\n}\n"
	case "cpp":
		if strings.Contains(body, "int main(") {
			return body
		}
		return "#include <iostream>\n\nint main() {\n" + body + "\nreturn 0;\n}\n"
	case "rust":
		if strings.Contains(body, "fn main(") {
			return body
		}
		return "fn main() {\n" + body + "\n}\n"
	default:
		return body
	}
}
