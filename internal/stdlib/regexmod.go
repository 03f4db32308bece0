package stdlib

import (
	"regexp"

	"github.com/b-macker/naab/internal/diag"
	"github.com/b-macker/naab/internal/runtime"
)

type regexModule struct {
	cache map[string]*regexp.Regexp
}

func (*regexModule) Name() string { return "regex" }

func (m *regexModule) compile(pattern string) (*regexp.Regexp, error) {
	if m.cache == nil {
		m.cache = make(map[string]*regexp.Regexp)
	}
	if re, ok := m.cache[pattern]; ok {
		return re, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, diag.New(diag.RuntimeError, "regex: invalid pattern %q: %v", pattern, err)
	}
	m.cache[pattern] = re
	return re, nil
}

func (m *regexModule) Call(fn string, args []*runtime.Value) (*runtime.Value, error) {
	if len(args) < 2 {
		return nil, diag.New(diag.RuntimeError, "regex.%s expects (pattern, text, ...)", fn)
	}
	re, err := m.compile(argString(args, 0))
	if err != nil {
		return nil, err
	}
	text := argString(args, 1)
	switch fn {
	case "match", "matches":
		return runtime.Bool(re.MatchString(text)), nil
	case "find":
		hit := re.FindString(text)
		if hit == "" && !re.MatchString(text) {
			return runtime.Null(), nil
		}
		return runtime.String(hit), nil
	case "find_all":
		hits := re.FindAllString(text, -1)
		items := make([]*runtime.Value, len(hits))
		for i, h := range hits {
			items[i] = runtime.String(h)
		}
		return runtime.List(items), nil
	case "replace":
		if err := argCount("regex", fn, args, 3); err != nil {
			return nil, err
		}
		return runtime.String(re.ReplaceAllString(text, argString(args, 2))), nil
	case "split":
		parts := re.Split(text, -1)
		items := make([]*runtime.Value, len(parts))
		for i, p := range parts {
			items[i] = runtime.String(p)
		}
		return runtime.List(items), nil
	default:
		return nil, errUnknown("regex", fn)
	}
}
