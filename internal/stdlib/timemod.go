package stdlib

import (
	"time"

	"github.com/b-macker/naab/internal/diag"
	"github.com/b-macker/naab/internal/runtime"
)

type timeModule struct{}

func (*timeModule) Name() string { return "time" }

func (m *timeModule) Call(fn string, args []*runtime.Value) (*runtime.Value, error) {
	switch fn {
	case "now":
		return runtime.Int(time.Now().Unix()), nil
	case "now_ms":
		return runtime.Int(time.Now().UnixMilli()), nil
	case "sleep":
		if len(args) == 0 {
			return nil, diag.New(diag.RuntimeError, "time.sleep expects a duration in seconds")
		}
		secs, ok := args[0].ToFloat()
		if !ok {
			return nil, diag.New(diag.TypeError, "time.sleep expects a number, got %s", args[0].TypeOf())
		}
		time.Sleep(time.Duration(secs * float64(time.Second)))
		return runtime.Null(), nil
	case "format":
		// format(unix_seconds, layout) with Go reference-time layouts.
		if err := argCount("time", fn, args, 2); err != nil {
			return nil, err
		}
		secs, ok := args[0].ToInt()
		if !ok {
			return nil, diag.New(diag.TypeError, "time.format expects a unix timestamp, got %s", args[0].TypeOf())
		}
		return runtime.String(time.Unix(secs, 0).UTC().Format(argString(args, 1))), nil
	case "year":
		return timeField(args, func(t time.Time) int64 { return int64(t.Year()) })
	case "month":
		return timeField(args, func(t time.Time) int64 { return int64(t.Month()) })
	case "day":
		return timeField(args, func(t time.Time) int64 { return int64(t.Day()) })
	default:
		return nil, errUnknown("time", fn)
	}
}

func timeField(args []*runtime.Value, get func(time.Time) int64) (*runtime.Value, error) {
	t := time.Now().UTC()
	if len(args) > 0 {
		if secs, ok := args[0].ToInt(); ok {
			t = time.Unix(secs, 0).UTC()
		}
	}
	return runtime.Int(get(t)), nil
}
