package diag_test

import (
	"testing"

	"github.com/b-macker/naab/internal/diag"
	"github.com/b-macker/naab/internal/lexer"
	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/stretchr/testify/require"
)

func TestFormatRendersKindMessageAndStack(t *testing.T) {
	d := diag.New(diag.TypeError, "expected %s, got %s", "int", "string")
	d = d.WithStack([]diag.Frame{
		{Function: "inc", File: "main.naab", Line: 3, Column: 5},
		{Function: "main", File: "main.naab", Line: 9, Column: 1},
	})
	snaps.MatchSnapshot(t, d.Format())
}

func TestFormatRendersSourceSnippetWithCaret(t *testing.T) {
	src := "let x = 1\nlet y = x + \nprint(y)"
	d := diag.New(diag.SyntaxError, "unexpected end of expression")
	d = d.WithSource("main.naab", lexer.Position{Line: 2, Column: 13}, src)
	snaps.MatchSnapshot(t, d.Format())
}

func TestSuggestFindsClosestCandidateWithinEditDistance(t *testing.T) {
	got := diag.Suggest("lenght", []string{"length", "width", "height"})
	require.Equal(t, "length", got)
}

func TestSuggestReturnsEmptyWhenNothingIsCloseEnough(t *testing.T) {
	got := diag.Suggest("zzzzzzzz", []string{"length", "width", "height"})
	require.Equal(t, "", got)
}

func TestCallStackPushPopPreservesOrderMostRecentFirst(t *testing.T) {
	s := diag.NewCallStack()
	s.Push(diag.Frame{Function: "a"})
	s.Push(diag.Frame{Function: "b"})
	snap := s.Snapshot()
	require.Equal(t, "b", snap[0].Function)
	require.Equal(t, "a", snap[1].Function)
	s.Pop()
	require.Equal(t, 1, s.Depth())
}
