package engine

import "testing"

func TestStateString(t *testing.T) {
	cases := map[State]string{
		StateUninitialized: "uninitialized",
		StateKeyResolved:   "key-resolved",
		StateResolved:      "resolved",
		StateMissing:       "missing",
		State(42):          "State(42)",
	}
	for state, want := range cases {
		if got := state.String(); got != want {
			t.Fatalf("State(%d).String() = %q, want %q", int(state), got, want)
		}
	}
}
