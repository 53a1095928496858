package version

import (
	"strings"
	"testing"
)

func TestString(t *testing.T) {
	tests := []struct {
		name   string
		commit string
		want   string
	}{
		{name: "default", commit: "unknown", want: "commit: unknown"},
		{name: "long hash is shortened", commit: "0123456789abcdef", want: "commit: 0123456,"},
		{name: "short hash kept", commit: "abc", want: "commit: abc,"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			saved := Commit
			Commit = tt.commit
			defer func() { Commit = saved }()

			if got := String(); !strings.Contains(got, tt.want) {
				t.Errorf("String() = %q, want it to contain %q", got, tt.want)
			}
		})
	}
}
