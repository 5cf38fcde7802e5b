package utils

import (
	"strings"
	"testing"
)

func TestChunkText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		size int
		want []string
	}{
		{
			name: "even split",
			in:   "abcdef",
			size: 2,
			want: []string{"ab", "cd", "ef"},
		},
		{
			name: "remainder",
			in:   "abcde",
			size: 2,
			want: []string{"ab", "cd", "e"},
		},
		{
			name: "size larger than input",
			in:   "abc",
			size: 40,
			want: []string{"abc"},
		},
		{
			name: "empty input",
			in:   "",
			size: 40,
			want: nil,
		},
		{
			name: "zero size",
			in:   "abc",
			size: 0,
			want: nil,
		},
		{
			name: "multibyte runes stay whole",
			in:   "héllo wörld",
			size: 4,
			want: []string{"héll", "o wö", "rld"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ChunkText(tt.in, tt.size)
			if len(got) != len(tt.want) {
				t.Fatalf("chunks = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("chunk %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
			if strings.Join(got, "") != strings.Join(tt.want, "") {
				t.Error("chunks do not reassemble to the input")
			}
		})
	}
}
