package main

import (
	"reflect"
	"strings"
	"testing"
)

func TestTailLines(t *testing.T) {
	input := "one\ntwo\nthree\nfour\n"

	tests := []struct {
		name string
		n    int
		want []string
	}{
		{"fewer than available", 2, []string{"three", "four"}},
		{"more than available", 10, []string{"one", "two", "three", "four"}},
		{"zero", 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tailLines(strings.NewReader(input), tt.n)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("tailLines(%d) = %v, want %v", tt.n, got, tt.want)
			}
		})
	}
}
