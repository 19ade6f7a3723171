package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestRemoveDeclinedLeavesItem(t *testing.T) {
	cmd := newRemoveCmd()
	cmd.Flags().String("api", "http://127.0.0.1:0", "")
	cmd.Flags().String("token", "", "")
	cmd.Flags().String("tenant", "", "")
	cmd.SetIn(strings.NewReader("n\n"))
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"departments", "1"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(out.String(), "aborted") {
		t.Fatalf("expected abort message, got %q", out.String())
	}
}
