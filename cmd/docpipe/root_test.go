package main

import (
	"testing"
)

func TestNewRootCmd(t *testing.T) {
	t.Parallel()

	cmd := NewRootCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "docpipe" {
			t.Errorf("expected use 'docpipe', got %q", cmd.Use)
		}
	})

	t.Run("has descriptions and version", func(t *testing.T) {
		t.Parallel()
		if cmd.Short == "" || cmd.Long == "" {
			t.Error("expected non-empty descriptions")
		}
		if cmd.Version == "" {
			t.Error("expected non-empty version")
		}
	})

	t.Run("has persistent flags", func(t *testing.T) {
		t.Parallel()
		tests := []struct {
			name      string
			shorthand string
			defValue  string
		}{
			{name: "root", shorthand: "r", defValue: "/shared"},
			{name: "config", shorthand: "c", defValue: ""},
			{name: "verbose", shorthand: "v", defValue: "false"},
			{name: "log-json", defValue: "false"},
			{name: "no-history", defValue: "false"},
		}
		for _, tt := range tests {
			flag := cmd.PersistentFlags().Lookup(tt.name)
			if flag == nil {
				t.Errorf("expected %s flag", tt.name)
				continue
			}
			if flag.Shorthand != tt.shorthand {
				t.Errorf("%s: expected shorthand %q, got %q", tt.name, tt.shorthand, flag.Shorthand)
			}
			if flag.DefValue != tt.defValue {
				t.Errorf("%s: expected default %q, got %q", tt.name, tt.defValue, flag.DefValue)
			}
		}
	})

	t.Run("has subcommands", func(t *testing.T) {
		t.Parallel()
		want := []string{"fetch", "process", "analyze", "run", "status", "report", "history", "init", "version"}
		names := make(map[string]bool)
		for _, sub := range cmd.Commands() {
			names[sub.Name()] = true
		}
		for _, w := range want {
			if !names[w] {
				t.Errorf("expected %s subcommand", w)
			}
		}
	})

	t.Run("stage commands carry their flags", func(t *testing.T) {
		t.Parallel()
		tests := []struct {
			cmd   string
			flags []string
		}{
			{cmd: "fetch", flags: []string{"poll-interval", "wait-timeout", "concurrency", "rate-limit", "proxy", "max-attempts"}},
			{cmd: "process", flags: []string{"poll-interval", "wait-timeout"}},
			{cmd: "analyze", flags: []string{"wait-timeout", "stopwords", "top-words", "markdown"}},
			{cmd: "run", flags: []string{"wait-timeout", "concurrency", "markdown"}},
		}
		for _, tt := range tests {
			sub, _, err := cmd.Find([]string{tt.cmd})
			if err != nil {
				t.Fatalf("Find(%s) error = %v", tt.cmd, err)
			}
			for _, f := range tt.flags {
				if sub.Flags().Lookup(f) == nil {
					t.Errorf("%s: expected %s flag", tt.cmd, f)
				}
			}
		}
	})
}
