package cli

import (
	"testing"

	"github.com/spf13/cobra"
)

func findCmd(parent *cobra.Command, use string) *cobra.Command {
	for _, sub := range parent.Commands() {
		if sub.Name() == use {
			return sub
		}
	}
	return nil
}

// TestRootCmdStructure verifies every command group and subcommand is
// registered with a Short description.
func TestRootCmdStructure(t *testing.T) {
	root := RootCmd()

	tests := []struct {
		group string
		subs  []string
	}{
		{group: "debt", subs: []string{"add", "update", "pay", "delete", "list"}},
		{group: "asset", subs: []string{"add", "update", "delete", "list"}},
		{group: "queue", subs: []string{"list", "clear"}},
		{group: "sync"},
		{group: "status"},
		{group: "devserver"},
	}

	for _, tt := range tests {
		t.Run(tt.group, func(t *testing.T) {
			group := findCmd(root, tt.group)
			if group == nil {
				t.Fatalf("%s command not registered", tt.group)
			}
			if group.Short == "" {
				t.Errorf("%s should have a Short description", tt.group)
			}
			for _, name := range tt.subs {
				sub := findCmd(group, name)
				if sub == nil {
					t.Errorf("%s %s not registered", tt.group, name)
					continue
				}
				if sub.Short == "" {
					t.Errorf("%s %s should have a Short description", tt.group, name)
				}
			}
		})
	}
}

func TestRootCmdGlobalFlags(t *testing.T) {
	root := RootCmd()
	for _, name := range []string{"config", "offline", "user", "verbose"} {
		if root.PersistentFlags().Lookup(name) == nil {
			t.Errorf("global flag --%s not registered", name)
		}
	}
}

func TestDebtAddRequiresAmountAndCreditor(t *testing.T) {
	add := findCmd(findCmd(RootCmd(), "debt"), "add")
	for _, name := range []string{"creditor", "amount"} {
		flag := add.Flags().Lookup(name)
		if flag == nil {
			t.Fatalf("--%s not registered", name)
		}
		if _, ok := flag.Annotations[cobra.BashCompOneRequiredFlag]; !ok {
			t.Errorf("--%s should be required", name)
		}
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "500", want: "500"},
		{in: "12.75", want: "12.75"},
		{in: "0", want: "0"},
		{in: "", wantErr: true},
		{in: "ten", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseAmount(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error for %q", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseAmount failed: %v", err)
			}
			if got.String() != tt.want {
				t.Errorf("parseAmount(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestQueueClearRequiresForce(t *testing.T) {
	clearCmd := findCmd(findCmd(RootCmd(), "queue"), "clear")

	err := clearCmd.RunE(clearCmd, nil)
	if err == nil {
		t.Fatal("expected clear without --force to fail")
	}
}
