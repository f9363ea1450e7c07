package version

import "testing"

func TestInfo_ShortCommit(t *testing.T) {
	tests := []struct {
		name string
		info Info
		want string
	}{
		{name: "full hash", info: Info{Commit: "0123456789abcdef"}, want: "0123456"},
		{name: "short hash", info: Info{Commit: "abc"}, want: "abc"},
		{name: "unknown", info: Info{Commit: "unknown"}, want: "unknown"},
		{name: "modified tree", info: Info{Commit: "0123456789abcdef", Modified: true}, want: "0123456-dirty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.info.ShortCommit(); got != tt.want {
				t.Errorf("ShortCommit() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestInfo_String(t *testing.T) {
	info := Info{Version: "v0.3.0", Commit: "0123456789abcdef", BuildTime: "2026-01-02T03:04:05Z"}
	want := "finq v0.3.0 (commit: 0123456, built: 2026-01-02T03:04:05Z)"
	if got := info.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestGet_LinkerValuesWin(t *testing.T) {
	oldCommit, oldBuilt := Commit, BuildTime
	defer func() { Commit, BuildTime = oldCommit, oldBuilt }()

	Commit, BuildTime = "feedfacecafe", "2026-05-06"
	info := Get()
	if info.Commit != "feedfacecafe" || info.BuildTime != "2026-05-06" {
		t.Errorf("Get() = %+v, want linker values", info)
	}
}
