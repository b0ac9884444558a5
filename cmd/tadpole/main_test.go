package main

import "testing"

func TestRunVersionFlag(t *testing.T) {
	for _, flag := range []string{"-v", "--version"} {
		if code := run([]string{flag}); code != 0 {
			t.Errorf("%s: got exit code %d, want 0", flag, code)
		}
	}
}

func TestRunHelpFlagExitsNonZero(t *testing.T) {
	for _, flag := range []string{"-h", "--help"} {
		if code := run([]string{flag}); code != 1 {
			t.Errorf("%s: got exit code %d, want 1", flag, code)
		}
	}
}

func TestRunBadArgvExitsNonZero(t *testing.T) {
	cases := [][]string{
		{},
		{"-c"},
		{"-x", "foo"},
		{"bogus"},
		{"-c", "a", "b"},
	}
	for _, argv := range cases {
		if code := run(argv); code != 1 {
			t.Errorf("%v: got exit code %d, want 1", argv, code)
		}
	}
}

func TestRunMissingConfigFileExitsNonZero(t *testing.T) {
	if code := run([]string{"-c", "/nonexistent/tadpole.conf"}); code != 1 {
		t.Errorf("got exit code %d, want 1", code)
	}
}
