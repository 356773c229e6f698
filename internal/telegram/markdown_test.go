package telegram

import "testing"

func TestEscapeMarkdownV2(t *testing.T) {
	got := escapeMarkdownV2("a_b*c[d]e(f)g~h`i>j#k+l-m=n|o{p}q.r!s")
	want := `a\_b\*c\[d\]e\(f\)g\~h\` + "`" + `i\>j\#k\+l\-m\=n\|o\{p\}q\.r\!s`
	if got != want {
		t.Fatalf("escape mismatch:\ngot  %q\nwant %q", got, want)
	}
}

func TestEscapeMarkdownV2Backslash(t *testing.T) {
	if got := escapeMarkdownV2(`a\b`); got != `a\\b` {
		t.Fatalf("backslash not escaped: %q", got)
	}
}

func TestEscapeMarkdownV2PlainTextUntouched(t *testing.T) {
	in := "plain words and цифры 123"
	if got := escapeMarkdownV2(in); got != in {
		t.Fatalf("plain text changed: %q", got)
	}
}

func TestSpoiler(t *testing.T) {
	if got := spoiler("hidden"); got != "||hidden||" {
		t.Fatalf("spoiler wrap: %q", got)
	}
}
