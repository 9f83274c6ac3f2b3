package token

import (
	"reflect"
	"testing"
)

func TestTokenizeEmpty(t *testing.T) {
	argv, next, err := Tokenize("", "")
	if err != nil || argv != nil || next != -1 {
		t.Fatalf("Tokenize(\"\") = %v, %d, %v; want nil, -1, nil", argv, next, err)
	}
}

func TestTokenizeBasic(t *testing.T) {
	argv, _, err := Tokenize("hello world", "")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"hello", "world"}
	if !reflect.DeepEqual(argv, want) {
		t.Errorf("got %v, want %v", argv, want)
	}
}

func TestTokenizeQuoting(t *testing.T) {
	argv, _, err := Tokenize(`ls -l 'a b' "c d"`, "")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"ls", "-l", "a b", "c d"}
	if !reflect.DeepEqual(argv, want) {
		t.Errorf("got %v, want %v", argv, want)
	}
}

func TestTokenizeEscape(t *testing.T) {
	argv, _, err := Tokenize(`foo\ bar baz`, "")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"foo bar", "baz"}
	if !reflect.DeepEqual(argv, want) {
		t.Errorf("got %v, want %v", argv, want)
	}
}

func TestTokenizeTrailingBackslash(t *testing.T) {
	argv, _, err := Tokenize(`foo\`, "")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{`foo\`}
	if !reflect.DeepEqual(argv, want) {
		t.Errorf("got %v, want %v", argv, want)
	}
}

func TestTokenizeUnterminatedQuote(t *testing.T) {
	_, _, err := Tokenize(`echo 'unterminated`, "")
	if err != ErrParse {
		t.Errorf("expected ErrParse, got %v", err)
	}
}

func TestTokenizeDelimiter(t *testing.T) {
	argv, next, err := Tokenize("make clean ; make test", ";")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"make", "clean"}
	if !reflect.DeepEqual(argv, want) {
		t.Errorf("got %v, want %v", argv, want)
	}
	rest, _, err := Tokenize("make clean ; make test"[next:], ";")
	if err != nil {
		t.Fatal(err)
	}
	wantRest := []string{"make", "test"}
	if !reflect.DeepEqual(rest, wantRest) {
		t.Errorf("got %v, want %v", rest, wantRest)
	}
}

func TestTokenizeDelimiterInsideQuotes(t *testing.T) {
	argv, next, err := Tokenize(`echo "a ; b"`, ";")
	if err != nil {
		t.Fatal(err)
	}
	if next != -1 {
		t.Errorf("delimiter inside quotes should not split, next = %d", next)
	}
	want := []string{"echo", "a ; b"}
	if !reflect.DeepEqual(argv, want) {
		t.Errorf("got %v, want %v", argv, want)
	}
}

func TestRoundTrip(t *testing.T) {
	cases := []string{
		`hello world`,
		`this is "quoted"`,
		`a\ b c`,
		``,
	}
	for _, line := range cases {
		argv, _, err := Tokenize(line, "")
		if err != nil {
			t.Fatalf("Tokenize(%q): %v", line, err)
		}
		rejoined := Join(argv)
		argv2, _, err := Tokenize(rejoined, "")
		if err != nil {
			t.Fatalf("Tokenize(rejoined %q): %v", rejoined, err)
		}
		if !reflect.DeepEqual(argv, argv2) {
			t.Errorf("round-trip mismatch for %q: %v != %v (via %q)", line, argv, argv2, rejoined)
		}
	}
}
