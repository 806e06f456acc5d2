package htmlclean

import "testing"

func TestTextStripsMarkup(t *testing.T) {
	got := Text(`<p>First <b>bold</b> paragraph.</p><p>Second.</p>`)
	want := "First bold paragraph.Second."
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestTextRemovesScriptsAndStyles(t *testing.T) {
	got := Text(`<style>p{color:red}</style><p>visible</p><script>alert(1)</script>`)
	if got != "visible" {
		t.Fatalf("got %q", got)
	}
}

func TestTextCollapsesWhitespace(t *testing.T) {
	got := Text("<div>  spaced \n\n out \t text  </div>")
	if got != "spaced out text" {
		t.Fatalf("got %q", got)
	}
}

func TestTextPlainInput(t *testing.T) {
	if got := Text("already plain"); got != "already plain" {
		t.Fatalf("got %q", got)
	}
}

func TestTextEmptyInput(t *testing.T) {
	if got := Text(""); got != "" {
		t.Fatalf("got %q", got)
	}
}
