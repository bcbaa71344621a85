package imap

import "testing"

func TestStripHTML(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "hello", "hello"},
		{"tags", "<p>hello <b>world</b></p>", "hello world"},
		{"breaks", "line one<br>line two", "line one\nline two"},
		{"entities", "a &amp; b &lt;c&gt;", "a & b <c>"},
		{"collapses blank runs", "<p>a</p><p></p><p></p><p>b</p>", "a\n\nb"},
		{"empty", "", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := stripHTML(tc.in); got != tc.want {
				t.Errorf("stripHTML(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestFetchBody_BadItemRef(t *testing.T) {
	a := &Adapter{client: NewClient("imap.example.com", "993", "u", "p", true)}

	if _, err := a.FetchBody(t.Context(), "not-a-uid"); err == nil {
		t.Fatal("expected error for malformed item reference")
	}
}
