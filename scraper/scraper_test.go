package scraper

import "testing"

func TestStripTags(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "simple markup",
			in:   "<p>Max <b>Verstappen</b> won.</p>",
			want: "Max Verstappen won.",
		},
		{
			name: "attributes",
			in:   `<a href="https://example.com" class="link">standings</a>`,
			want: "standings",
		},
		{
			name: "unclosed trailing tag",
			in:   "text before <div class=",
			want: "text before ",
		},
		{
			name: "no markup",
			in:   "plain text stays untouched",
			want: "plain text stays untouched",
		},
		{
			name: "script content survives tag removal",
			in:   "<script>var x = 1;</script>body",
			want: "var x = 1;body",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := StripTags(tc.in); got != tc.want {
				t.Fatalf("StripTags(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestNewAppliesDefaultTimeout(t *testing.T) {
	s := New(0)
	if s.timeout != defaultTimeout {
		t.Fatalf("expected default timeout %s, got %s", defaultTimeout, s.timeout)
	}
}
