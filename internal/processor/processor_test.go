package processor

import (
	"strings"
	"testing"
)

func TestProcessor_ConvertHTMLToMarkdown(t *testing.T) {
	tests := []struct {
		name     string
		html     string
		contains []string // Expected substrings in output
	}{
		{
			name: "converts headings",
			html: `<html><body><h1>Title</h1><h2>Subtitle</h2></body></html>`,
			contains: []string{
				"# Title",
				"## Subtitle",
			},
		},
		{
			name: "converts paragraphs",
			html: `<html><body><p>Hello world.</p><p>Second paragraph.</p></body></html>`,
			contains: []string{
				"Hello world.",
				"Second paragraph.",
			},
		},
		{
			name: "converts links",
			html: `<html><body><p>Check <a href="https://example.com">this link</a>.</p></body></html>`,
			contains: []string{
				"[this link](https://example.com)",
			},
		},
		{
			name: "converts code blocks",
			html: `<html><body><pre><code>func main() {}</code></pre></body></html>`,
			contains: []string{
				"func main() {}",
			},
		},
		{
			name: "converts inline code",
			html: `<html><body><p>Use <code>go run</code> to execute.</p></body></html>`,
			contains: []string{
				"`go run`",
			},
		},
		{
			name: "converts lists",
			html: `<html><body><ul><li>Item 1</li><li>Item 2</li></ul></body></html>`,
			contains: []string{
				"Item 1",
				"Item 2",
			},
		},
	}

	p := New()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := p.Convert(tt.html)
			if err != nil {
				t.Fatalf("Convert() error = %v", err)
			}

			for _, expected := range tt.contains {
				if !strings.Contains(result, expected) {
					t.Errorf("expected output to contain %q, got:\n%s", expected, result)
				}
			}
		})
	}
}

func TestProcessor_ConvertHTMLToMarkdown_EmptyInput(t *testing.T) {
	p := New()

	result, err := p.Convert("")
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if result != "" {
		t.Errorf("Convert(\"\") = %q, want empty", result)
	}
}

func TestProcessor_Text(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "strips inline tags",
			html: `<p>Hello <b>world</b></p>`,
			want: "Hello world",
		},
		{
			name: "collapses whitespace",
			html: "<p>  Hello\n\t   <em>there</em>   friend </p>",
			want: "Hello there friend",
		},
		{
			name: "block elements become lines",
			html: `<h2>Setup</h2><p>Step one.</p><ul><li>First</li><li>Second</li></ul>`,
			want: "Setup\nStep one.\nFirst\nSecond",
		},
		{
			name: "drops scripts and styles",
			html: `<style>p { color: red }</style><p>Visible</p><script>alert("x")</script>`,
			want: "Visible",
		},
		{
			name: "decodes entities",
			html: `<p>Terms &amp; Conditions&nbsp;apply</p>`,
			want: "Terms & Conditions apply",
		},
		{
			name: "line breaks",
			html: `<p>Line one<br>Line two</p>`,
			want: "Line one\nLine two",
		},
		{
			name: "table cells separated",
			html: `<table><tr><th>Plan</th><th>Price</th></tr><tr><td>Pro</td><td>$10</td></tr></table>`,
			want: "Plan Price\nPro $10",
		},
		{
			name: "comments ignored",
			html: `<p>Keep<!-- hidden --> this</p>`,
			want: "Keep this",
		},
		{
			name: "plain text passes through",
			html: `No markup at all`,
			want: "No markup at all",
		},
		{
			name: "empty input",
			html: ``,
			want: "",
		},
	}

	p := New()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.Text(tt.html)
			if err != nil {
				t.Fatalf("Text() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Text() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestProcessor_Render(t *testing.T) {
	body := `<h1>Title</h1><p>Use <code>go run</code>.</p>`

	text, err := New().Render(body)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if text != "Title\nUse go run." {
		t.Errorf("text Render() = %q", text)
	}

	md, err := NewWithFormat(FormatMarkdown).Render(body)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.Contains(md, "# Title") || !strings.Contains(md, "`go run`") {
		t.Errorf("markdown Render() = %q", md)
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatText, false},
		{"text", FormatText, false},
		{"Markdown", FormatMarkdown, false},
		{"pdf", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
