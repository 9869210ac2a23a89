package textsrc

import (
	"errors"
	"testing"
)

const viewerHTML = `<!DOCTYPE html>
<html><head><title>등기사항전부증명서</title><style>td { color: red }</style></head>
<body>
<script>var x = "갑구";</script>
<h3>【 갑 구 】 ( 소유권에 관한 사항 )</h3>
<table>
  <tr><th>순위번호</th><th>등기목적</th><th>접수</th></tr>
  <tr><td>1</td><td>소유권보존</td><td>2019년3월4일<br>제1234호</td></tr>
</table>
<p>-- 이 하 여 백 --</p>
</body></html>`

func TestHTMLText(t *testing.T) {
	got, err := HTMLText([]byte(viewerHTML))
	if err != nil {
		t.Fatalf("HTMLText returned error: %v", err)
	}
	want := "【 갑 구 】 ( 소유권에 관한 사항 )\n" +
		"순위번호 등기목적 접수\n" +
		"1 소유권보존 2019년3월4일\n" +
		"제1234호\n" +
		"-- 이 하 여 백 --"
	if got != want {
		t.Fatalf("unexpected text\nwant:\n%s\ngot:\n%s", want, got)
	}
}

func TestDetect(t *testing.T) {
	cases := []struct {
		name string
		data string
		want Format
	}{
		{"a.pdf", "anything", FormatPDF},
		{"a.HTM", "plain", FormatHTML},
		{"a.txt", "<html>", FormatText},
		{"upload", "%PDF-1.7", FormatPDF},
		{"upload", "  <!DOCTYPE html><html>", FormatHTML},
		{"upload", "<table><tr><td>1</td></tr></table>", FormatHTML},
		{"upload", "<주의사항>", FormatText},
		{"upload", "【 갑 구 】", FormatText},
	}
	for _, tc := range cases {
		if got := Detect(tc.name, []byte(tc.data)); got != tc.want {
			t.Errorf("Detect(%q, %q) = %s, want %s", tc.name, tc.data, got, tc.want)
		}
	}
}

func TestExtract(t *testing.T) {
	if _, err := Extract("scan.pdf", []byte("%PDF")); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
	if _, err := Extract("x", []byte{0xff, 0xfe, 0xfd}); !errors.Is(err, ErrNotText) {
		t.Fatalf("expected ErrNotText, got %v", err)
	}
	got, err := Extract("x.txt", []byte("【 갑 구 】"))
	if err != nil || got != "【 갑 구 】" {
		t.Fatalf("unexpected passthrough %q (%v)", got, err)
	}
}

func TestAccepts(t *testing.T) {
	for name, want := range map[string]bool{
		"register.txt":  true,
		"page.HTML":     true,
		"page.htm":      true,
		"scan.pdf":      false,
		"expected.json": false,
		"README":        false,
	} {
		if got := Accepts(name); got != want {
			t.Errorf("Accepts(%q) = %v, want %v", name, got, want)
		}
	}
}
