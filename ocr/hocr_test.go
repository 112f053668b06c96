package ocr

import (
	"strings"
	"testing"
)

const sampleHOCR = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE html PUBLIC "-//W3C//DTD XHTML 1.0 Transitional//EN">
<html xmlns="http://www.w3.org/1999/xhtml" lang="en">
 <head>
  <title></title>
  <meta name='ocr-system' content='tesseract 5.3.0' />
 </head>
 <body>
  <div class='ocr_page' id='page_1' title='image "stdin"; bbox 0 0 640 480'>
   <div class='ocr_carea' id='block_1_1' title="bbox 32 40 600 120">
    <p class='ocr_par' id='par_1_1' lang='eng' title="bbox 32 40 600 120">
     <span class='ocr_line' id='line_1_1' title="bbox 32 40 600 80">
      <span class='ocrx_word' id='word_1_1' title='bbox 32 40 180 80; x_wconf 96'>Invoice</span>
      <span class='ocrx_word' id='word_1_2' title='bbox 200 40 340 80; x_wconf 91'>Number</span>
      <span class='ocrx_word' id='word_1_3' title='bbox 360 40 600 80; x_wconf 38'>#@~</span>
     </span>
     <span class='ocr_line' id='line_1_2' title="bbox 32 90 400 120">
      <span class='ocrx_word' id='word_1_4' title='bbox 32 90 200 120; x_wconf 88'>Total</span>
      <span class='ocrx_word' id='word_1_5' title='bbox 220 90 400 120; x_wconf 85'>42.00</span>
      <span class='ocrx_word' id='word_1_6' title='bbox 410 90 420 120; x_wconf 12'> </span>
     </span>
    </p>
   </div>
  </div>
 </body>
</html>`

func TestParseHOCR(t *testing.T) {
	words, err := ParseHOCR(strings.NewReader(sampleHOCR))
	if err != nil {
		t.Fatalf("ParseHOCR() error = %v", err)
	}

	want := []struct {
		text string
		conf float64
	}{
		{"Invoice", 96},
		{"Number", 91},
		{"#@~", 38},
		{"Total", 88},
		{"42.00", 85},
	}

	if len(words) != len(want) {
		t.Fatalf("ParseHOCR() returned %d words, want %d", len(words), len(want))
	}
	for i, w := range want {
		if words[i].Text != w.text {
			t.Errorf("words[%d].Text = %q, want %q", i, words[i].Text, w.text)
		}
		if words[i].Confidence != w.conf {
			t.Errorf("words[%d].Confidence = %v, want %v", i, words[i].Confidence, w.conf)
		}
	}
}

func TestParseHOCREmpty(t *testing.T) {
	words, err := ParseHOCR(strings.NewReader("<html><body></body></html>"))
	if err != nil {
		t.Fatalf("ParseHOCR() error = %v", err)
	}
	if len(words) != 0 {
		t.Errorf("ParseHOCR() returned %d words, want 0", len(words))
	}
}

func TestJoinConfident(t *testing.T) {
	words := []Word{
		{Text: "clear", Confidence: 95},
		{Text: "noise", Confidence: 20},
		{Text: "words", Confidence: 80},
		{Text: "only", Confidence: 41},
	}

	tests := []struct {
		min  float64
		want string
	}{
		{40, "clear words only"},
		{85, "clear"},
		{0, "clear noise words only"},
		{100, ""},
	}

	for _, tt := range tests {
		if got := JoinConfident(words, tt.min); got != tt.want {
			t.Errorf("JoinConfident(min=%v) = %q, want %q", tt.min, got, tt.want)
		}
	}
}

func TestWordConfidence(t *testing.T) {
	tests := []struct {
		title string
		want  float64
	}{
		{"bbox 32 40 180 80; x_wconf 96", 96},
		{"x_wconf 42", 42},
		{"bbox 0 0 10 10", 0},
		{"", 0},
		{"x_wconf notanumber", 0},
	}

	for _, tt := range tests {
		if got := wordConfidence(tt.title); got != tt.want {
			t.Errorf("wordConfidence(%q) = %v, want %v", tt.title, got, tt.want)
		}
	}
}
