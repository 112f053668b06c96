// Package lang resolves which recognition languages a job runs with.
//
// Explicit languages are passed to the engine verbatim; bad codes surface
// as engine errors at invocation time, not here. When no languages are
// given, the resolver detects the dominant language of sample text and
// maps it onto an engine code through a fixed lookup table, falling back
// to the configured default. A resolved set is never empty.
package lang

import (
	"strings"

	"github.com/abadojack/whatlanggo"
)

// Source records how a language set was chosen.
type Source int

const (
	// SourceDefault means the configured default language was used.
	SourceDefault Source = iota
	// SourceExplicit means the caller supplied the languages.
	SourceExplicit
	// SourceDetected means the languages came from text detection.
	SourceDetected
)

func (s Source) String() string {
	switch s {
	case SourceExplicit:
		return "explicit"
	case SourceDetected:
		return "detected"
	default:
		return "default"
	}
}

// Set is an ordered list of engine language codes.
type Set []string

// Join returns the set in the engine's multi-language syntax, e.g.
// "eng+deu".
func (s Set) Join() string {
	return strings.Join(s, "+")
}

// Empty reports whether the set holds no codes.
func (s Set) Empty() bool {
	return len(s) == 0
}

// ParseSpec splits a user-supplied language spec on commas and plus
// signs. Codes are trimmed but otherwise passed through untouched.
func ParseSpec(spec string) Set {
	fields := strings.FieldsFunc(spec, func(r rune) bool {
		return r == ',' || r == '+'
	})
	var out Set
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// engineCodes maps detector output (ISO 639-3) to the engine's language
// codes. Detected languages missing from this table fall back to the
// default; Mandarin maps to the simplified script model.
var engineCodes = map[string]string{
	"afr": "afr",
	"amh": "amh",
	"arb": "ara",
	"azj": "aze",
	"bel": "bel",
	"ben": "ben",
	"bul": "bul",
	"cat": "cat",
	"ces": "ces",
	"cmn": "chi_sim",
	"dan": "dan",
	"deu": "deu",
	"ell": "ell",
	"eng": "eng",
	"epo": "epo",
	"est": "est",
	"fin": "fin",
	"fra": "fra",
	"guj": "guj",
	"heb": "heb",
	"hin": "hin",
	"hrv": "hrv",
	"hun": "hun",
	"hye": "hye",
	"ind": "ind",
	"ita": "ita",
	"jav": "jav",
	"jpn": "jpn",
	"kan": "kan",
	"kat": "kat",
	"khm": "khm",
	"kor": "kor",
	"lat": "lat",
	"lav": "lav",
	"lit": "lit",
	"mal": "mal",
	"mar": "mar",
	"mkd": "mkd",
	"mya": "mya",
	"nep": "nep",
	"nld": "nld",
	"nob": "nor",
	"ori": "ori",
	"pan": "pan",
	"pes": "fas",
	"pol": "pol",
	"por": "por",
	"ron": "ron",
	"rus": "rus",
	"sin": "sin",
	"slk": "slk",
	"slv": "slv",
	"spa": "spa",
	"srp": "srp",
	"swe": "swe",
	"tam": "tam",
	"tel": "tel",
	"tgl": "tgl",
	"tha": "tha",
	"tur": "tur",
	"ukr": "ukr",
	"urd": "urd",
	"uzb": "uzb",
	"vie": "vie",
	"ydd": "yid",
}

// Detect returns the engine language code for the dominant language of
// sample, or false when the sample is empty, the detection is not
// reliable, or the language has no engine mapping.
func Detect(sample string) (string, bool) {
	if strings.TrimSpace(sample) == "" {
		return "", false
	}
	info := whatlanggo.Detect(sample)
	if !info.IsReliable() {
		return "", false
	}
	code, ok := engineCodes[whatlanggo.LangToString(info.Lang)]
	return code, ok
}

// Resolver picks the language set for a job.
type Resolver struct {
	// Default is used when nothing is explicit and detection fails.
	Default string
}

// NewResolver returns a resolver falling back to defaultLang, or to
// English when defaultLang is empty.
func NewResolver(defaultLang string) Resolver {
	if defaultLang == "" {
		defaultLang = "eng"
	}
	return Resolver{Default: defaultLang}
}

// Resolve returns the language set for a job and how it was chosen.
// Explicit codes win unexamined; otherwise detection runs on sample, and
// the default covers everything else. The result is never empty.
func (r Resolver) Resolve(explicit Set, sample string) (Set, Source) {
	if !explicit.Empty() {
		return explicit, SourceExplicit
	}
	if code, ok := Detect(sample); ok {
		return Set{code}, SourceDetected
	}
	return Set{r.Default}, SourceDefault
}
