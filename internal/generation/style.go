package generation

import (
	"fmt"
	"strings"
)

// bannedWords are clichés the provider must not use in generated prose.
// The list is injected as a system instruction on every call that produces
// user-visible text.
var bannedWords = []string{
	"delve", "realm", "harness", "unlock", "tapestry", "paradigm", "cutting-edge", "revolutionize",
	"landscape", "potential", "findings", "intricate", "showcasing", "crucial", "pivotal", "surpass",
	"meticulously", "vibrant", "unparalleled", "underscore", "leverage", "synergy", "innovative",
	"game-changer", "testament", "commendable", "meticulous", "highlight", "emphasize", "boast",
	"groundbreaking", "align", "foster", "showcase", "enhance", "holistic", "garner", "accentuate",
	"pioneering", "trailblazing", "unleash", "versatile", "transformative", "redefine", "seamless",
	"optimize", "scalable", "robust", "breakthrough", "empower", "streamline", "intelligent", "smart",
	"next-gen", "frictionless", "elevate", "adaptive", "effortless", "data-driven", "insightful",
	"proactive", "mission-critical", "visionary", "disruptive", "reimagine", "agile", "customizable",
	"personalized", "unprecedented", "intuitive", "leading-edge", "synergize", "democratize",
	"automate", "accelerate", "state-of-the-art", "dynamic", "reliable", "efficient", "cloud-native",
	"immersive", "predictive", "transparent", "proprietary", "integrated", "plug-and-play", "turnkey",
	"future-proof", "open-ended", "AI-powered", "next-generation", "always-on", "hyper-personalized",
	"results-driven", "machine-first", "paradigm-shifting",
}

// BannedWordsInstruction is the shared style constraint for prose output.
func BannedWordsInstruction() string {
	return fmt.Sprintf(`STRICT STYLE GUIDELINE:
Do NOT use the following words or phrases in your response: %s.
Instead, use simple, direct, and professional language. Focus on facts, actions, and results.`,
		strings.Join(bannedWords, ", "))
}

// CheckBannedWords returns the banned words present in text, matched
// case-insensitively on word boundaries as the provider would emit them.
// Drafting operations log hits as warnings; the text is still returned to
// the caller unchanged.
func CheckBannedWords(text string) []string {
	lower := strings.ToLower(text)
	var hits []string
	for _, word := range bannedWords {
		if containsWord(lower, strings.ToLower(word)) {
			hits = append(hits, word)
		}
	}
	return hits
}

func containsWord(haystack, needle string) bool {
	idx := 0
	for {
		pos := strings.Index(haystack[idx:], needle)
		if pos < 0 {
			return false
		}
		start := idx + pos
		end := start + len(needle)
		if boundaryBefore(haystack, start) && boundaryAfter(haystack, end) {
			return true
		}
		idx = start + 1
	}
}

func boundaryBefore(s string, i int) bool {
	return i == 0 || !isWordByte(s[i-1])
}

func boundaryAfter(s string, i int) bool {
	return i >= len(s) || !isWordByte(s[i])
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9' || b == '-'
}
