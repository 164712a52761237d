// Package validation contains field-level validators shared by services.
package validation

import "regexp"

// emojiPattern matches exactly one emoji from the common pictographic blocks.
var emojiPattern = regexp.MustCompile("^[" +
	"\U0001F1E0-\U0001F1FF" + // flags
	"\U0001F300-\U0001F5FF" + // symbols & pictographs
	"\U0001F600-\U0001F64F" + // emoticons
	"\U0001F680-\U0001F6FF" + // transport & map symbols
	"\U0001F700-\U0001F77F" + // alchemical symbols
	"\U0001F780-\U0001F7FF" + // geometric shapes extended
	"\U0001F800-\U0001F8FF" + // supplemental arrows-C
	"\U0001F900-\U0001F9FF" + // supplemental symbols and pictographs
	"\U0001FA00-\U0001FA6F" + // chess symbols
	"\U0001FA70-\U0001FAFF" + // symbols and pictographs extended-A
	"✂-➰" + // dingbats
	"]$")

// IsEmoji reports whether value is a single emoji character.
func IsEmoji(value string) bool {
	return emojiPattern.MatchString(value)
}
