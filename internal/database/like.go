package database

import "strings"

// LikeEscape is the escape character used with ContainsPattern.
const LikeEscape = "!"

var likeReplacer = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// ContainsPattern builds a lower-cased LIKE pattern matching s anywhere. Use
// it as `LOWER(col) LIKE ? ESCAPE '!'`.
func ContainsPattern(s string) string {
	return "%" + likeReplacer.Replace(strings.ToLower(s)) + "%"
}
