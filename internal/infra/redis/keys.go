package redis

// Keys follow the names the browser used in local storage where one existed.
const (
	questionsKey   = "quiz:questions"
	leaderboardKey = "leaderboard"
)

func sessionKey(sessionID string) string { return "quiz:session:" + sessionID }

func themeKey(user string) string { return "theme:" + user }
